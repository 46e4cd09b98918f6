package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crewfield/scheduling-service/internal/constants"
	"github.com/crewfield/scheduling-service/internal/dtos"
	"github.com/crewfield/scheduling-service/internal/models"
	"github.com/crewfield/scheduling-service/internal/repositories"
	"github.com/crewfield/scheduling-service/internal/utils"
)

/*
Availability resolution.

EffectiveRadius walks the override chain: the employee's default radius
unless an active override window covers the instant. With several
covering windows the most recently created override wins; when every
override expires or is deactivated the radius reverts to the default
with no cleanup step, because nothing was ever written to the employee
row.

FreeSlots is a derived view. The weekly template is the only stored
calendar; free slots for a date are computed as template minus booked
occurrences on every read, so a booking can never leave a stale "free"
flag behind.
*/

type AvailabilityService interface {
	EffectiveRadius(ctx context.Context, employeeID uuid.UUID, at time.Time) (*dtos.EffectiveRadiusResponse, error)
	FreeSlots(ctx context.Context, employeeID uuid.UUID, date time.Time) (*dtos.AvailabilityResponse, error)
}

type availabilityService struct {
	employeeRepo   repositories.EmployeeRepository
	overrideRepo   repositories.RadiusOverrideRepository
	occurrenceRepo repositories.JobOccurrenceRepository
}

func NewAvailabilityService(
	employeeRepo repositories.EmployeeRepository,
	overrideRepo repositories.RadiusOverrideRepository,
	occurrenceRepo repositories.JobOccurrenceRepository,
) AvailabilityService {
	return &availabilityService{
		employeeRepo:   employeeRepo,
		overrideRepo:   overrideRepo,
		occurrenceRepo: occurrenceRepo,
	}
}

func (s *availabilityService) EffectiveRadius(
	ctx context.Context,
	employeeID uuid.UUID,
	at time.Time,
) (*dtos.EffectiveRadiusResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("employee %s: %w", employeeID, utils.ErrNotFound)
	}

	overrides, err := s.overrideRepo.ListEffectiveAt(ctx, employeeID, at)
	if err != nil {
		return nil, err
	}
	if len(overrides) == 0 {
		return &dtos.EffectiveRadiusResponse{
			EmployeeID:  employeeID,
			At:          at,
			RadiusMiles: emp.DefaultRadiusMiles,
			Source:      dtos.RadiusSourceDefault,
		}, nil
	}

	// ListEffectiveAt orders newest creation first.
	winner := overrides[0]
	return &dtos.EffectiveRadiusResponse{
		EmployeeID:  employeeID,
		At:          at,
		RadiusMiles: winner.OverrideRadiusMiles,
		Source:      dtos.RadiusSourceOverride,
		OverrideID:  &winner.ID,
	}, nil
}

func (s *availabilityService) FreeSlots(
	ctx context.Context,
	employeeID uuid.UUID,
	date time.Time,
) (*dtos.AvailabilityResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("employee %s: %w", employeeID, utils.ErrNotFound)
	}

	day := DateOnly(date)
	template := emp.SlotsForWeekday(day.Weekday())

	booked, err := s.occurrenceRepo.ListForEmployeeDate(
		ctx, employeeID, day,
		[]models.OccurrenceStatusType{models.OccurrenceStatusBooked},
	)
	if err != nil {
		return nil, err
	}

	free := make([]string, 0, len(template))
	for _, label := range template {
		slotStart, err := ParseTimeOfDay(label)
		if err != nil {
			return nil, fmt.Errorf("bad slot label %q for employee %s: %w", label, employeeID, err)
		}
		slotEnd := slotStart.Add(constants.SlotDuration)

		taken := false
		for _, occ := range booked {
			if OverlapsWindow(slotStart, &slotEnd, occ.StartTime, occ.EndTime) {
				taken = true
				break
			}
		}
		if !taken {
			free = append(free, label)
		}
	}

	return &dtos.AvailabilityResponse{
		EmployeeID: employeeID,
		Date:       day.Format(constants.DateLayout),
		FreeSlots:  free,
	}, nil
}
