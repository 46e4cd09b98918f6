package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/crewfield/scheduling-service/internal/models"
	"github.com/crewfield/scheduling-service/internal/repositories"
)

/*
Conflict detection.

A technician-day booking occupies the half-open window
[startTime, endTime); a nil end means open-ended, which occupies the
rest of the day. Two windows conflict iff they overlap with non-zero
duration, so back-to-back bookings (one ends 10:00, next starts 10:00)
never conflict. Only BOOKED occurrences participate; CANCELED and
COMPLETED rows are inert history.
*/

const endOfDayMinute = 24 * 60

// OverlapsWindow is the half-open overlap predicate on times-of-day.
// An end at or before its start means the window ran into midnight and
// is clamped to end-of-day.
func OverlapsWindow(aStart time.Time, aEnd *time.Time, bStart time.Time, bEnd *time.Time) bool {
	as, ae := windowMinutes(aStart, aEnd)
	bs, be := windowMinutes(bStart, bEnd)
	return as < be && bs < ae
}

func windowMinutes(start time.Time, end *time.Time) (int, int) {
	s := minuteOfDay(start)
	e := endOfDayMinute
	if end != nil {
		e = minuteOfDay(*end)
		if e <= s {
			e = endOfDayMinute
		}
	}
	return s, e
}

type ConflictService interface {
	// HasConflict reports whether the proposed window collides with any
	// booked occurrence for the employee on the date. The exclusion is a
	// single occurrence (uuid.Nil excludes nothing): a reschedule must
	// not collide with sibling occurrences of its own job, only with the
	// row being moved.
	HasConflict(ctx context.Context, employeeID uuid.UUID, date time.Time, start time.Time, end *time.Time, excludeOccurrenceID uuid.UUID) (bool, error)

	// FindConflicts returns every colliding booked occurrence.
	FindConflicts(ctx context.Context, employeeID uuid.UUID, date time.Time, start time.Time, end *time.Time, excludeOccurrenceID uuid.UUID) ([]*models.JobOccurrence, error)
}

type conflictService struct {
	occurrenceRepo repositories.JobOccurrenceRepository
}

func NewConflictService(occurrenceRepo repositories.JobOccurrenceRepository) ConflictService {
	return &conflictService{occurrenceRepo: occurrenceRepo}
}

func (s *conflictService) FindConflicts(
	ctx context.Context,
	employeeID uuid.UUID,
	date time.Time,
	start time.Time,
	end *time.Time,
	excludeOccurrenceID uuid.UUID,
) ([]*models.JobOccurrence, error) {
	booked, err := s.occurrenceRepo.ListForEmployeeDate(
		ctx, employeeID, DateOnly(date),
		[]models.OccurrenceStatusType{models.OccurrenceStatusBooked},
	)
	if err != nil {
		return nil, err
	}

	var out []*models.JobOccurrence
	for _, occ := range booked {
		if excludeOccurrenceID != uuid.Nil && occ.ID == excludeOccurrenceID {
			continue
		}
		if OverlapsWindow(start, end, occ.StartTime, occ.EndTime) {
			out = append(out, occ)
		}
	}
	return out, nil
}

func (s *conflictService) HasConflict(
	ctx context.Context,
	employeeID uuid.UUID,
	date time.Time,
	start time.Time,
	end *time.Time,
	excludeOccurrenceID uuid.UUID,
) (bool, error) {
	conflicts, err := s.FindConflicts(ctx, employeeID, date, start, end, excludeOccurrenceID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}
