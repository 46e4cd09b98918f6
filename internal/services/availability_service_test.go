package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/crewfield/scheduling-service/internal/dtos"
	"github.com/crewfield/scheduling-service/internal/models"
	"github.com/crewfield/scheduling-service/internal/utils"
)

func seedEmployee(t *testing.T, repo *fakeEmployeeRepo, radius int) *models.Employee {
	t.Helper()
	emp := &models.Employee{
		ID:                 uuid.New(),
		Name:               "Test Tech",
		Email:              "tech@example.com",
		DefaultRadiusMiles: radius,
		Status:             models.EmployeeStatusAvailable,
		WeeklySlots: []models.DaySlots{
			// 2025-06-02 is a Monday.
			{Weekday: time.Monday, Slots: []string{"09:00", "10:00", "11:00", "14:00"}},
		},
	}
	require.NoError(t, repo.Create(context.Background(), emp))
	return emp
}

func newAvailabilityFixture(t *testing.T) (*fakeEmployeeRepo, *fakeOverrideRepo, *fakeOccurrenceRepo, AvailabilityService) {
	t.Helper()
	empRepo := newFakeEmployeeRepo()
	ovRepo := newFakeOverrideRepo()
	occRepo := newFakeOccurrenceRepo()
	return empRepo, ovRepo, occRepo, NewAvailabilityService(empRepo, ovRepo, occRepo)
}

func TestEffectiveRadiusDefaultWithoutOverrides(t *testing.T) {
	ctx := context.Background()
	empRepo, _, _, svc := newAvailabilityFixture(t)
	emp := seedEmployee(t, empRepo, 25)

	got, err := svc.EffectiveRadius(ctx, emp.ID, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, 25, got.RadiusMiles)
	require.Equal(t, dtos.RadiusSourceDefault, got.Source)
	require.Nil(t, got.OverrideID)
}

func TestEffectiveRadiusOverrideWindowAndReversion(t *testing.T) {
	ctx := context.Background()
	empRepo, ovRepo, _, svc := newAvailabilityFixture(t)
	emp := seedEmployee(t, empRepo, 25)

	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)
	require.NoError(t, ovRepo.Create(ctx, &models.RadiusOverride{
		ID:                  uuid.New(),
		EmployeeID:          emp.ID,
		OverrideRadiusMiles: 60,
		Reason:              "covering the north route",
		StartTime:           start,
		EndTime:             end,
		IsActive:            true,
	}))

	// Inside the window the override applies.
	got, err := svc.EffectiveRadius(ctx, emp.ID, start.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, 60, got.RadiusMiles)
	require.Equal(t, dtos.RadiusSourceOverride, got.Source)
	require.NotNil(t, got.OverrideID)

	// The window is half-open: the end instant is already outside.
	got, err = svc.EffectiveRadius(ctx, emp.ID, end)
	require.NoError(t, err)
	require.Equal(t, 25, got.RadiusMiles)
	require.Equal(t, dtos.RadiusSourceDefault, got.Source)

	// Before the window the default still holds.
	got, err = svc.EffectiveRadius(ctx, emp.ID, start.Add(-time.Minute))
	require.NoError(t, err)
	require.Equal(t, 25, got.RadiusMiles)
}

func TestEffectiveRadiusMostRecentOverrideWins(t *testing.T) {
	ctx := context.Background()
	empRepo, ovRepo, _, svc := newAvailabilityFixture(t)
	emp := seedEmployee(t, empRepo, 25)

	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	for _, miles := range []int{40, 55} {
		require.NoError(t, ovRepo.Create(ctx, &models.RadiusOverride{
			ID:                  uuid.New(),
			EmployeeID:          emp.ID,
			OverrideRadiusMiles: miles,
			Reason:              "seasonal coverage",
			StartTime:           start,
			EndTime:             end,
			IsActive:            true,
		}))
	}

	got, err := svc.EffectiveRadius(ctx, emp.ID, start.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, 55, got.RadiusMiles, "the later-created override wins")
}

func TestEffectiveRadiusIgnoresDeactivatedOverride(t *testing.T) {
	ctx := context.Background()
	empRepo, ovRepo, _, svc := newAvailabilityFixture(t)
	emp := seedEmployee(t, empRepo, 25)

	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	ov := &models.RadiusOverride{
		ID:                  uuid.New(),
		EmployeeID:          emp.ID,
		OverrideRadiusMiles: 80,
		Reason:              "one-off long haul",
		StartTime:           start,
		EndTime:             start.AddDate(0, 0, 1),
		IsActive:            true,
	}
	require.NoError(t, ovRepo.Create(ctx, ov))

	_, err := ovRepo.DeactivateAtomic(ctx, ov.ID, 1)
	require.NoError(t, err)

	got, err := svc.EffectiveRadius(ctx, emp.ID, start.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, 25, got.RadiusMiles)
}

func TestEffectiveRadiusUnknownEmployee(t *testing.T) {
	_, _, _, svc := newAvailabilityFixture(t)

	_, err := svc.EffectiveRadius(context.Background(), uuid.New(), time.Now().UTC())
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestFreeSlotsDerivedFromTemplateMinusBookings(t *testing.T) {
	ctx := context.Background()
	empRepo, _, occRepo, svc := newAvailabilityFixture(t)
	emp := seedEmployee(t, empRepo, 25)
	monday := day("2025-06-02")

	// No bookings: the full weekday template is free.
	got, err := svc.FreeSlots(ctx, emp.ID, monday)
	require.NoError(t, err)
	require.Equal(t, []string{"09:00", "10:00", "11:00", "14:00"}, got.FreeSlots)

	// A 10:00-11:00 booking removes exactly the 10:00 slot.
	require.NoError(t, occRepo.Create(ctx, &models.JobOccurrence{
		ID:          uuid.New(),
		JobID:       uuid.New(),
		EmployeeID:  emp.ID,
		ServiceDate: monday,
		StartTime:   tod("10:00"),
		EndTime:     todPtr("11:00"),
		Status:      models.OccurrenceStatusBooked,
	}))
	got, err = svc.FreeSlots(ctx, emp.ID, monday)
	require.NoError(t, err)
	require.Equal(t, []string{"09:00", "11:00", "14:00"}, got.FreeSlots)

	// A booking straddling two slots removes both.
	require.NoError(t, occRepo.Create(ctx, &models.JobOccurrence{
		ID:          uuid.New(),
		JobID:       uuid.New(),
		EmployeeID:  emp.ID,
		ServiceDate: monday,
		StartTime:   tod("11:30"),
		EndTime:     todPtr("14:30"),
		Status:      models.OccurrenceStatusBooked,
	}))
	got, err = svc.FreeSlots(ctx, emp.ID, monday)
	require.NoError(t, err)
	require.Equal(t, []string{"09:00"}, got.FreeSlots)
}

func TestFreeSlotsEmptyTemplateDay(t *testing.T) {
	ctx := context.Background()
	empRepo, _, _, svc := newAvailabilityFixture(t)
	emp := seedEmployee(t, empRepo, 25)

	// Sunday has no template, so there is nothing to offer.
	got, err := svc.FreeSlots(ctx, emp.ID, day("2025-06-01"))
	require.NoError(t, err)
	require.Empty(t, got.FreeSlots)
	require.NotNil(t, got.FreeSlots)
}
