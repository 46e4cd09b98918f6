package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/crewfield/scheduling-service/internal/models"
	"github.com/crewfield/scheduling-service/internal/utils"
)

func tod(s string) time.Time {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func todPtr(s string) *time.Time {
	return utils.Ptr(tod(s))
}

func TestOverlapsWindowHalfOpen(t *testing.T) {
	cases := []struct {
		name           string
		aStart         string
		aEnd           *time.Time
		bStart         string
		bEnd           *time.Time
		expectConflict bool
	}{
		{"back to back is free", "09:00", todPtr("10:00"), "10:00", todPtr("11:00"), false},
		{"one minute overlap", "09:00", todPtr("10:01"), "10:00", todPtr("11:00"), true},
		{"identical windows", "09:00", todPtr("10:00"), "09:00", todPtr("10:00"), true},
		{"contained window", "09:00", todPtr("12:00"), "10:00", todPtr("11:00"), true},
		{"disjoint", "08:00", todPtr("09:00"), "13:00", todPtr("14:00"), false},
		{"open-ended blocks later start", "09:00", nil, "15:00", todPtr("16:00"), true},
		{"open-ended blocked by earlier booking", "08:00", todPtr("09:00"), "09:00", nil, false},
		{"touching at start", "10:00", todPtr("11:00"), "09:00", todPtr("10:00"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := OverlapsWindow(tod(tc.aStart), tc.aEnd, tod(tc.bStart), tc.bEnd)
			require.Equal(t, tc.expectConflict, got)
			// Overlap is symmetric.
			require.Equal(t, tc.expectConflict, OverlapsWindow(tod(tc.bStart), tc.bEnd, tod(tc.aStart), tc.aEnd))
		})
	}
}

func TestFindConflictsFiltersByEmployeeDateAndStatus(t *testing.T) {
	ctx := context.Background()
	occRepo := newFakeOccurrenceRepo()
	svc := NewConflictService(occRepo)

	empID := uuid.New()
	otherEmp := uuid.New()
	jobID := uuid.New()
	d := day("2025-06-02")

	book := func(emp uuid.UUID, job uuid.UUID, svcDate time.Time, start, end string, st models.OccurrenceStatusType) uuid.UUID {
		id := uuid.New()
		require.NoError(t, occRepo.Create(ctx, &models.JobOccurrence{
			ID:          id,
			JobID:       job,
			EmployeeID:  emp,
			ServiceDate: svcDate,
			StartTime:   tod(start),
			EndTime:     todPtr(end),
			Status:      st,
		}))
		return id
	}

	morning := book(empID, jobID, d, "09:00", "10:00", models.OccurrenceStatusBooked)
	book(empID, uuid.New(), d, "13:00", "14:00", models.OccurrenceStatusCanceled)
	book(otherEmp, uuid.New(), d, "09:00", "10:00", models.OccurrenceStatusBooked)
	book(empID, uuid.New(), d.AddDate(0, 0, 1), "09:00", "10:00", models.OccurrenceStatusBooked)

	// Overlapping booked occurrence on the same employee-day.
	conflicts, err := svc.FindConflicts(ctx, empID, d, tod("09:30"), todPtr("10:30"), uuid.Nil)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)

	// Canceled rows never conflict.
	got, err := svc.HasConflict(ctx, empID, d, tod("13:00"), todPtr("14:00"), uuid.Nil)
	require.NoError(t, err)
	require.False(t, got)

	// Excluding the occurrence being moved frees its window for a
	// reschedule.
	got, err = svc.HasConflict(ctx, empID, d, tod("09:00"), todPtr("10:00"), morning)
	require.NoError(t, err)
	require.False(t, got)

	// A sibling occurrence of the same job is still a real conflict.
	sibling := book(empID, jobID, d, "11:00", "12:00", models.OccurrenceStatusBooked)
	got, err = svc.HasConflict(ctx, empID, d, tod("09:00"), todPtr("10:00"), sibling)
	require.NoError(t, err)
	require.True(t, got)
}
