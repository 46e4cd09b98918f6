package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/crewfield/scheduling-service/internal/constants"
	"github.com/crewfield/scheduling-service/internal/models"
)

func newScheduler(f *jobFixture) *SchedulerService {
	return NewSchedulerService(f.jobRepo, f.occRepo, NewConflictService(f.occRepo), f.locks)
}

func seedRecurringJob(t *testing.T, f *jobFixture, anchor time.Time) *models.Job {
	t.Helper()
	job := &models.Job{
		ID:           uuid.New(),
		Title:        "Filter swap route",
		Customer:     "Lakeside HOA",
		Address:      "4 Lakeside Ct",
		JobType:      models.JobTypeMaintenance,
		Priority:     models.PriorityMedium,
		Status:       models.JobStatusScheduled,
		TechnicianID: &f.emp.ID,
		StartDate:    anchor,
		StartTime:    tod("09:00"),
		EndTime:      todPtr("10:00"),
		IsRecurring:  true,
		RecurringPattern: &models.RecurringPattern{
			Frequency: models.FreqDaily,
			Interval:  1,
		},
	}
	require.NoError(t, f.jobRepo.Create(context.Background(), job))
	return job
}

func TestDailyMaintenanceSeedsRollingWindowIdempotently(t *testing.T) {
	ctx := context.Background()
	f := newJobFixture(t)
	sched := newScheduler(f)

	today := DateOnly(time.Now().UTC())
	job := seedRecurringJob(t, f, today.AddDate(0, 0, -30))

	require.NoError(t, sched.RunDailyWindowMaintenance(ctx))

	occs, err := f.occRepo.ListByJobID(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, occs, constants.DaysToSeedAhead+1)
	require.True(t, sameDate(occs[0].ServiceDate, today))
	require.True(t, sameDate(occs[len(occs)-1].ServiceDate, today.AddDate(0, 0, constants.DaysToSeedAhead)))

	// A rerun finds every date already materialized and adds nothing.
	require.NoError(t, sched.RunDailyWindowMaintenance(ctx))
	occs, err = f.occRepo.ListByJobID(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, occs, constants.DaysToSeedAhead+1)
}

func TestDailyMaintenanceSkipsConflictingDates(t *testing.T) {
	ctx := context.Background()
	f := newJobFixture(t)
	sched := newScheduler(f)

	today := DateOnly(time.Now().UTC())
	job := seedRecurringJob(t, f, today)

	// Another job already holds an overlapping window two days out.
	blocked := today.AddDate(0, 0, 2)
	require.NoError(t, f.occRepo.Create(ctx, &models.JobOccurrence{
		ID:          uuid.New(),
		JobID:       uuid.New(),
		EmployeeID:  f.emp.ID,
		ServiceDate: blocked,
		StartTime:   tod("09:30"),
		EndTime:     todPtr("10:30"),
		Status:      models.OccurrenceStatusBooked,
	}))

	require.NoError(t, sched.RunDailyWindowMaintenance(ctx))

	occs, err := f.occRepo.ListByJobID(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, occs, constants.DaysToSeedAhead)
	for _, occ := range occs {
		require.False(t, sameDate(occ.ServiceDate, blocked), "blocked date must stay unseeded")
	}
}

func TestSeedingAndCreateContendOnSharedLock(t *testing.T) {
	ctx := context.Background()
	f := newJobFixture(t)
	sched := newScheduler(f)

	today := DateOnly(time.Now().UTC())
	job := seedRecurringJob(t, f, today)

	// Widen the check-then-act window so an unserialized pair of
	// writers would both see a free slot.
	f.occRepo.listDelay = 50 * time.Millisecond

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sched.ensureOccurrence(ctx, job, today)
	}()
	go func() {
		defer wg.Done()
		_, _ = f.svc.CreateJob(ctx, f.createRequest(today.Format(constants.DateLayout), "09:00", "10:00"))
	}()
	wg.Wait()

	booked, err := f.occRepo.ListForEmployeeDate(ctx, f.emp.ID, today,
		[]models.OccurrenceStatusType{models.OccurrenceStatusBooked})
	require.NoError(t, err)
	require.NotEmpty(t, booked)
	for i := 0; i < len(booked); i++ {
		for k := i + 1; k < len(booked); k++ {
			require.False(t,
				OverlapsWindow(booked[i].StartTime, booked[i].EndTime, booked[k].StartTime, booked[k].EndTime),
				"technician double-booked on %s", today.Format(constants.DateLayout))
		}
	}
}
