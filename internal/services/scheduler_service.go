package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/crewfield/scheduling-service/internal/constants"
	"github.com/crewfield/scheduling-service/internal/models"
	"github.com/crewfield/scheduling-service/internal/repositories"
	"github.com/crewfield/scheduling-service/internal/utils"
)

type SchedulerService struct {
	jobRepo        repositories.JobRepository
	occurrenceRepo repositories.JobOccurrenceRepository
	conflicts      ConflictService

	locks *utils.KeyedMutex
}

// NewSchedulerService takes the same keyed mutex the job service uses,
// so cron seeding and concurrent HTTP writes contend on one lock per
// technician-day instead of two private ones.
func NewSchedulerService(
	jobRepo repositories.JobRepository,
	occurrenceRepo repositories.JobOccurrenceRepository,
	conflicts ConflictService,
	locks *utils.KeyedMutex,
) *SchedulerService {
	return &SchedulerService{
		jobRepo:        jobRepo,
		occurrenceRepo: occurrenceRepo,
		conflicts:      conflicts,
		locks:          locks,
	}
}

// RunDailyWindowMaintenance is triggered once per day (around 00:05 UTC).
// It loops over active recurring jobs and makes sure the rolling
// [today .. today+DaysToSeedAhead] window has an occurrence row for
// every pattern date, using the job site's local calendar date.
// Creation is idempotent via the (job_id, service_date) unique key, and
// dates that now conflict with later bookings are skipped, not forced.
func (s *SchedulerService) RunDailyWindowMaintenance(ctx context.Context) error {
	utils.Logger.Info("Running daily scheduling window maintenance...")

	jobs, err := s.jobRepo.ListByStatus(ctx, models.JobStatusScheduled)
	if err != nil {
		return err
	}

	var created, skipped int
	for _, job := range jobs {
		if !job.IsRecurring || job.RecurringPattern == nil || job.TechnicianID == nil {
			continue
		}

		loc := utils.LocationForCoords(job.Latitude, job.Longitude)
		today := DateOnly(time.Now().In(loc))

		for offset := 0; offset <= constants.DaysToSeedAhead; offset++ {
			day := today.AddDate(0, 0, offset)
			if !PatternOccursOn(job.StartDate, job.RecurringPattern, day) {
				continue
			}

			c, sk := s.ensureOccurrence(ctx, job, day)
			created += c
			skipped += sk
		}
	}

	utils.Logger.Infof("Daily maintenance done: %d occurrences created, %d skipped for conflicts", created, skipped)
	return nil
}

func (s *SchedulerService) ensureOccurrence(ctx context.Context, job *models.Job, day time.Time) (created, skipped int) {
	empID := *job.TechnicianID
	key := occurrenceLockKey(empID, day)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	conflicts, err := s.conflicts.FindConflicts(ctx, empID, day, job.StartTime, job.EndTime, uuid.Nil)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Conflict check failed for job=%s date=%s", job.ID, day.Format(constants.DateLayout))
		return 0, 0
	}
	for _, c := range conflicts {
		if c.JobID == job.ID {
			// Already materialized on a prior run.
			return 0, 0
		}
	}
	if len(conflicts) > 0 {
		return 0, 1
	}

	occ := &models.JobOccurrence{
		ID:          uuid.New(),
		JobID:       job.ID,
		EmployeeID:  empID,
		ServiceDate: day,
		StartTime:   CombineDateTime(day, job.StartTime),
		Status:      models.OccurrenceStatusBooked,
	}
	if job.EndTime != nil {
		occ.EndTime = utils.Ptr(CombineDateTime(day, *job.EndTime))
	}
	if err := s.occurrenceRepo.CreateIfNotExists(ctx, occ); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to seed occurrence for job=%s date=%s", job.ID, day.Format(constants.DateLayout))
		return 0, 0
	}
	return 1, 0
}
