package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/crewfield/scheduling-service/internal/constants"
	"github.com/crewfield/scheduling-service/internal/dtos"
	"github.com/crewfield/scheduling-service/internal/models"
	"github.com/crewfield/scheduling-service/internal/repositories"
	"github.com/crewfield/scheduling-service/internal/utils"
)

/*
Job assignment.

Every mutation that books or moves a technician-day goes through the
keyed mutex: the conflict check and the occurrence write for one
(employee_id, service_date) pair run under the same lock, so two
concurrent requests for the same technician-day cannot both pass the
check. Different technician-days proceed in parallel.

Mutations return the events they produced as plain values in the
response. Nothing is published anywhere.
*/

type JobService interface {
	CreateJob(ctx context.Context, req *dtos.CreateJobRequest) (*dtos.CreateJobResponse, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*dtos.JobResponse, error)
	RescheduleJob(ctx context.Context, jobID uuid.UUID, req *dtos.RescheduleJobRequest) (*dtos.RescheduleJobResponse, error)
	CancelJob(ctx context.Context, jobID uuid.UUID, req *dtos.CancelJobRequest) (*dtos.CancelJobResponse, error)
	StartJob(ctx context.Context, jobID uuid.UUID, rowVersion int64) (*dtos.JobResponse, error)
	CompleteJob(ctx context.Context, jobID uuid.UUID, rowVersion int64) (*dtos.JobResponse, error)
	ListJobsForDate(ctx context.Context, date time.Time) (*dtos.ListJobsForDateResponse, error)
}

type jobService struct {
	jobRepo        repositories.JobRepository
	occurrenceRepo repositories.JobOccurrenceRepository
	employeeRepo   repositories.EmployeeRepository

	conflicts    ConflictService
	availability AvailabilityService

	locks *utils.KeyedMutex
}

// NewJobService wires the assignment workflow. The keyed mutex must be
// the same instance every writer of job_occurrences uses, or the
// per-technician-day serialization holds only within one service.
func NewJobService(
	jobRepo repositories.JobRepository,
	occurrenceRepo repositories.JobOccurrenceRepository,
	employeeRepo repositories.EmployeeRepository,
	conflicts ConflictService,
	availability AvailabilityService,
	locks *utils.KeyedMutex,
) JobService {
	return &jobService{
		jobRepo:        jobRepo,
		occurrenceRepo: occurrenceRepo,
		employeeRepo:   employeeRepo,
		conflicts:      conflicts,
		availability:   availability,
		locks:          locks,
	}
}

func (s *jobService) lockAll(keys []string) func() {
	for _, k := range keys {
		s.locks.Lock(k)
	}
	return func() {
		for i := len(keys) - 1; i >= 0; i-- {
			s.locks.Unlock(keys[i])
		}
	}
}

// parseWindow validates and parses a date plus time-of-day pair.
func parseWindow(dateStr, startStr string, endStr *string) (time.Time, time.Time, *time.Time, error) {
	var zero time.Time

	date, err := time.Parse(constants.DateLayout, dateStr)
	if err != nil {
		return zero, zero, nil, utils.NewValidationError("start_date", "must be 2006-01-02")
	}
	start, err := ParseTimeOfDay(startStr)
	if err != nil {
		return zero, zero, nil, utils.NewValidationError("start_time", "must be 15:04")
	}

	var end *time.Time
	if endStr != nil {
		e, err := ParseTimeOfDay(*endStr)
		if err != nil {
			return zero, zero, nil, utils.NewValidationError("end_time", "must be 15:04")
		}
		if minuteOfDay(e) <= minuteOfDay(start) {
			return zero, zero, nil, utils.NewValidationError("end_time", "must be after start_time")
		}
		end = &e
	}
	return date, start, end, nil
}

func durationMinutes(start time.Time, end *time.Time) *int {
	if end == nil {
		return nil
	}
	return utils.Ptr(minuteOfDay(*end) - minuteOfDay(start))
}

func (s *jobService) CreateJob(ctx context.Context, req *dtos.CreateJobRequest) (*dtos.CreateJobResponse, error) {
	startDate, startTime, endTime, err := parseWindow(req.StartDate, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.TechnicianID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("technician %s: %w", req.TechnicianID, utils.ErrNotFound)
	}

	if err := s.checkWithinRadius(ctx, emp, req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	dates, err := s.expandRequestDates(startDate, req)
	if err != nil {
		return nil, err
	}

	unlock := s.lockAll(sortedLockKeys(emp.ID, dates))
	defer unlock()

	var scheduled, skipped []time.Time
	for _, d := range dates {
		conflict, err := s.conflicts.HasConflict(ctx, emp.ID, d, startTime, endTime, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if conflict {
			skipped = append(skipped, d)
		} else {
			scheduled = append(scheduled, d)
		}
	}
	if len(scheduled) == 0 {
		return nil, utils.NewConflictError(skipped)
	}

	job := &models.Job{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,

		Customer:  req.Customer,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,

		JobType:  models.JobType(req.JobType),
		Priority: models.JobPriority(req.Priority),
		Status:   models.JobStatusScheduled,

		TechnicianID: &emp.ID,

		StartDate:       startDate,
		StartTime:       startTime,
		EndTime:         endTime,
		DurationMinutes: durationMinutes(startTime, endTime),

		IsRecurring:  req.IsRecurring,
		CustomFields: customFieldsToModel(req.CustomFields),
	}
	if req.IsRecurring {
		if job.RecurringPattern, err = patternToModel(req.RecurringPattern); err != nil {
			return nil, err
		}
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	for _, d := range scheduled {
		occ := &models.JobOccurrence{
			ID:          uuid.New(),
			JobID:       job.ID,
			EmployeeID:  emp.ID,
			ServiceDate: d,
			StartTime:   CombineDateTime(d, startTime),
			Status:      models.OccurrenceStatusBooked,
		}
		if endTime != nil {
			occ.EndTime = utils.Ptr(CombineDateTime(d, *endTime))
		}
		if err := s.occurrenceRepo.Create(ctx, occ); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	events := []dtos.ScheduleEvent{{
		Type:       dtos.EventJobCreated,
		JobID:      job.ID,
		Dates:      formatDates(scheduled),
		OccurredAt: now,
	}}
	if len(skipped) > 0 {
		events = append(events, dtos.ScheduleEvent{
			Type:       dtos.EventConflictRejected,
			JobID:      job.ID,
			Dates:      formatDates(skipped),
			OccurredAt: now,
		})
		utils.Logger.WithField("job_id", job.ID).
			Warnf("skipped %d conflicting dates while booking recurrence", len(skipped))
	}

	return &dtos.CreateJobResponse{
		Job:            jobToDTO(job),
		ScheduledDates: formatDates(scheduled),
		SkippedDates:   formatDates(skipped),
		Events:         events,
	}, nil
}

// expandRequestDates turns a create request into the list of service
// dates to book: the start date alone for a one-off job, the expanded
// recurrence otherwise.
func (s *jobService) expandRequestDates(startDate time.Time, req *dtos.CreateJobRequest) ([]time.Time, error) {
	if !req.IsRecurring {
		if req.RecurringPattern != nil {
			return nil, utils.NewValidationError("recurring_pattern", "set on a non-recurring job")
		}
		return []time.Time{startDate}, nil
	}

	pattern, err := patternToModel(req.RecurringPattern)
	if err != nil {
		return nil, err
	}

	horizon := startDate.AddDate(0, 0, constants.DaysToSeedAhead)
	if req.HorizonEnd != nil {
		if horizon, err = time.Parse(constants.DateLayout, *req.HorizonEnd); err != nil {
			return nil, utils.NewValidationError("horizon_end", "must be 2006-01-02")
		}
	} else if pattern != nil && pattern.EndDate != nil {
		horizon = *pattern.EndDate
	}

	dates, err := ExpandOccurrences(startDate, pattern, horizon)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, utils.NewValidationError("recurring_pattern", "produces no dates in the horizon")
	}
	return dates, nil
}

// checkWithinRadius rejects a booking whose site lies outside the
// technician's effective service radius. Skipped when either side has
// no coordinates on file.
func (s *jobService) checkWithinRadius(ctx context.Context, emp *models.Employee, lat, lng float64) error {
	if (emp.Latitude == 0 && emp.Longitude == 0) || (lat == 0 && lng == 0) {
		return nil
	}
	radius, err := s.availability.EffectiveRadius(ctx, emp.ID, time.Now().UTC())
	if err != nil {
		return err
	}
	dist := utils.DistanceMiles(emp.Latitude, emp.Longitude, lat, lng)
	if dist > float64(radius.RadiusMiles) {
		return fmt.Errorf("site is %.1f mi away, radius is %d mi: %w",
			dist, radius.RadiusMiles, utils.ErrOutOfRadius)
	}
	return nil
}

func (s *jobService) GetJob(ctx context.Context, jobID uuid.UUID) (*dtos.JobResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s: %w", jobID, utils.ErrNotFound)
	}

	occs, err := s.occurrenceRepo.ListByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	resp := &dtos.JobResponse{Job: jobToDTO(job)}
	for _, occ := range occs {
		resp.Occurrences = append(resp.Occurrences, occurrenceToDTO(occ))
	}
	return resp, nil
}

func (s *jobService) RescheduleJob(
	ctx context.Context,
	jobID uuid.UUID,
	req *dtos.RescheduleJobRequest,
) (*dtos.RescheduleJobResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s: %w", jobID, utils.ErrNotFound)
	}
	if job.Status == models.JobStatusCanceled || job.Status == models.JobStatusCompleted {
		return nil, fmt.Errorf("job %s is %s: %w", jobID, job.Status, utils.ErrWrongStatus)
	}
	if job.TechnicianID == nil {
		return nil, fmt.Errorf("job %s has no technician: %w", jobID, utils.ErrWrongStatus)
	}

	occ, err := s.resolveOccurrence(ctx, job, req.OccurrenceID)
	if err != nil {
		return nil, err
	}

	newDate, newStart, newEnd, err := parseWindow(req.NewDate, req.NewStartTime, req.NewEndTime)
	if err != nil {
		return nil, err
	}

	empID := *job.TechnicianID
	unlock := s.lockAll(sortedLockKeys(empID, []time.Time{occ.ServiceDate, newDate}))
	defer unlock()

	conflicts, err := s.conflicts.FindConflicts(ctx, empID, newDate, newStart, newEnd, occ.ID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, utils.NewConflictError([]time.Time{newDate})
	}

	var endOnDate *time.Time
	if newEnd != nil {
		endOnDate = utils.Ptr(CombineDateTime(newDate, *newEnd))
	}
	updatedOcc, err := s.occurrenceRepo.RescheduleAtomic(
		ctx, occ.ID, req.RowVersion,
		newDate, CombineDateTime(newDate, newStart), endOnDate,
	)
	if err != nil {
		return nil, mapNoRows(err)
	}

	// A one-off job's schedule fields mirror its sole occurrence.
	updatedJob := job
	if !job.IsRecurring {
		updatedJob, err = s.jobRepo.UpdateScheduleAtomic(
			ctx, jobID, job.RowVersion,
			newDate, newStart, newEnd, durationMinutes(newStart, newEnd),
		)
		if err != nil {
			return nil, mapNoRows(err)
		}
	}

	return &dtos.RescheduleJobResponse{
		Job:        jobToDTO(updatedJob),
		Occurrence: occurrenceToDTO(updatedOcc),
		Events: []dtos.ScheduleEvent{{
			Type:       dtos.EventJobRescheduled,
			JobID:      jobID,
			Dates:      []string{newDate.Format(constants.DateLayout)},
			OccurredAt: time.Now().UTC(),
		}},
	}, nil
}

// resolveOccurrence picks the occurrence a reschedule targets. A
// recurring job must name one explicitly; a one-off job has exactly
// one booked occurrence.
func (s *jobService) resolveOccurrence(
	ctx context.Context,
	job *models.Job,
	occurrenceID *uuid.UUID,
) (*models.JobOccurrence, error) {
	if occurrenceID != nil {
		occ, err := s.occurrenceRepo.GetByID(ctx, *occurrenceID)
		if err != nil {
			return nil, err
		}
		if occ == nil || occ.JobID != job.ID {
			return nil, fmt.Errorf("occurrence %s of job %s: %w", occurrenceID, job.ID, utils.ErrNotFound)
		}
		return occ, nil
	}

	if job.IsRecurring {
		return nil, utils.NewValidationError("occurrence_id", "required when rescheduling a recurring job")
	}

	occs, err := s.occurrenceRepo.ListByJobID(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	for _, occ := range occs {
		if occ.Status == models.OccurrenceStatusBooked {
			return occ, nil
		}
	}
	return nil, fmt.Errorf("booked occurrence of job %s: %w", job.ID, utils.ErrNotFound)
}

func (s *jobService) CancelJob(
	ctx context.Context,
	jobID uuid.UUID,
	req *dtos.CancelJobRequest,
) (*dtos.CancelJobResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s: %w", jobID, utils.ErrNotFound)
	}

	// Cancelling twice is a no-op, not an error.
	if job.Status == models.JobStatusCanceled {
		return &dtos.CancelJobResponse{
			Job:              jobToDTO(job),
			AlreadyCancelled: true,
		}, nil
	}

	occs, err := s.occurrenceRepo.ListByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	var releasedDates []time.Time
	for _, occ := range occs {
		if occ.Status == models.OccurrenceStatusBooked {
			releasedDates = append(releasedDates, occ.ServiceDate)
		}
	}

	updated, err := s.jobRepo.UpdateStatusAtomic(ctx, jobID, models.JobStatusCanceled, req.RowVersion)
	if err != nil {
		return nil, mapNoRows(err)
	}
	// Occurrence rows are kept as CANCELED for the audit trail; the
	// dates they held become bookable immediately.
	if err := s.occurrenceRepo.CancelByJobID(ctx, jobID, time.Time{}); err != nil {
		return nil, err
	}

	return &dtos.CancelJobResponse{
		Job: jobToDTO(updated),
		Events: []dtos.ScheduleEvent{{
			Type:       dtos.EventJobCancelled,
			JobID:      jobID,
			Dates:      formatDates(releasedDates),
			OccurredAt: time.Now().UTC(),
		}},
	}, nil
}

func (s *jobService) StartJob(ctx context.Context, jobID uuid.UUID, rowVersion int64) (*dtos.JobResponse, error) {
	return s.transition(ctx, jobID, rowVersion, models.JobStatusScheduled, models.JobStatusInProgress)
}

func (s *jobService) CompleteJob(ctx context.Context, jobID uuid.UUID, rowVersion int64) (*dtos.JobResponse, error) {
	resp, err := s.transition(ctx, jobID, rowVersion, models.JobStatusInProgress, models.JobStatusCompleted)
	if err != nil {
		return nil, err
	}

	// Completed work no longer occupies the technician-day.
	occs, err := s.occurrenceRepo.ListByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	for _, occ := range occs {
		if occ.Status != models.OccurrenceStatusBooked {
			continue
		}
		occID := occ.ID
		_, err := repositories.WithRetry(ctx, 3, occID.String(),
			func(ctx context.Context) (*models.JobOccurrence, error) {
				return s.occurrenceRepo.GetByID(ctx, occID)
			},
			func(ctx context.Context, expectedVersion int64) (*models.JobOccurrence, error) {
				return s.occurrenceRepo.UpdateStatusAtomic(ctx, occID, models.OccurrenceStatusCompleted, expectedVersion)
			},
		)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (s *jobService) transition(
	ctx context.Context,
	jobID uuid.UUID,
	rowVersion int64,
	from, to models.JobStatusType,
) (*dtos.JobResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job %s: %w", jobID, utils.ErrNotFound)
	}
	if job.Status != from {
		return nil, fmt.Errorf("job %s is %s, want %s: %w", jobID, job.Status, from, utils.ErrWrongStatus)
	}

	updated, err := s.jobRepo.UpdateStatusAtomic(ctx, jobID, to, rowVersion)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &dtos.JobResponse{Job: jobToDTO(updated)}, nil
}

func (s *jobService) ListJobsForDate(ctx context.Context, date time.Time) (*dtos.ListJobsForDateResponse, error) {
	day := DateOnly(date)
	occs, err := s.occurrenceRepo.ListForDate(ctx, day, []models.OccurrenceStatusType{
		models.OccurrenceStatusBooked,
		models.OccurrenceStatusCompleted,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(occs))
	for _, occ := range occs {
		ids = append(ids, occ.JobID)
	}
	jobs, err := s.jobRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}

	entries := make([]dayEntry, 0, len(occs))
	for _, occ := range occs {
		job, ok := byID[occ.JobID]
		if !ok {
			utils.Logger.WithField("occurrence_id", occ.ID).Warn("occurrence without a job row, skipping")
			continue
		}
		entries = append(entries, dayEntry{occ: occ, job: job})
	}

	// Start time ascending, then priority (HIGH first), then creation.
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if am, bm := minuteOfDay(a.occ.StartTime), minuteOfDay(b.occ.StartTime); am != bm {
			return am < bm
		}
		if ar, br := a.job.Priority.Rank(), b.job.Priority.Rank(); ar != br {
			return ar < br
		}
		if !a.occ.CreatedAt.Equal(b.occ.CreatedAt) {
			return a.occ.CreatedAt.Before(b.occ.CreatedAt)
		}
		return a.occ.ID.String() < b.occ.ID.String()
	})

	resp := &dtos.ListJobsForDateResponse{
		Date:    day.Format(constants.DateLayout),
		Results: make([]dtos.DayScheduleEntry, 0, len(entries)),
		Total:   len(entries),
	}
	for _, e := range entries {
		resp.Results = append(resp.Results, dtos.DayScheduleEntry{
			Occurrence: occurrenceToDTO(e.occ),
			Job:        jobToDTO(e.job),
		})
	}
	return resp, nil
}

type dayEntry struct {
	occ *models.JobOccurrence
	job *models.Job
}
