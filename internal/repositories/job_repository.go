package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/crewfield/scheduling-service/internal/models"
	"github.com/crewfield/scheduling-service/internal/utils"
)

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Job, error)
	ListByStatus(ctx context.Context, status models.JobStatusType) ([]*models.Job, error)

	UpdateScheduleAtomic(
		ctx context.Context,
		jobID uuid.UUID,
		expectedVersion int64,
		newDate time.Time,
		newStart time.Time,
		newEnd *time.Time,
		newDuration *int,
	) (*models.Job, error)
	UpdateStatusAtomic(ctx context.Context, jobID uuid.UUID, newStatus models.JobStatusType, expectedVersion int64) (*models.Job, error)
}

type jobRepo struct {
	db DB
}

func NewJobRepository(db DB) JobRepository {
	return &jobRepo{db: db}
}

func baseSelectJob() string {
	return `
        SELECT
            id, title, description, customer, address, latitude, longitude,
            job_type, priority, status, technician_id,
            start_date, start_time, end_time, duration_minutes,
            is_recurring, recurring_pattern, custom_fields,
            row_version, created_at, updated_at
        FROM jobs
    `
}

func scanJob(row pgx.Row) (*models.Job, error) {
	var (
		j           models.Job
		patternJSON []byte
		fieldsJSON  []byte
	)
	err := row.Scan(
		&j.ID,
		&j.Title,
		&j.Description,
		&j.Customer,
		&j.Address,
		&j.Latitude,
		&j.Longitude,
		&j.JobType,
		&j.Priority,
		&j.Status,
		&j.TechnicianID,
		&j.StartDate,
		&j.StartTime,
		&j.EndTime,
		&j.DurationMinutes,
		&j.IsRecurring,
		&patternJSON,
		&fieldsJSON,
		&j.RowVersion,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(patternJSON) > 0 {
		var p models.RecurringPattern
		if err := json.Unmarshal(patternJSON, &p); err != nil {
			return nil, fmt.Errorf("decoding recurring_pattern for job %s: %w", j.ID, err)
		}
		j.RecurringPattern = &p
	}
	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &j.CustomFields); err != nil {
			return nil, fmt.Errorf("decoding custom_fields for job %s: %w", j.ID, err)
		}
	}
	return &j, nil
}

func (r *jobRepo) Create(ctx context.Context, job *models.Job) error {
	var patternJSON, fieldsJSON []byte
	var err error
	if job.RecurringPattern != nil {
		if patternJSON, err = json.Marshal(job.RecurringPattern); err != nil {
			return err
		}
	}
	if len(job.CustomFields) > 0 {
		if fieldsJSON, err = json.Marshal(job.CustomFields); err != nil {
			return err
		}
	}

	// Timestamps are assigned here and inserted as-is, so the model the
	// caller hands back in the create response matches the stored row.
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	job.RowVersion = 1

	_, err = r.db.Exec(ctx, `
        INSERT INTO jobs (
            id, title, description, customer, address, latitude, longitude,
            job_type, priority, status, technician_id,
            start_date, start_time, end_time, duration_minutes,
            is_recurring, recurring_pattern, custom_fields,
            created_at, updated_at, row_version
        ) VALUES (
            $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$19,1
        )
    `,
		job.ID,
		job.Title,
		job.Description,
		job.Customer,
		job.Address,
		job.Latitude,
		job.Longitude,
		job.JobType,
		job.Priority,
		job.Status,
		job.TechnicianID,
		job.StartDate,
		job.StartTime,
		job.EndTime,
		job.DurationMinutes,
		job.IsRecurring,
		patternJSON,
		fieldsJSON,
		now,
	)
	return err
}

func (r *jobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	row := r.db.QueryRow(ctx, baseSelectJob()+" WHERE id=$1", id)
	return scanJob(row)
}

func (r *jobRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Job, error) {
	if len(ids) == 0 {
		return []*models.Job{}, nil
	}
	rows, err := r.db.Query(ctx, baseSelectJob()+" WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *jobRepo) ListByStatus(ctx context.Context, status models.JobStatusType) ([]*models.Job, error) {
	rows, err := r.db.Query(ctx, baseSelectJob()+" WHERE status=$1 ORDER BY created_at", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *jobRepo) UpdateScheduleAtomic(
	ctx context.Context,
	jobID uuid.UUID,
	expectedVersion int64,
	newDate time.Time,
	newStart time.Time,
	newEnd *time.Time,
	newDuration *int,
) (*models.Job, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	row := tx.QueryRow(ctx, baseSelectJob()+" WHERE id=$1 FOR UPDATE", jobID)
	job, err := scanJob(row)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, pgx.ErrNoRows
	}
	if job.RowVersion != expectedVersion {
		return job, utils.ErrRowVersionConflict
	}

	_, err = tx.Exec(ctx, `
        UPDATE jobs
        SET start_date=$1, start_time=$2, end_time=$3, duration_minutes=$4,
            row_version=row_version+1, updated_at=NOW()
        WHERE id=$5
    `, newDate, newStart, newEnd, newDuration, jobID)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectJob()+" WHERE id=$1", jobID)
	return scanJob(newRow)
}

func (r *jobRepo) UpdateStatusAtomic(
	ctx context.Context,
	jobID uuid.UUID,
	newStatus models.JobStatusType,
	expectedVersion int64,
) (*models.Job, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	row := tx.QueryRow(ctx, baseSelectJob()+" WHERE id=$1 FOR UPDATE", jobID)
	job, err := scanJob(row)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, pgx.ErrNoRows
	}
	if job.RowVersion != expectedVersion {
		return job, utils.ErrRowVersionConflict
	}

	_, err = tx.Exec(ctx, `
        UPDATE jobs
        SET status=$1, row_version=row_version+1, updated_at=NOW()
        WHERE id=$2
    `, newStatus, jobID)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectJob()+" WHERE id=$1", jobID)
	return scanJob(newRow)
}
