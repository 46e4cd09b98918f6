package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/crewfield/scheduling-service/internal/constants"
	"github.com/crewfield/scheduling-service/internal/models"
	"github.com/crewfield/scheduling-service/internal/utils"
)

type JobOccurrenceRepository interface {
	Create(ctx context.Context, occ *models.JobOccurrence) error
	CreateIfNotExists(ctx context.Context, occ *models.JobOccurrence) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.JobOccurrence, error)

	ListForEmployeeDate(ctx context.Context, employeeID uuid.UUID, date time.Time, statuses []models.OccurrenceStatusType) ([]*models.JobOccurrence, error)
	ListForDate(ctx context.Context, date time.Time, statuses []models.OccurrenceStatusType) ([]*models.JobOccurrence, error)
	ListByJobID(ctx context.Context, jobID uuid.UUID) ([]*models.JobOccurrence, error)

	RescheduleAtomic(
		ctx context.Context,
		occurrenceID uuid.UUID,
		expectedVersion int64,
		newDate time.Time,
		newStart time.Time,
		newEnd *time.Time,
	) (*models.JobOccurrence, error)
	UpdateStatusAtomic(ctx context.Context, occurrenceID uuid.UUID, newStatus models.OccurrenceStatusType, expectedVersion int64) (*models.JobOccurrence, error)
	CancelByJobID(ctx context.Context, jobID uuid.UUID, onOrAfter time.Time) error
}

type jobOccurrenceRepo struct {
	db DB
}

func NewJobOccurrenceRepository(db DB) JobOccurrenceRepository {
	return &jobOccurrenceRepo{db: db}
}

func baseSelectOccurrence() string {
	return `
        SELECT
            id, job_id, employee_id, service_date, start_time, end_time,
            status, row_version, created_at, updated_at
        FROM job_occurrences
    `
}

func scanOccurrence(row pgx.Row) (*models.JobOccurrence, error) {
	var occ models.JobOccurrence
	err := row.Scan(
		&occ.ID,
		&occ.JobID,
		&occ.EmployeeID,
		&occ.ServiceDate,
		&occ.StartTime,
		&occ.EndTime,
		&occ.Status,
		&occ.RowVersion,
		&occ.CreatedAt,
		&occ.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &occ, nil
}

func (r *jobOccurrenceRepo) Create(ctx context.Context, occ *models.JobOccurrence) error {
	stampNewOccurrence(occ)
	_, err := r.db.Exec(ctx, `
        INSERT INTO job_occurrences (
            id, job_id, employee_id, service_date, start_time, end_time,
            status, created_at, updated_at, row_version
        ) VALUES (
            $1,$2,$3,$4,$5,$6,$7,$8,$8,1
        )
    `,
		occ.ID,
		occ.JobID,
		occ.EmployeeID,
		occ.ServiceDate,
		occ.StartTime,
		occ.EndTime,
		occ.Status,
		occ.CreatedAt,
	)
	return err
}

func (r *jobOccurrenceRepo) CreateIfNotExists(ctx context.Context, occ *models.JobOccurrence) error {
	stampNewOccurrence(occ)
	_, err := r.db.Exec(ctx, `
        INSERT INTO job_occurrences (
            id, job_id, employee_id, service_date, start_time, end_time,
            status, created_at, updated_at, row_version
        ) VALUES (
            $1,$2,$3,$4,$5,$6,$7,$8,$8,1
        )
        ON CONFLICT (job_id, service_date) DO NOTHING
    `,
		occ.ID,
		occ.JobID,
		occ.EmployeeID,
		occ.ServiceDate,
		occ.StartTime,
		occ.EndTime,
		occ.Status,
		occ.CreatedAt,
	)
	return err
}

// stampNewOccurrence fills the insert-time columns on the model so the
// caller's copy matches the stored row.
func stampNewOccurrence(occ *models.JobOccurrence) {
	now := time.Now().UTC()
	occ.CreatedAt = now
	occ.UpdatedAt = now
	occ.RowVersion = 1
}

func (r *jobOccurrenceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.JobOccurrence, error) {
	row := r.db.QueryRow(ctx, baseSelectOccurrence()+" WHERE id=$1", id)
	return scanOccurrence(row)
}

func (r *jobOccurrenceRepo) listWhere(ctx context.Context, where string, args ...interface{}) ([]*models.JobOccurrence, error) {
	rows, err := r.db.Query(ctx, baseSelectOccurrence()+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.JobOccurrence
	for rows.Next() {
		occ, err := scanOccurrence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, occ)
	}
	return out, rows.Err()
}

func statusStrings(statuses []models.OccurrenceStatusType) []string {
	out := make([]string, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, string(st))
	}
	return out
}

func (r *jobOccurrenceRepo) ListForEmployeeDate(
	ctx context.Context,
	employeeID uuid.UUID,
	date time.Time,
	statuses []models.OccurrenceStatusType,
) ([]*models.JobOccurrence, error) {
	where := " WHERE employee_id=$1 AND service_date=$2"
	args := []interface{}{employeeID, date.Format(constants.DateLayout)}
	if len(statuses) > 0 {
		where += " AND status = ANY($3)"
		args = append(args, statusStrings(statuses))
	}
	where += " ORDER BY start_time, created_at"
	return r.listWhere(ctx, where, args...)
}

func (r *jobOccurrenceRepo) ListForDate(
	ctx context.Context,
	date time.Time,
	statuses []models.OccurrenceStatusType,
) ([]*models.JobOccurrence, error) {
	where := " WHERE service_date=$1"
	args := []interface{}{date.Format(constants.DateLayout)}
	if len(statuses) > 0 {
		where += " AND status = ANY($2)"
		args = append(args, statusStrings(statuses))
	}
	where += " ORDER BY start_time, created_at"
	return r.listWhere(ctx, where, args...)
}

func (r *jobOccurrenceRepo) ListByJobID(ctx context.Context, jobID uuid.UUID) ([]*models.JobOccurrence, error) {
	return r.listWhere(ctx, " WHERE job_id=$1 ORDER BY service_date", jobID)
}

func (r *jobOccurrenceRepo) RescheduleAtomic(
	ctx context.Context,
	occurrenceID uuid.UUID,
	expectedVersion int64,
	newDate time.Time,
	newStart time.Time,
	newEnd *time.Time,
) (*models.JobOccurrence, error) {
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

	row := tx.QueryRow(ctx, baseSelectOccurrence()+" WHERE id=$1 FOR UPDATE", occurrenceID)
	occ, err := scanOccurrence(row)
	if err != nil {
		return nil, err
	}
	if occ == nil {
		return nil, pgx.ErrNoRows
	}
	if occ.RowVersion != expectedVersion {
		return occ, utils.ErrRowVersionConflict
	}
	if occ.Status != models.OccurrenceStatusBooked {
		return occ, utils.ErrWrongStatus
	}

	_, err = tx.Exec(ctx, `
        UPDATE job_occurrences
        SET service_date=$1, start_time=$2, end_time=$3,
            row_version=row_version+1, updated_at=NOW()
        WHERE id=$4
    `, newDate, newStart, newEnd, occurrenceID)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectOccurrence()+" WHERE id=$1", occurrenceID)
	return scanOccurrence(newRow)
}

func (r *jobOccurrenceRepo) UpdateStatusAtomic(
	ctx context.Context,
	occurrenceID uuid.UUID,
	newStatus models.OccurrenceStatusType,
	expectedVersion int64,
) (*models.JobOccurrence, error) {
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

	row := tx.QueryRow(ctx, baseSelectOccurrence()+" WHERE id=$1 FOR UPDATE", occurrenceID)
	occ, err := scanOccurrence(row)
	if err != nil {
		return nil, err
	}
	if occ == nil {
		return nil, pgx.ErrNoRows
	}
	if occ.RowVersion != expectedVersion {
		return occ, utils.ErrRowVersionConflict
	}

	_, err = tx.Exec(ctx, `
        UPDATE job_occurrences
        SET status=$1, row_version=row_version+1, updated_at=NOW()
        WHERE id=$2
    `, newStatus, occurrenceID)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectOccurrence()+" WHERE id=$1", occurrenceID)
	return scanOccurrence(newRow)
}

// CancelByJobID marks every booked occurrence of a job on or after the
// given date as CANCELED. Records are kept for the audit trail.
func (r *jobOccurrenceRepo) CancelByJobID(ctx context.Context, jobID uuid.UUID, onOrAfter time.Time) error {
	_, err := r.db.Exec(ctx, `
        UPDATE job_occurrences
        SET status='CANCELED', row_version=row_version+1, updated_at=NOW()
        WHERE job_id=$1
          AND service_date>=$2
          AND status='BOOKED'
    `, jobID, onOrAfter.Format(constants.DateLayout))
	return err
}
