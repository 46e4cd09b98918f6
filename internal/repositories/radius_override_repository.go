package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/crewfield/scheduling-service/internal/models"
	"github.com/crewfield/scheduling-service/internal/utils"
)

type RadiusOverrideRepository interface {
	Create(ctx context.Context, ov *models.RadiusOverride) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RadiusOverride, error)
	ListByEmployeeID(ctx context.Context, employeeID uuid.UUID) ([]*models.RadiusOverride, error)
	ListEffectiveAt(ctx context.Context, employeeID uuid.UUID, at time.Time) ([]*models.RadiusOverride, error)
	DeactivateAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64) (*models.RadiusOverride, error)
}

type radiusOverrideRepo struct {
	db DB
}

func NewRadiusOverrideRepository(db DB) RadiusOverrideRepository {
	return &radiusOverrideRepo{db: db}
}

func baseSelectOverride() string {
	return `
        SELECT
            id, employee_id, override_radius_miles, reason,
            start_time, end_time, is_active,
            row_version, created_at, updated_at
        FROM radius_overrides
    `
}

func scanOverride(row pgx.Row) (*models.RadiusOverride, error) {
	var ov models.RadiusOverride
	err := row.Scan(
		&ov.ID,
		&ov.EmployeeID,
		&ov.OverrideRadiusMiles,
		&ov.Reason,
		&ov.StartTime,
		&ov.EndTime,
		&ov.IsActive,
		&ov.RowVersion,
		&ov.CreatedAt,
		&ov.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ov, nil
}

func (r *radiusOverrideRepo) Create(ctx context.Context, ov *models.RadiusOverride) error {
	now := time.Now().UTC()
	ov.CreatedAt = now
	ov.UpdatedAt = now
	ov.RowVersion = 1

	_, err := r.db.Exec(ctx, `
        INSERT INTO radius_overrides (
            id, employee_id, override_radius_miles, reason,
            start_time, end_time, is_active,
            created_at, updated_at, row_version
        ) VALUES (
            $1,$2,$3,$4,$5,$6,$7,$8,$8,1
        )
    `,
		ov.ID,
		ov.EmployeeID,
		ov.OverrideRadiusMiles,
		ov.Reason,
		ov.StartTime,
		ov.EndTime,
		ov.IsActive,
		now,
	)
	return err
}

func (r *radiusOverrideRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RadiusOverride, error) {
	row := r.db.QueryRow(ctx, baseSelectOverride()+" WHERE id=$1", id)
	return scanOverride(row)
}

func (r *radiusOverrideRepo) listWhere(ctx context.Context, where string, args ...interface{}) ([]*models.RadiusOverride, error) {
	rows, err := r.db.Query(ctx, baseSelectOverride()+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.RadiusOverride
	for rows.Next() {
		ov, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ov)
	}
	return out, rows.Err()
}

func (r *radiusOverrideRepo) ListByEmployeeID(ctx context.Context, employeeID uuid.UUID) ([]*models.RadiusOverride, error) {
	return r.listWhere(ctx, " WHERE employee_id=$1 ORDER BY created_at DESC", employeeID)
}

// ListEffectiveAt returns active overrides whose [start_time, end_time)
// window contains the instant, newest creation first. The availability
// resolver relies on this tie-break order.
func (r *radiusOverrideRepo) ListEffectiveAt(
	ctx context.Context,
	employeeID uuid.UUID,
	at time.Time,
) ([]*models.RadiusOverride, error) {
	return r.listWhere(ctx, `
        WHERE employee_id=$1
          AND is_active=TRUE
          AND start_time<=$2
          AND end_time>$2
        ORDER BY created_at DESC, id DESC
    `, employeeID, at)
}

func (r *radiusOverrideRepo) DeactivateAtomic(
	ctx context.Context,
	id uuid.UUID,
	expectedVersion int64,
) (*models.RadiusOverride, error) {
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

	row := tx.QueryRow(ctx, baseSelectOverride()+" WHERE id=$1 FOR UPDATE", id)
	ov, err := scanOverride(row)
	if err != nil {
		return nil, err
	}
	if ov == nil {
		return nil, pgx.ErrNoRows
	}
	if ov.RowVersion != expectedVersion {
		return ov, utils.ErrRowVersionConflict
	}

	_, err = tx.Exec(ctx, `
        UPDATE radius_overrides
        SET is_active=FALSE, row_version=row_version+1, updated_at=NOW()
        WHERE id=$1
    `, id)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectOverride()+" WHERE id=$1", id)
	return scanOverride(newRow)
}
