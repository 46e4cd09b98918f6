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

type EmployeeRepository interface {
	Create(ctx context.Context, emp *models.Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	ListAll(ctx context.Context) ([]*models.Employee, error)
	UpdateStatusAtomic(ctx context.Context, id uuid.UUID, newStatus models.EmployeeStatusType, expectedVersion int64) (*models.Employee, error)
}

type employeeRepo struct {
	db DB
}

func NewEmployeeRepository(db DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func baseSelectEmployee() string {
	return `
        SELECT
            id, name, email, phone_number, skills, default_radius_miles,
            street_address, city, state, zip_code, latitude, longitude, timezone,
            status, weekly_slots, row_version, created_at, updated_at
        FROM employees
    `
}

func scanEmployee(row pgx.Row) (*models.Employee, error) {
	var (
		e         models.Employee
		slotsJSON []byte
	)
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Email,
		&e.PhoneNumber,
		&e.Skills,
		&e.DefaultRadiusMiles,
		&e.StreetAddress,
		&e.City,
		&e.State,
		&e.ZipCode,
		&e.Latitude,
		&e.Longitude,
		&e.TimeZone,
		&e.Status,
		&slotsJSON,
		&e.RowVersion,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(slotsJSON) > 0 {
		if err := json.Unmarshal(slotsJSON, &e.WeeklySlots); err != nil {
			return nil, fmt.Errorf("decoding weekly_slots for employee %s: %w", e.ID, err)
		}
	}
	return &e, nil
}

func (r *employeeRepo) Create(ctx context.Context, emp *models.Employee) error {
	var slotsJSON []byte
	var err error
	if len(emp.WeeklySlots) > 0 {
		if slotsJSON, err = json.Marshal(emp.WeeklySlots); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	emp.CreatedAt = now
	emp.UpdatedAt = now
	emp.RowVersion = 1

	_, err = r.db.Exec(ctx, `
        INSERT INTO employees (
            id, name, email, phone_number, skills, default_radius_miles,
            street_address, city, state, zip_code, latitude, longitude, timezone,
            status, weekly_slots, created_at, updated_at, row_version
        ) VALUES (
            $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$16,1
        )
    `,
		emp.ID,
		emp.Name,
		emp.Email,
		emp.PhoneNumber,
		emp.Skills,
		emp.DefaultRadiusMiles,
		emp.StreetAddress,
		emp.City,
		emp.State,
		emp.ZipCode,
		emp.Latitude,
		emp.Longitude,
		emp.TimeZone,
		emp.Status,
		slotsJSON,
		now,
	)
	return err
}

func (r *employeeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	row := r.db.QueryRow(ctx, baseSelectEmployee()+" WHERE id=$1", id)
	return scanEmployee(row)
}

func (r *employeeRepo) ListAll(ctx context.Context) ([]*models.Employee, error) {
	rows, err := r.db.Query(ctx, baseSelectEmployee()+" ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *employeeRepo) UpdateStatusAtomic(
	ctx context.Context,
	id uuid.UUID,
	newStatus models.EmployeeStatusType,
	expectedVersion int64,
) (*models.Employee, error) {
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

	row := tx.QueryRow(ctx, baseSelectEmployee()+" WHERE id=$1 FOR UPDATE", id)
	emp, err := scanEmployee(row)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, pgx.ErrNoRows
	}
	if emp.RowVersion != expectedVersion {
		return emp, utils.ErrRowVersionConflict
	}

	_, err = tx.Exec(ctx, `
        UPDATE employees
        SET status=$1, row_version=row_version+1, updated_at=NOW()
        WHERE id=$2
    `, newStatus, id)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectEmployee()+" WHERE id=$1", id)
	return scanEmployee(newRow)
}
