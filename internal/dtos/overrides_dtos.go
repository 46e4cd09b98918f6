package dtos

import (
	"time"

	"github.com/google/uuid"
)

/*
CreateOverrideRequest opens a temporary radius window for an employee.
The window is half-open: effective from start_time inclusive to
end_time exclusive.
*/
type CreateOverrideRequest struct {
	EmployeeID uuid.UUID `json:"employee_id" validate:"required"`

	OverrideRadiusMiles int    `json:"override_radius_miles" validate:"required,min=1,max=500"`
	Reason              string `json:"reason" validate:"required,max=500"`

	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

type OverrideDTO struct {
	ID         uuid.UUID `json:"id"`
	EmployeeID uuid.UUID `json:"employee_id"`

	OverrideRadiusMiles int    `json:"override_radius_miles"`
	Reason              string `json:"reason"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	IsActive  bool      `json:"is_active"`

	RowVersion int64     `json:"row_version"`
	CreatedAt  time.Time `json:"created_at"`
}

type ListOverridesResponse struct {
	Results []OverrideDTO `json:"results"`
	Total   int           `json:"total"`
}

type DeactivateOverrideRequest struct {
	RowVersion int64 `json:"row_version" validate:"required,min=1"`
}
