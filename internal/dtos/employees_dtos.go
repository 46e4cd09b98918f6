package dtos

import (
	"time"

	"github.com/google/uuid"
)

type DaySlotsDTO struct {
	Weekday int      `json:"weekday" validate:"min=0,max=6"`
	Slots   []string `json:"slots" validate:"dive,datetime=15:04"`
}

type CreateEmployeeRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,e164"`

	Skills []string `json:"skills,omitempty"`

	DefaultRadiusMiles int `json:"default_radius_miles" validate:"required,min=1,max=500"`

	StreetAddress string  `json:"street_address" validate:"required"`
	City          string  `json:"city" validate:"required"`
	State         string  `json:"state" validate:"required,len=2"`
	ZipCode       string  `json:"zip_code" validate:"required,len=5"`
	Latitude      float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude     float64 `json:"longitude" validate:"min=-180,max=180"`

	WeeklySlots []DaySlotsDTO `json:"weekly_slots,omitempty" validate:"omitempty,dive"`
}

type EmployeeDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`

	Skills []string `json:"skills,omitempty"`

	DefaultRadiusMiles int `json:"default_radius_miles"`

	StreetAddress string  `json:"street_address"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	ZipCode       string  `json:"zip_code"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	TimeZone      string  `json:"timezone"`

	Status string `json:"status"`

	WeeklySlots []DaySlotsDTO `json:"weekly_slots,omitempty"`

	RowVersion int64     `json:"row_version"`
	CreatedAt  time.Time `json:"created_at"`
}

type ListEmployeesResponse struct {
	Results []EmployeeDTO `json:"results"`
	Total   int           `json:"total"`
}

type UpdateEmployeeStatusRequest struct {
	Status     string `json:"status" validate:"required,oneof=AVAILABLE BUSY BREAK OFFLINE"`
	RowVersion int64  `json:"row_version" validate:"required,min=1"`
}

/*
AvailabilityResponse is the derived free-slot view for one
technician-day: the weekly template minus booked occurrences. It is
computed on read and never stored, so it cannot drift from bookings.
*/
type AvailabilityResponse struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	Date       string    `json:"date"`
	FreeSlots  []string  `json:"free_slots"`
}

// Sources for the effective-radius resolution.
const (
	RadiusSourceDefault  = "default"
	RadiusSourceOverride = "override"
)

type EffectiveRadiusResponse struct {
	EmployeeID  uuid.UUID `json:"employee_id"`
	At          time.Time `json:"at"`
	RadiusMiles int       `json:"radius_miles"`

	Source     string     `json:"source"`
	OverrideID *uuid.UUID `json:"override_id,omitempty"`
}
