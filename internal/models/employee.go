package models

import (
	"time"

	"github.com/google/uuid"
)

type EmployeeStatusType string

const (
	EmployeeStatusAvailable EmployeeStatusType = "AVAILABLE"
	EmployeeStatusBusy      EmployeeStatusType = "BUSY"
	EmployeeStatusBreak     EmployeeStatusType = "BREAK"
	EmployeeStatusOffline   EmployeeStatusType = "OFFLINE"
)

// DaySlots is the base-calendar template for one weekday: the ordered
// start-of-hour labels ("09:00") the employee normally works.
type DaySlots struct {
	Weekday time.Weekday `json:"weekday"` // Sunday = 0, ..., Saturday = 6
	Slots   []string     `json:"slots"`
}

type Employee struct {
	Versioned

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

	Status EmployeeStatusType `json:"status"`

	// WeeklySlots is the authoritative base calendar. Free slots for a
	// date are derived from it minus booked occurrences, never stored.
	WeeklySlots []DaySlots `json:"weekly_slots,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Employee) GetID() string {
	return e.ID.String()
}

// SlotsForWeekday returns the base template for a weekday, or nil.
func (e *Employee) SlotsForWeekday(w time.Weekday) []string {
	for i := range e.WeeklySlots {
		if e.WeeklySlots[i].Weekday == w {
			return e.WeeklySlots[i].Slots
		}
	}
	return nil
}
