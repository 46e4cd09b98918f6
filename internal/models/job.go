package models

import (
	"time"

	"github.com/google/uuid"
)

type JobType string

const (
	JobTypeInspection   JobType = "INSPECTION"
	JobTypeRepair       JobType = "REPAIR"
	JobTypeInstallation JobType = "INSTALLATION"
	JobTypeMaintenance  JobType = "MAINTENANCE"
	JobTypeConsultation JobType = "CONSULTATION"
)

type JobPriority string

const (
	PriorityHigh   JobPriority = "HIGH"
	PriorityMedium JobPriority = "MEDIUM"
	PriorityLow    JobPriority = "LOW"
)

// rank orders priorities for list sorting; HIGH sorts first.
func (p JobPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

type JobStatusType string

const (
	JobStatusScheduled  JobStatusType = "SCHEDULED"
	JobStatusInProgress JobStatusType = "IN_PROGRESS"
	JobStatusCompleted  JobStatusType = "COMPLETED"
	JobStatusCanceled   JobStatusType = "CANCELED"
)

type RecurrenceFrequencyType string

const (
	FreqDaily   RecurrenceFrequencyType = "DAILY"
	FreqWeekly  RecurrenceFrequencyType = "WEEKLY"
	FreqMonthly RecurrenceFrequencyType = "MONTHLY"
)

/*
RecurringPattern describes how a job repeats. DaysOfWeek is meaningful
only for WEEKLY (0=Sunday .. 6=Saturday, matches time.Weekday);
DayOfMonth only for MONTHLY. A nil EndDate means the recurrence is
unbounded and must be capped by the caller's horizon.
*/
type RecurringPattern struct {
	Frequency RecurrenceFrequencyType `json:"frequency"`
	Interval  int                     `json:"interval"`

	DaysOfWeek []int16 `json:"days_of_week,omitempty"`
	DayOfMonth *int    `json:"day_of_month,omitempty"`

	EndDate *time.Time `json:"end_date,omitempty"`

	SkipHolidays      bool        `json:"skip_holidays"`
	HolidayExceptions []time.Time `json:"holiday_exceptions,omitempty"`
}

// CustomField is a user-defined key/value attached to a job. Fields
// are kept as an ordered slice, not a map, so display order survives
// a round trip through the store.
type CustomField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Job struct {
	Versioned

	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`

	Customer  string  `json:"customer"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	JobType  JobType       `json:"job_type"`
	Priority JobPriority   `json:"priority"`
	Status   JobStatusType `json:"status"`

	TechnicianID *uuid.UUID `json:"technician_id,omitempty"`

	StartDate time.Time  `json:"start_date"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Derived from StartTime/EndTime on every write; never accepted
	// from the client, so it cannot drift from the real window.
	DurationMinutes *int `json:"duration_minutes,omitempty"`

	IsRecurring      bool              `json:"is_recurring"`
	RecurringPattern *RecurringPattern `json:"recurring_pattern,omitempty"`

	CustomFields []CustomField `json:"custom_fields,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (j *Job) GetID() string {
	return j.ID.String()
}
