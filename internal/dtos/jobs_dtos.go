package dtos

import (
	"time"

	"github.com/google/uuid"
)

/*
RecurringPatternDTO is the wire form of a recurrence rule. Dates are
"2006-01-02" strings; days_of_week uses 0=Sunday .. 6=Saturday.
*/
type RecurringPatternDTO struct {
	Frequency string `json:"frequency" validate:"required,oneof=DAILY WEEKLY MONTHLY"`
	Interval  int    `json:"interval" validate:"required,min=1"`

	DaysOfWeek []int16 `json:"days_of_week,omitempty" validate:"omitempty,dive,min=0,max=6"`
	DayOfMonth *int    `json:"day_of_month,omitempty" validate:"omitempty,min=1,max=31"`

	EndDate *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`

	SkipHolidays      bool     `json:"skip_holidays"`
	HolidayExceptions []string `json:"holiday_exceptions,omitempty" validate:"omitempty,dive,datetime=2006-01-02"`
}

type CustomFieldDTO struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

/*
CreateJobRequest is the payload for POST /api/v1/jobs. Times of day are
"15:04" strings; end_time may be omitted for an open-ended visit.
duration_minutes is intentionally absent: the server derives it.
*/
type CreateJobRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`

	Customer  string  `json:"customer" validate:"required,max=200"`
	Address   string  `json:"address" validate:"required,max=400"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`

	JobType  string `json:"job_type" validate:"required,oneof=INSPECTION REPAIR INSTALLATION MAINTENANCE CONSULTATION"`
	Priority string `json:"priority" validate:"required,oneof=HIGH MEDIUM LOW"`

	TechnicianID uuid.UUID `json:"technician_id" validate:"required"`

	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	StartTime string  `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   *string `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`

	IsRecurring      bool                 `json:"is_recurring"`
	RecurringPattern *RecurringPatternDTO `json:"recurring_pattern,omitempty"`

	// Horizon for expanding an unbounded recurrence, "2006-01-02".
	// Defaults to start_date + the server's seed window when omitted.
	HorizonEnd *string `json:"horizon_end,omitempty" validate:"omitempty,datetime=2006-01-02"`

	CustomFields []CustomFieldDTO `json:"custom_fields,omitempty" validate:"omitempty,dive"`
}

type JobDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`

	Customer  string  `json:"customer"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	JobType  string `json:"job_type"`
	Priority string `json:"priority"`
	Status   string `json:"status"`

	TechnicianID *uuid.UUID `json:"technician_id,omitempty"`

	StartDate       string  `json:"start_date"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`

	IsRecurring      bool                 `json:"is_recurring"`
	RecurringPattern *RecurringPatternDTO `json:"recurring_pattern,omitempty"`

	CustomFields []CustomFieldDTO `json:"custom_fields,omitempty"`

	RowVersion int64     `json:"row_version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type OccurrenceDTO struct {
	ID         uuid.UUID `json:"id"`
	JobID      uuid.UUID `json:"job_id"`
	EmployeeID uuid.UUID `json:"employee_id"`

	ServiceDate string  `json:"service_date"`
	StartTime   string  `json:"start_time"`
	EndTime     *string `json:"end_time,omitempty"`

	Status     string `json:"status"`
	RowVersion int64  `json:"row_version"`
}

/*
CreateJobResponse reports what was actually booked. ScheduledDates and
SkippedDates partition the expanded dates; a request is rejected
outright (409) only when every date would be skipped.
*/
type CreateJobResponse struct {
	Job JobDTO `json:"job"`

	ScheduledDates []string `json:"scheduled_dates"`
	SkippedDates   []string `json:"skipped_dates,omitempty"`

	Events []ScheduleEvent `json:"events"`
}

/*
RescheduleJobRequest moves one occurrence to a new technician-day
window. occurrence_id is required for recurring jobs (which occurrence
to move); a non-recurring job's sole occurrence is found implicitly.
*/
type RescheduleJobRequest struct {
	OccurrenceID *uuid.UUID `json:"occurrence_id,omitempty"`

	NewDate      string  `json:"new_date" validate:"required,datetime=2006-01-02"`
	NewStartTime string  `json:"new_start_time" validate:"required,datetime=15:04"`
	NewEndTime   *string `json:"new_end_time,omitempty" validate:"omitempty,datetime=15:04"`

	RowVersion int64 `json:"row_version" validate:"required,min=1"`
}

type RescheduleJobResponse struct {
	Job        JobDTO        `json:"job"`
	Occurrence OccurrenceDTO `json:"occurrence"`

	Events []ScheduleEvent `json:"events"`
}

type CancelJobRequest struct {
	RowVersion int64 `json:"row_version" validate:"required,min=1"`
}

type CancelJobResponse struct {
	Job JobDTO `json:"job"`

	// True when the job was already canceled and nothing changed.
	AlreadyCancelled bool `json:"already_cancelled,omitempty"`

	Events []ScheduleEvent `json:"events"`
}

type JobActionRequest struct {
	RowVersion int64 `json:"row_version" validate:"required,min=1"`
}

type JobResponse struct {
	Job         JobDTO          `json:"job"`
	Occurrences []OccurrenceDTO `json:"occurrences,omitempty"`
}

/*
DayScheduleEntry is one row of the day view: the occurrence plus its
job, ordered by start time, then priority (HIGH first), then creation.
*/
type DayScheduleEntry struct {
	Occurrence OccurrenceDTO `json:"occurrence"`
	Job        JobDTO        `json:"job"`
}

type ListJobsForDateResponse struct {
	Date    string             `json:"date"`
	Results []DayScheduleEntry `json:"results"`
	Total   int                `json:"total"`
}
