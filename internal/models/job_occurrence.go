package models

import (
	"time"

	"github.com/google/uuid"
)

type OccurrenceStatusType string

const (
	OccurrenceStatusBooked    OccurrenceStatusType = "BOOKED"
	OccurrenceStatusCompleted OccurrenceStatusType = "COMPLETED"
	OccurrenceStatusCanceled  OccurrenceStatusType = "CANCELED"
)

/*
JobOccurrence is one concrete technician-day booking of a job. A
non-recurring job has exactly one; a recurring job has one per
expanded date. The (job_id, service_date) pair is unique, and the
conflict check runs against the (employee_id, service_date) index.
*/
type JobOccurrence struct {
	Versioned

	ID         uuid.UUID `json:"id"`
	JobID      uuid.UUID `json:"job_id"`
	EmployeeID uuid.UUID `json:"employee_id"`

	ServiceDate time.Time  `json:"service_date"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`

	Status OccurrenceStatusType `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *JobOccurrence) GetID() string {
	return o.ID.String()
}
