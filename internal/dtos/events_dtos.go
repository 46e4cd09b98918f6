package dtos

import (
	"time"

	"github.com/google/uuid"
)

// Schedule event types. Events are plain values returned to the caller
// in mutation responses, not messages on a broker.
const (
	EventJobCreated       = "job_created"
	EventJobRescheduled   = "job_rescheduled"
	EventJobCancelled     = "job_cancelled"
	EventConflictRejected = "conflict_rejected"
)

/*
ScheduleEvent records what a mutation did. A single call can produce
more than one: creating a recurring job that skipped two conflicting
dates yields a job_created event plus a conflict_rejected event naming
the skipped dates.
*/
type ScheduleEvent struct {
	Type  string    `json:"type"`
	JobID uuid.UUID `json:"job_id"`

	// Service dates the event concerns, "2006-01-02".
	Dates []string `json:"dates,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}
