package constants

import "time"

// Recurrence expansion limits
const (
	// Hard cap on how far an unbounded recurrence may be expanded.
	MaxRecurrenceHorizonDays = 366

	// Rolling materialization window maintained by the nightly cron.
	DaysToSeedAhead = 7

	MaxDayOfMonth = 31
)

// Scheduling
const (
	// Granularity of availability slots ("09:00" covers 09:00-10:00).
	SlotDuration = time.Hour

	// Service-date layout used in query params and DB date columns.
	DateLayout = "2006-01-02"

	// Time-of-day layout used in request/response DTOs.
	TimeLayout = "15:04"
)

// Common concurrency conflict messages
const (
	ErrMsgRowVersionConflictRefresh = "The job has changed, please refresh"
)
