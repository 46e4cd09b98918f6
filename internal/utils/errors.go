package utils

import (
	"errors"
	"time"
)

// Sentinel errors for the scheduling domain. Controllers branch with
// errors.Is(err, ErrXYZ) to pick a status code and error code.
var (
	ErrNotFound      = errors.New("not_found")
	ErrWrongStatus   = errors.New("wrong_status")
	ErrRangeExceeded = errors.New("range_exceeded")
	ErrEmptyReason   = errors.New("empty_reason")
	ErrOutOfRadius   = errors.New("location_out_of_radius")

	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")
)

/*
ConflictError is returned when a proposed occurrence overlaps existing
bookings. It names every offending date so the caller can decide to
skip-and-continue or abort, instead of a bare "some conflict occurred".
*/
type ConflictError struct {
	Dates []time.Time
}

func (e *ConflictError) Error() string {
	return "schedule_conflict"
}

func NewConflictError(dates []time.Time) error {
	return &ConflictError{Dates: dates}
}

/*
ValidationError carries the field-level reason for a malformed pattern
or request, rejected before any expansion or commit is attempted.
*/
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation_error: " + e.Field + ": " + e.Reason
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
