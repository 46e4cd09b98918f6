package services

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/crewfield/scheduling-service/internal/constants"
	"github.com/crewfield/scheduling-service/internal/utils"
)

// mapNoRows keeps pgx out of the controllers: a repository "no rows"
// becomes the domain's not-found sentinel.
func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.ErrNotFound
	}
	return err
}

func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b (negative when b is
// earlier). Both are re-anchored to UTC midnight first, so values in
// different zones compare by calendar date, not by wall-clock instant:
// midnight in Tokyo is not "yesterday" just because UTC lags it.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func inExceptions(list []time.Time, day time.Time) bool {
	for _, d := range list {
		if sameDate(d, day) {
			return true
		}
	}
	return false
}

// CombineDateTime combines a date (d) with a time-of-day (t).
// `d` should be a date at midnight. Only the Hour/Minute of `t` matter.
func CombineDateTime(d time.Time, t time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}

// minuteOfDay flattens a time-of-day for interval comparisons that
// must ignore whatever date the value happens to carry.
func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ParseTimeOfDay parses a "15:04" label into a time-of-day value.
func ParseTimeOfDay(label string) (time.Time, error) {
	return time.Parse(constants.TimeLayout, label)
}

func formatTimeOfDay(t time.Time) string {
	return t.Format(constants.TimeLayout)
}

// startOfWeek returns the Sunday beginning the week containing t.
func startOfWeek(t time.Time) time.Time {
	return DateOnly(t).AddDate(0, 0, -int(t.Weekday()))
}

// occurrenceLockKey orders every conflict-check-then-write on the same
// technician-day behind one mutex.
func occurrenceLockKey(employeeID uuid.UUID, date time.Time) string {
	return employeeID.String() + "|" + date.Format(constants.DateLayout)
}

// sortedLockKeys dedupes and sorts so the same key is never taken
// twice and two overlapping requests always acquire in the same order.
func sortedLockKeys(employeeID uuid.UUID, dates []time.Time) []string {
	seen := make(map[string]struct{}, len(dates))
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		k := occurrenceLockKey(employeeID, d)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
