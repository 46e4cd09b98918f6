package services

import (
	"slices"
	"time"

	"github.com/crewfield/scheduling-service/internal/constants"
	"github.com/crewfield/scheduling-service/internal/models"
	"github.com/crewfield/scheduling-service/internal/utils"
)

/*
Recurrence expansion.

ExpandOccurrences turns a pattern plus anchor date into the finite,
ordered list of service dates in [anchor, min(pattern.EndDate,
horizonEnd)]. It is a pure function: no clock, no repository access.

Policies (each asserted by tests):
  - WEEKLY with an empty DaysOfWeek set falls back to the anchor's own
    weekday, so a submitted form can never silently mean "no dates".
  - MONTHLY occurrences in months lacking the requested day (e.g. the
    31st in February) are skipped, not clamped to month-end.
  - A pattern without an EndDate must stay inside
    constants.MaxRecurrenceHorizonDays of the anchor; a wider horizon
    is ErrRangeExceeded rather than a silently truncated sequence.
*/

// ValidatePattern rejects malformed patterns before any expansion or
// commit is attempted.
func ValidatePattern(p *models.RecurringPattern) error {
	if p == nil {
		return utils.NewValidationError("recurring_pattern", "missing pattern on recurring job")
	}
	if p.Interval < 1 {
		return utils.NewValidationError("interval", "must be a positive integer")
	}
	switch p.Frequency {
	case models.FreqDaily:
	case models.FreqWeekly:
		for _, wd := range p.DaysOfWeek {
			if wd < 0 || wd > 6 {
				return utils.NewValidationError("days_of_week", "weekday indices must be 0..6")
			}
		}
	case models.FreqMonthly:
		if p.DayOfMonth == nil {
			return utils.NewValidationError("day_of_month", "required for monthly patterns")
		}
		if *p.DayOfMonth < 1 || *p.DayOfMonth > constants.MaxDayOfMonth {
			return utils.NewValidationError("day_of_month", "must be 1..31")
		}
	default:
		return utils.NewValidationError("frequency", "must be DAILY, WEEKLY or MONTHLY")
	}
	return nil
}

func ExpandOccurrences(anchor time.Time, p *models.RecurringPattern, horizonEnd time.Time) ([]time.Time, error) {
	if err := ValidatePattern(p); err != nil {
		return nil, err
	}

	start := DateOnly(anchor)
	end := DateOnly(horizonEnd)
	if p.EndDate != nil && daysBetween(end, DateOnly(*p.EndDate)) < 0 {
		end = DateOnly(*p.EndDate)
	}
	span := daysBetween(start, end)
	if span < 0 {
		return nil, nil
	}
	if p.EndDate == nil && span > constants.MaxRecurrenceHorizonDays {
		return nil, utils.ErrRangeExceeded
	}

	var out []time.Time
	for i := 0; i <= span; i++ {
		d := start.AddDate(0, 0, i)
		if PatternOccursOn(start, p, d) {
			out = append(out, d)
		}
	}
	return out, nil
}

// PatternOccursOn reports whether the pattern anchored at `anchor`
// produces an occurrence on `day`. The daily maintenance loop uses it
// directly so window-filling and bulk expansion can never disagree.
func PatternOccursOn(anchor time.Time, p *models.RecurringPattern, day time.Time) bool {
	anchor = DateOnly(anchor)
	day = DateOnly(day)

	// Calendar-date comparisons throughout. The maintenance loop hands
	// in site-local midnights while anchors are stored UTC, so instant
	// comparisons would shift by the zone offset.
	if daysBetween(anchor, day) < 0 {
		return false
	}
	if p.EndDate != nil && daysBetween(DateOnly(*p.EndDate), day) > 0 {
		return false
	}
	if p.SkipHolidays && utils.IsUSFedHoliday(day) && !inExceptions(p.HolidayExceptions, day) {
		return false
	}

	switch p.Frequency {
	case models.FreqDaily:
		return daysBetween(anchor, day)%p.Interval == 0

	case models.FreqWeekly:
		wd := int16(day.Weekday())
		if len(p.DaysOfWeek) == 0 {
			// Empty set means the anchor's own weekday only.
			if day.Weekday() != anchor.Weekday() {
				return false
			}
		} else if !slices.Contains(p.DaysOfWeek, wd) {
			return false
		}
		weeks := daysBetween(startOfWeek(anchor), startOfWeek(day)) / 7
		return weeks%p.Interval == 0

	case models.FreqMonthly:
		if p.DayOfMonth == nil || day.Day() != *p.DayOfMonth {
			return false
		}
		months := (day.Year()-anchor.Year())*12 + int(day.Month()) - int(anchor.Month())
		return months%p.Interval == 0

	default:
		return false
	}
}
