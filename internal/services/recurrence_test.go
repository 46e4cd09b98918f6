package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crewfield/scheduling-service/internal/models"
	"github.com/crewfield/scheduling-service/internal/utils"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func days(ss ...string) []time.Time {
	out := make([]time.Time, 0, len(ss))
	for _, s := range ss {
		out = append(out, day(s))
	}
	return out
}

func TestExpandWeeklyMultipleDays(t *testing.T) {
	// Anchor is a Wednesday; Mon/Wed/Fri pattern through year end.
	p := &models.RecurringPattern{
		Frequency:  models.FreqWeekly,
		Interval:   1,
		DaysOfWeek: []int16{1, 3, 5},
	}

	got, err := ExpandOccurrences(day("2024-12-18"), p, day("2024-12-31"))
	require.NoError(t, err)
	require.Equal(t, days(
		"2024-12-18", "2024-12-20",
		"2024-12-23", "2024-12-25", "2024-12-27",
		"2024-12-30",
	), got)
}

func TestExpandWeeklyEmptyDaysFallsBackToAnchorWeekday(t *testing.T) {
	p := &models.RecurringPattern{Frequency: models.FreqWeekly, Interval: 1}

	got, err := ExpandOccurrences(day("2025-06-04"), p, day("2025-06-18"))
	require.NoError(t, err)
	require.Equal(t, days("2025-06-04", "2025-06-11", "2025-06-18"), got)
}

func TestExpandBiweekly(t *testing.T) {
	p := &models.RecurringPattern{
		Frequency:  models.FreqWeekly,
		Interval:   2,
		DaysOfWeek: []int16{1},
	}

	got, err := ExpandOccurrences(day("2025-06-02"), p, day("2025-06-30"))
	require.NoError(t, err)
	require.Equal(t, days("2025-06-02", "2025-06-16", "2025-06-30"), got)
}

func TestExpandDailyInterval(t *testing.T) {
	p := &models.RecurringPattern{Frequency: models.FreqDaily, Interval: 2}

	got, err := ExpandOccurrences(day("2025-06-01"), p, day("2025-06-07"))
	require.NoError(t, err)
	require.Equal(t, days("2025-06-01", "2025-06-03", "2025-06-05", "2025-06-07"), got)
}

func TestExpandMonthlySkipsShortMonths(t *testing.T) {
	// Day 31 does not exist in February or April; those months are
	// skipped outright, never clamped to month-end.
	p := &models.RecurringPattern{
		Frequency:  models.FreqMonthly,
		Interval:   1,
		DayOfMonth: utils.Ptr(31),
	}

	got, err := ExpandOccurrences(day("2025-01-31"), p, day("2025-04-30"))
	require.NoError(t, err)
	require.Equal(t, days("2025-01-31", "2025-03-31"), got)
}

func TestExpandHonorsPatternEndDate(t *testing.T) {
	p := &models.RecurringPattern{
		Frequency: models.FreqDaily,
		Interval:  1,
		EndDate:   utils.Ptr(day("2025-06-03")),
	}

	got, err := ExpandOccurrences(day("2025-06-01"), p, day("2025-06-30"))
	require.NoError(t, err)
	require.Equal(t, days("2025-06-01", "2025-06-02", "2025-06-03"), got)
}

func TestExpandUnboundedBeyondHorizonCap(t *testing.T) {
	p := &models.RecurringPattern{Frequency: models.FreqDaily, Interval: 1}

	_, err := ExpandOccurrences(day("2025-01-01"), p, day("2027-01-01"))
	require.ErrorIs(t, err, utils.ErrRangeExceeded)
}

func TestExpandRejectsMalformedPatterns(t *testing.T) {
	cases := map[string]*models.RecurringPattern{
		"nil pattern":           nil,
		"zero interval":         {Frequency: models.FreqDaily, Interval: 0},
		"bad frequency":         {Frequency: "YEARLY", Interval: 1},
		"monthly without day":   {Frequency: models.FreqMonthly, Interval: 1},
		"monthly day too large": {Frequency: models.FreqMonthly, Interval: 1, DayOfMonth: utils.Ptr(32)},
		"weekday out of range":  {Frequency: models.FreqWeekly, Interval: 1, DaysOfWeek: []int16{7}},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ExpandOccurrences(day("2025-06-01"), p, day("2025-06-30"))
			var vErr *utils.ValidationError
			require.True(t, errors.As(err, &vErr), "want ValidationError, got %v", err)
		})
	}
}

func TestExpandSkipHolidays(t *testing.T) {
	p := &models.RecurringPattern{
		Frequency:    models.FreqDaily,
		Interval:     1,
		SkipHolidays: true,
	}

	got, err := ExpandOccurrences(day("2025-07-03"), p, day("2025-07-05"))
	require.NoError(t, err)
	require.Equal(t, days("2025-07-03", "2025-07-05"), got, "July 4th must be skipped")

	p.HolidayExceptions = days("2025-07-04")
	got, err = ExpandOccurrences(day("2025-07-03"), p, day("2025-07-05"))
	require.NoError(t, err)
	require.Equal(t, days("2025-07-03", "2025-07-04", "2025-07-05"), got)
}

func TestExpandEmptyWhenHorizonBeforeAnchor(t *testing.T) {
	p := &models.RecurringPattern{Frequency: models.FreqDaily, Interval: 1}

	got, err := ExpandOccurrences(day("2025-06-10"), p, day("2025-06-01"))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestPatternOccursOnSiteLocalDates(t *testing.T) {
	// The maintenance loop hands in midnights computed in the job
	// site's zone while anchors are stored UTC; matching must go by
	// calendar date on both sides of Greenwich.
	east := time.FixedZone("UTC+9", 9*60*60)
	west := time.FixedZone("UTC-10", -10*60*60)
	at := func(s string, loc *time.Location) time.Time {
		d := day(s)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	}

	anchor := day("2025-06-02")

	daily := &models.RecurringPattern{Frequency: models.FreqDaily, Interval: 1}
	require.True(t, PatternOccursOn(anchor, daily, at("2025-06-02", east)),
		"daily pattern must occur on its own anchor date")
	require.True(t, PatternOccursOn(anchor, daily, at("2025-06-02", west)))

	every3 := &models.RecurringPattern{Frequency: models.FreqDaily, Interval: 3}
	require.True(t, PatternOccursOn(anchor, every3, at("2025-06-05", east)))
	require.False(t, PatternOccursOn(anchor, every3, at("2025-06-04", east)))

	biweekly := &models.RecurringPattern{Frequency: models.FreqWeekly, Interval: 2, DaysOfWeek: []int16{1}}
	require.True(t, PatternOccursOn(anchor, biweekly, at("2025-06-16", east)))
	require.False(t, PatternOccursOn(anchor, biweekly, at("2025-06-09", east)))

	ended := &models.RecurringPattern{Frequency: models.FreqDaily, Interval: 1, EndDate: utils.Ptr(day("2025-06-09"))}
	require.True(t, PatternOccursOn(anchor, ended, at("2025-06-09", west)),
		"end date is inclusive by calendar date")
	require.False(t, PatternOccursOn(anchor, ended, at("2025-06-10", west)))
}

func TestPatternOccursOnMatchesExpansion(t *testing.T) {
	p := &models.RecurringPattern{
		Frequency:  models.FreqWeekly,
		Interval:   2,
		DaysOfWeek: []int16{1, 3},
	}
	anchor := day("2025-06-02")

	expanded, err := ExpandOccurrences(anchor, p, day("2025-07-14"))
	require.NoError(t, err)

	inExpanded := make(map[string]bool, len(expanded))
	for _, d := range expanded {
		inExpanded[d.Format("2006-01-02")] = true
	}
	for d := anchor; !d.After(day("2025-07-14")); d = d.AddDate(0, 0, 1) {
		require.Equal(t,
			inExpanded[d.Format("2006-01-02")],
			PatternOccursOn(anchor, p, d),
			"disagreement on %s", d.Format("2006-01-02"),
		)
	}
}
