package util

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the ISO calendar date layout used on every boundary.
const DateLayout = "2006-01-02"

// ParseDate parses a strict YYYY-MM-DD calendar date in UTC.
// Impossible dates such as 2024-02-30 are rejected.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD", s)
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// ParseTime tries RFC3339, RFC3339Nano, YYYY-MM-DD and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := ParseDate(s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// TruncateDay returns midnight UTC of the calendar day t falls on in UTC.
func TruncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// IsBusinessDay reports whether t falls on a weekday. Exchange holidays are not modelled.
func IsBusinessDay(t time.Time) bool {
	switch t.UTC().Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// BusinessDayOnOrBefore rolls weekends back to the preceding Friday.
func BusinessDayOnOrBefore(t time.Time) time.Time {
	d := TruncateDay(t)
	for !IsBusinessDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// PreviousBusinessDay returns the last business day strictly before t.
func PreviousBusinessDay(t time.Time) time.Time {
	return BusinessDayOnOrBefore(TruncateDay(t).AddDate(0, 0, -1))
}

// DaysBetween returns the whole calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(TruncateDay(b).Sub(TruncateDay(a)).Hours() / 24)
}

// ParseClock parses an HH:MM wall clock time.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// NextBusinessRun returns the first business-day instant at hour:minute UTC strictly after now.
func NextBusinessRun(now time.Time, hour, minute int) time.Time {
	day := TruncateDay(now)
	for i := 0; i < 8; i++ {
		candidate := day.AddDate(0, 0, i).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
		if candidate.After(now.UTC()) && IsBusinessDay(candidate) {
			return candidate
		}
	}
	return day.AddDate(0, 0, 8)
}

// ExpectedAsOf returns the business day whose snapshot should exist at now, given the
// daily run time. Before today's run the previous business day is still current.
func ExpectedAsOf(now time.Time, hour, minute int) time.Time {
	today := TruncateDay(now)
	runAt := today.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	if IsBusinessDay(today) && !now.UTC().Before(runAt) {
		return today
	}
	return PreviousBusinessDay(today)
}
