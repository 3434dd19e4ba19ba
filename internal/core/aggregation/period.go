package aggregation

import (
	"strings"
	"time"
)

// DayLayout is the wire format of calendar dates (YYYY-MM-DD).
const DayLayout = "2006-01-02"

// MonthLayout is the period key used for monthly trend buckets.
const MonthLayout = "2006-01"

// MonthKey truncates t to the first day of its calendar month in UTC.
// Example: MonthKey(2024-03-17) -> 2024-03-01
func MonthKey(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DayOf truncates t to midnight UTC of its calendar day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string. ok is false for blank or malformed input,
// which callers treat as an absent bound.
func ParseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
