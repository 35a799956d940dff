package util

import (
	"time"
)

// Datetime related utility functions. All date arithmetic in the pipeline is
// UTC calendar-day based; suffix Z marks utc-based helpers.
const (
	DATETIME_FORMAT_YYYYMMDD_HYPHEN string = "2006-01-02"
)

// ParseDateZ parses a YYYY-MM-DD date as a UTC midnight timestamp.
func ParseDateZ(s string) (time.Time, error) {
	return time.ParseInLocation(DATETIME_FORMAT_YYYYMMDD_HYPHEN, s, time.UTC)
}

// FormatDateZ renders the UTC calendar date of t.
func FormatDateZ(t time.Time) string {
	return t.UTC().Format(DATETIME_FORMAT_YYYYMMDD_HYPHEN)
}

// BeginningOfDayZ truncates t to UTC midnight.
func BeginningOfDayZ(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EachDayZ returns every UTC calendar day from start through end inclusive.
func EachDayZ(start, end time.Time) []time.Time {
	s := BeginningOfDayZ(start)
	e := BeginningOfDayZ(end)

	days := make([]time.Time, 0)
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
