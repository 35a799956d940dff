package model

import (
	"fmt"
	"time"
)

// Period is the forecast horizon. AsOf is the explicit "today" every
// component computes against; there is no hidden clock anywhere in the
// pipeline, which is what makes a re-run with the same inputs byte-identical.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	AsOf  time.Time `json:"as_of"`
}

// Validate fails fast on malformed period configuration. This is the only
// fatal error class in the pipeline; everything downstream is per-record.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() || p.AsOf.IsZero() {
		return fmt.Errorf("period start, end and as-of are all required")
	}
	if p.End.Before(p.Start) {
		return fmt.Errorf("period start %s is after period end %s",
			p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
	}
	if p.AsOf.Before(p.Start) || p.AsOf.After(p.End) {
		return fmt.Errorf("as-of date %s is outside period [%s, %s]",
			p.AsOf.Format("2006-01-02"), p.Start.Format("2006-01-02"),
			p.End.Format("2006-01-02"))
	}
	return nil
}

// DaysRemaining is the number of whole days between as-of and period end.
func (p Period) DaysRemaining() int {
	return DaysBetween(p.AsOf, p.End)
}

// DaysBetween returns whole calendar days from a to b, using UTC date
// boundaries. Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
