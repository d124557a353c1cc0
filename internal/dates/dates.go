// Package dates converts calendar dates to and from the day-count encoding
// stored in the index.
package dates

import (
	"fmt"
	"time"
)

// Layout is the only accepted textual date format.
const Layout = "2006-01-02"

var epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// Parse parses a YYYY-MM-DD string into a UTC midnight time.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// ParseOptional parses s, returning nil for an empty string.
func ParseOptional(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Truncate drops the time of day, keeping the calendar date of t in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ToDays returns the number of days between 1970-01-01 and the calendar date of t.
func ToDays(t time.Time) int32 {
	d := Truncate(t).Sub(epoch)
	return int32(d / (24 * time.Hour))
}

// FromDays is the inverse of ToDays.
func FromDays(days int32) time.Time {
	return epoch.AddDate(0, 0, int(days))
}

// Format renders t as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}
