package shared

import (
	"fmt"
	"time"
)

// ClockTime represents a wall clock time of day (hours and minutes) in exchange time.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses a clock time in the "15:04" layout.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("parsing clock time %q: %w", s, err)
	}

	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// MustParseClockTime parses a clock time and panics on failure. Only meant for constants.
func MustParseClockTime(s string) ClockTime {
	ct, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}

	return ct
}

// On returns the clock time on the calendar date of the provided time, in its location.
func (c ClockTime) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// Minutes returns the number of minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Before checks whether the clock time is earlier in the day than the provided one.
func (c ClockTime) Before(o ClockTime) bool {
	return c.Minutes() < o.Minutes()
}

// String stringifies the clock time.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ClockOf returns the clock time of the provided time.
func ClockOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}
