package shifttime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is used to push an overnight end past midnight.
const MinutesPerDay = 24 * 60

// DefaultOvertimeThreshold is the shift length above which hours count as overtime.
const DefaultOvertimeThreshold = 8.0

// Clock is a wall-clock time of day with minute precision
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses an "HH:MM" string
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) != 2 {
		return Clock{}, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return Clock{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return Clock{}, fmt.Errorf("invalid minute in %q", s)
	}

	return Clock{Hour: h, Minute: m}, nil
}

// FromTime takes the clock reading of t in its own location
func FromTime(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// Minutes returns minutes since midnight
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Hours calculates worked hours between two clock readings.
//
// When the end hour is before the start hour the shift is taken to cross
// midnight. The minute difference is applied as a flat fraction on top of the
// whole-hour difference, so a same-hour shift whose end minute is before its
// start minute is not treated as overnight. The result is rounded to one
// decimal and never negative.
func Hours(start, end Clock, breakMinutes int) float64 {
	var workHours float64
	if end.Hour < start.Hour {
		workHours = float64(24 - start.Hour + end.Hour)
	} else {
		workHours = float64(end.Hour - start.Hour)
	}

	workHours += float64(end.Minute-start.Minute) / 60
	workHours -= float64(breakMinutes) / 60

	hours := Round1(workHours)
	if hours < 0 {
		return 0
	}
	return hours
}

// HoursBetween reads both timestamps in loc and applies Hours
func HoursBetween(start, end time.Time, breakMinutes int, loc *time.Location) float64 {
	if loc != nil {
		start = start.In(loc)
		end = end.In(loc)
	}
	return Hours(FromTime(start), FromTime(end), breakMinutes)
}

// Round1 rounds to one decimal place, halves away from zero
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// IsOvertime reports whether hours exceed the threshold
func IsOvertime(hours, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultOvertimeThreshold
	}
	return hours > threshold
}

// Crosses reports whether a start/end pair wraps past midnight
func Crosses(start, end Clock) bool {
	return end.Minutes() < start.Minutes()
}
