package scheduler

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/arnavshah/timeclock-api/pkg/shifttime"
)

// Interval is a shift as minutes since midnight, End exclusive.
// Overnight shifts have End past MinutesPerDay.
type Interval struct {
	Start int
	End   int
}

// NewInterval normalizes a start/end clock pair
func NewInterval(start, end shifttime.Clock) Interval {
	s, e := start.Minutes(), end.Minutes()
	if e < s {
		e += shifttime.MinutesPerDay
	}
	return Interval{Start: s, End: e}
}

// ParseInterval parses "HH:MM" start and end strings
func ParseInterval(start, end string) (Interval, error) {
	s, err := shifttime.ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := shifttime.ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return NewInterval(s, e), nil
}

// Overlap checks if two intervals overlap
func Overlap(a, b Interval) bool {
	return a.Start < b.End && a.End > b.Start
}

// Conflicts returns the existing schedules that overlap the candidate.
// Only the same worker on the same date is compared, cancelled schedules
// never take part, and the candidate's own record is skipped.
func Conflicts(candidate *models.Schedule, existing []models.Schedule) ([]models.Schedule, error) {
	if candidate.Status == models.StatusCancelled {
		return nil, nil
	}

	want, err := ParseInterval(candidate.StartTime, candidate.EndTime)
	if err != nil {
		return nil, fmt.Errorf("candidate schedule: %w", err)
	}

	var out []models.Schedule
	for _, other := range existing {
		if other.Status == models.StatusCancelled {
			continue
		}
		if other.WorkerID != candidate.WorkerID || other.Date != candidate.Date {
			continue
		}
		if candidate.ID != 0 && other.ID == candidate.ID {
			continue
		}

		have, err := ParseInterval(other.StartTime, other.EndTime)
		if err != nil {
			return nil, fmt.Errorf("schedule %d: %w", other.ID, err)
		}
		if Overlap(want, have) {
			out = append(out, other)
		}
	}
	return out, nil
}

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekdays turns day names into a weekday set
func ParseWeekdays(names []string) (map[time.Weekday]bool, error) {
	days := make(map[time.Weekday]bool, len(names))
	for _, n := range names {
		day, ok := models.NormalizeDay(n)
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", n)
		}
		days[weekdayByName[day]] = true
	}
	return days, nil
}

// RecurringDates lists every date in [from, from+days) whose weekday is in the set
func RecurringDates(from time.Time, days int, weekdays map[time.Weekday]bool) []string {
	y, m, d := from.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var dates []string
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		if weekdays[day.Weekday()] {
			dates = append(dates, day.Format(models.DateLayout))
		}
	}
	return dates
}

// WeekRange returns the Monday and Sunday dates of an ISO week
func WeekRange(year, week int) (string, string, error) {
	if week < 1 || week > 53 {
		return "", "", fmt.Errorf("week %d out of range", week)
	}
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(week-1)*7)

	if y, w := monday.ISOWeek(); y != year || w != week {
		return "", "", fmt.Errorf("year %d has no week %d", year, week)
	}
	return monday.Format(models.DateLayout), monday.AddDate(0, 0, 6).Format(models.DateLayout), nil
}

// WorkerLoad is the planned hours of one worker over a roster
type WorkerLoad struct {
	WorkerID uint    `json:"workerId"`
	Shifts   int     `json:"shifts"`
	Hours    float64 `json:"hours"`
}

// PlannedLoad sums planned hours per worker, ignoring cancelled schedules
func PlannedLoad(schedules []models.Schedule) []WorkerLoad {
	byWorker := make(map[uint]*WorkerLoad)
	for i := range schedules {
		s := &schedules[i]
		if s.Status == models.StatusCancelled {
			continue
		}
		load, ok := byWorker[s.WorkerID]
		if !ok {
			load = &WorkerLoad{WorkerID: s.WorkerID}
			byWorker[s.WorkerID] = load
		}
		load.Shifts++
		load.Hours = shifttime.Round1(load.Hours + s.PlannedHours())
	}

	out := make([]WorkerLoad, 0, len(byWorker))
	for _, l := range byWorker {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkerID < out[j].WorkerID })
	return out
}

// FairnessScore returns a percentage (0-100) representing how evenly
// hours are distributed. 100% is perfectly fair (Standard Deviation = 0).
func FairnessScore(loads []WorkerLoad) float64 {
	if len(loads) == 0 {
		return 100.0
	}

	var sum float64
	for _, l := range loads {
		sum += l.Hours
	}
	if sum == 0 {
		return 100.0
	}

	mean := sum / float64(len(loads))

	var varianceSum float64
	for _, l := range loads {
		diff := l.Hours - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(loads)))

	// 100% means SD is 0. 0% means SD is >= mean.
	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return shifttime.Round1(score)
}
