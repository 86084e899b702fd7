package scheduler

import (
	"testing"
	"time"

	"github.com/arnavshah/timeclock-api/pkg/models"
)

func schedule(id, worker uint, date, start, end string) models.Schedule {
	return models.Schedule{
		ID:        id,
		BranchID:  1,
		WorkerID:  worker,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Status:    models.StatusScheduled,
	}
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name       string
		a, b       [2]string
		wantResult bool
	}{
		{name: "Identical", a: [2]string{"09:00", "17:00"}, b: [2]string{"09:00", "17:00"}, wantResult: true},
		{name: "Partial", a: [2]string{"09:00", "17:00"}, b: [2]string{"12:00", "20:00"}, wantResult: true},
		{name: "Touching ends", a: [2]string{"09:00", "12:00"}, b: [2]string{"12:00", "15:00"}, wantResult: false},
		{name: "Disjoint", a: [2]string{"06:00", "10:00"}, b: [2]string{"14:00", "22:00"}, wantResult: false},
		{name: "Overnight covers late evening", a: [2]string{"22:00", "06:00"}, b: [2]string{"23:00", "23:30"}, wantResult: true},
		{name: "Overnight tail is past midnight", a: [2]string{"22:00", "06:00"}, b: [2]string{"07:00", "09:00"}, wantResult: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseInterval(tt.a[0], tt.a[1])
			if err != nil {
				t.Fatal(err)
			}
			b, err := ParseInterval(tt.b[0], tt.b[1])
			if err != nil {
				t.Fatal(err)
			}
			if got := Overlap(a, b); got != tt.wantResult {
				t.Errorf("Overlap(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.wantResult)
			}
			if got := Overlap(b, a); got != tt.wantResult {
				t.Errorf("Overlap is not symmetric for %v, %v", tt.a, tt.b)
			}
		})
	}
}

func TestConflicts(t *testing.T) {
	existing := []models.Schedule{
		schedule(1, 7, "2024-06-10", "09:00", "17:00"),
		schedule(2, 7, "2024-06-11", "12:00", "20:00"),
		schedule(3, 8, "2024-06-10", "12:00", "20:00"),
	}

	candidate := schedule(0, 7, "2024-06-10", "12:00", "20:00")
	found, err := Conflicts(&candidate, existing)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].ID != 1 {
		t.Fatalf("Expected conflict with schedule 1 only, got %+v", found)
	}

	later := schedule(0, 7, "2024-06-10", "17:00", "22:00")
	if n := conflictCount(t, &later, existing); n != 0 {
		t.Errorf("Expected back-to-back shift not to conflict, got %d", n)
	}

	broken := schedule(4, 7, "2024-06-10", "9am", "17:00")
	if _, err := Conflicts(&candidate, []models.Schedule{broken}); err == nil {
		t.Error("Expected an unparseable stored schedule to be reported")
	}
}

func conflictCount(t *testing.T, candidate *models.Schedule, existing []models.Schedule) int {
	t.Helper()
	found, err := Conflicts(candidate, existing)
	if err != nil {
		t.Fatal(err)
	}
	return len(found)
}

func TestConflicts_IgnoresCancelledAndSelf(t *testing.T) {
	cancelled := schedule(1, 7, "2024-06-10", "09:00", "17:00")
	cancelled.Status = models.StatusCancelled
	existing := []models.Schedule{cancelled}

	candidate := schedule(0, 7, "2024-06-10", "09:00", "17:00")
	if conflictCount(t, &candidate, existing) != 0 {
		t.Error("Expected cancelled schedule never to conflict")
	}

	self := schedule(5, 7, "2024-06-10", "09:00", "17:00")
	if conflictCount(t, &self, []models.Schedule{self}) != 0 {
		t.Error("Expected a schedule not to conflict with itself")
	}

	candidate.Status = models.StatusCancelled
	if conflictCount(t, &candidate, []models.Schedule{schedule(9, 7, "2024-06-10", "09:00", "17:00")}) != 0 {
		t.Error("Expected a cancelled candidate not to conflict")
	}
}

func TestRecurringDates(t *testing.T) {
	days, err := ParseWeekdays([]string{"monday", "Wednesday"})
	if err != nil {
		t.Fatal(err)
	}

	// Any 28-day window holds each weekday exactly four times
	for offset := 0; offset < 7; offset++ {
		from := time.Date(2024, 6, 10+offset, 15, 30, 0, 0, time.UTC)
		dates := RecurringDates(from, 28, days)
		if len(dates) != 8 {
			t.Fatalf("Expected 8 dates from %s, got %d", from.Format("2006-01-02"), len(dates))
		}
		for _, d := range dates {
			parsed, _ := models.ParseDate(d)
			if wd := parsed.Weekday(); wd != time.Monday && wd != time.Wednesday {
				t.Errorf("Unexpected weekday %s for %s", wd, d)
			}
		}
	}

	if _, err := ParseWeekdays([]string{"caturday"}); err == nil {
		t.Error("Expected unknown weekday to fail")
	}
}

func TestWeekRange(t *testing.T) {
	tests := []struct {
		year, week int
		from, to   string
	}{
		{2024, 1, "2024-01-01", "2024-01-07"},
		{2024, 24, "2024-06-10", "2024-06-16"},
		{2021, 1, "2021-01-04", "2021-01-10"},
		{2020, 53, "2020-12-28", "2021-01-03"},
	}
	for _, tt := range tests {
		from, to, err := WeekRange(tt.year, tt.week)
		if err != nil {
			t.Errorf("WeekRange(%d, %d) error: %v", tt.year, tt.week, err)
			continue
		}
		if from != tt.from || to != tt.to {
			t.Errorf("WeekRange(%d, %d) = %s..%s, want %s..%s", tt.year, tt.week, from, to, tt.from, tt.to)
		}
	}

	if _, _, err := WeekRange(2021, 53); err == nil {
		t.Error("Expected 2021 week 53 to be rejected")
	}
}

func TestPlannedLoadAndFairness(t *testing.T) {
	cancelled := schedule(4, 2, "2024-06-12", "09:00", "17:00")
	cancelled.Status = models.StatusCancelled

	loads := PlannedLoad([]models.Schedule{
		schedule(1, 1, "2024-06-10", "09:00", "17:00"),
		schedule(2, 2, "2024-06-10", "22:00", "06:00"),
		schedule(3, 1, "2024-06-11", "10:00", "14:00"),
		cancelled,
	})

	if len(loads) != 2 {
		t.Fatalf("Expected 2 workers, got %d", len(loads))
	}
	if loads[0].WorkerID != 1 || loads[0].Hours != 12 || loads[0].Shifts != 2 {
		t.Errorf("Unexpected load for worker 1: %+v", loads[0])
	}
	if loads[1].Hours != 8 || loads[1].Shifts != 1 {
		t.Errorf("Unexpected load for worker 2: %+v", loads[1])
	}

	if got := FairnessScore(loads); got != 80 {
		t.Errorf("Expected fairness 80, got %v", got)
	}
	if got := FairnessScore([]WorkerLoad{{WorkerID: 1, Hours: 8}, {WorkerID: 2, Hours: 8}}); got != 100 {
		t.Errorf("Expected fairness 100 for even load, got %v", got)
	}
	if got := FairnessScore(nil); got != 100 {
		t.Errorf("Expected fairness 100 for empty roster, got %v", got)
	}
}
