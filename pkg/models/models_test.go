package models

import (
	"testing"
	"time"
)

func TestTimeEntryBeforeSave(t *testing.T) {
	ClockLocation = time.UTC

	entry := &TimeEntry{
		StartTime:    time.Date(2024, 6, 10, 21, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2024, 6, 11, 5, 0, 0, 0, time.UTC),
		Date:         "2024-06-10",
		BreakMinutes: 30,
	}
	if err := entry.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave returned error: %v", err)
	}
	if entry.Hours != 7.5 {
		t.Errorf("Expected 7.5 hours, got %v", entry.Hours)
	}

	// Hours sent by a client are never authoritative
	entry.Hours = 99
	entry.BreakMinutes = 0
	if err := entry.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave returned error: %v", err)
	}
	if entry.Hours != 8.0 {
		t.Errorf("Expected recomputed 8.0 hours, got %v", entry.Hours)
	}
}

func TestTimeEntryValidate(t *testing.T) {
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	tests := []struct {
		name    string
		entry   TimeEntry
		wantErr bool
	}{
		{name: "Valid", entry: TimeEntry{StartTime: start, EndTime: end, Date: "2024-06-10"}},
		{name: "Missing start", entry: TimeEntry{EndTime: end, Date: "2024-06-10"}, wantErr: true},
		{name: "Bad date", entry: TimeEntry{StartTime: start, EndTime: end, Date: "10/06/2024"}, wantErr: true},
		{name: "Negative break", entry: TimeEntry{StartTime: start, EndTime: end, Date: "2024-06-10", BreakMinutes: -5}, wantErr: true},
		{name: "Unknown reason", entry: TimeEntry{StartTime: start, EndTime: end, Date: "2024-06-10", OvertimeReason: "Bored"}, wantErr: true},
		{name: "Company request needs responsible", entry: TimeEntry{StartTime: start, EndTime: end, Date: "2024-06-10", OvertimeReason: ReasonCompanyRequest}, wantErr: true},
		{name: "Company request with responsible", entry: TimeEntry{StartTime: start, EndTime: end, Date: "2024-06-10", OvertimeReason: ReasonCompanyRequest, ResponsiblePerson: "Mai"}},
		{name: "Busy needs nobody", entry: TimeEntry{StartTime: start, EndTime: end, Date: "2024-06-10", OvertimeReason: ReasonBusy}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsValidation(err) {
				t.Errorf("Expected a ValidationError, got %T", err)
			}
		})
	}
}

func TestTimeEntryValidate_DropsStrayResponsible(t *testing.T) {
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	entry := TimeEntry{StartTime: start, EndTime: start.Add(time.Hour), Date: "2024-06-10", OvertimeReason: ReasonBusy, ResponsiblePerson: "Mai"}
	if err := entry.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if entry.ResponsiblePerson != "" {
		t.Errorf("Expected responsible person to be cleared, got %q", entry.ResponsiblePerson)
	}
}

func TestScheduleValidate(t *testing.T) {
	s := Schedule{BranchID: 1, WorkerID: 2, Date: "2024-06-10", StartTime: "9:00", EndTime: "17:00"}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if s.StartTime != "09:00" {
		t.Errorf("Expected normalized start 09:00, got %s", s.StartTime)
	}
	if s.Status != StatusScheduled {
		t.Errorf("Expected default status scheduled, got %s", s.Status)
	}
	if s.ShiftType != ShiftDay {
		t.Errorf("Expected day shift, got %s", s.ShiftType)
	}

	night := Schedule{BranchID: 1, WorkerID: 2, Date: "2024-06-10", StartTime: "22:00", EndTime: "06:00"}
	if err := night.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if night.ShiftType != ShiftNight {
		t.Errorf("Expected overnight shift to be night, got %s", night.ShiftType)
	}
	if night.PlannedHours() != 8 {
		t.Errorf("Expected 8 planned hours, got %v", night.PlannedHours())
	}

	bad := []Schedule{
		{WorkerID: 2, Date: "2024-06-10", StartTime: "09:00", EndTime: "17:00"},
		{BranchID: 1, WorkerID: 2, Date: "2024-06-10", StartTime: "09:00", EndTime: "09:00"},
		{BranchID: 1, WorkerID: 2, Date: "2024-06-10", StartTime: "09:00", EndTime: "17:00", Status: "done"},
		{BranchID: 1, WorkerID: 2, Date: "2024-06-10", StartTime: "09:00", EndTime: "17:00", Role: "chef"},
		{BranchID: 1, WorkerID: 2, Date: "2024-06-10", StartTime: "09:00", EndTime: "17:00", ShiftType: "evening"},
	}
	for i, b := range bad {
		if err := b.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestBranchHoursValidate(t *testing.T) {
	h := BranchHours{Day: "Monday", Open: "8:00", Close: "22:30"}
	if err := h.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if h.Day != "monday" || h.Open != "08:00" {
		t.Errorf("Expected normalized monday 08:00, got %s %s", h.Day, h.Open)
	}

	closed := BranchHours{Day: "sunday", Closed: true, Open: "garbage"}
	if err := closed.Validate(); err != nil {
		t.Errorf("Closed day should ignore times, got %v", err)
	}

	if err := (&BranchHours{Day: "funday", Open: "08:00", Close: "10:00"}).Validate(); err == nil {
		t.Error("Expected unknown weekday to fail")
	}
}

func TestMonthRange(t *testing.T) {
	from, to := MonthRange(2024, 12)
	if from != "2024-12-01" || to != "2025-01-01" {
		t.Errorf("MonthRange(2024, 12) = %s, %s", from, to)
	}
}
