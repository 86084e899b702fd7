package models

import (
	"time"

	"github.com/arnavshah/timeclock-api/pkg/shifttime"
	"gorm.io/gorm"
)

// ScheduleStatus tracks a planned shift through the week
type ScheduleStatus string

const (
	StatusScheduled ScheduleStatus = "scheduled"
	StatusConfirmed ScheduleStatus = "confirmed"
	StatusCompleted ScheduleStatus = "completed"
	StatusNoShow    ScheduleStatus = "no-show"
	StatusCancelled ScheduleStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s ScheduleStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusNoShow, StatusCancelled:
		return true
	}
	return false
}

// ShiftType is day or night
type ShiftType string

const (
	ShiftDay   ShiftType = "day"
	ShiftNight ShiftType = "night"
)

// nightStartHour is the hour from which a shift counts as a night shift
const nightStartHour = 18

// Schedule is one planned shift for a worker at a branch
type Schedule struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	BranchID           uint           `gorm:"not null;index" json:"branchId"`
	Branch             *Branch        `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	WorkerID           uint           `gorm:"not null;index:idx_worker_date" json:"workerId"`
	Worker             *User          `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	Date               string         `gorm:"size:10;not null;index:idx_worker_date" json:"date"`
	StartTime          string         `gorm:"size:5;not null" json:"startTime"`
	EndTime            string         `gorm:"size:5;not null" json:"endTime"`
	ShiftType          ShiftType      `gorm:"size:10" json:"shiftType"`
	Role               Position       `gorm:"size:20" json:"role"`
	Status             ScheduleStatus `gorm:"size:20;not null;default:scheduled;index" json:"status"`
	Notes              string         `gorm:"size:1000" json:"notes"`
	CreatedByID        uint           `json:"createdById"`
	ConfirmedByID      *uint          `json:"confirmedById,omitempty"`
	ConfirmedAt        *time.Time     `json:"confirmedAt,omitempty"`
	OriginalScheduleID *uint          `gorm:"index" json:"originalScheduleId,omitempty"`
	SeriesID           string         `gorm:"size:36;index" json:"seriesId,omitempty"`
	CreatedAt          time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// Validate checks field formats and fills derived defaults
func (s *Schedule) Validate() error {
	if s.BranchID == 0 {
		return Invalid("branchId", "is required")
	}
	if s.WorkerID == 0 {
		return Invalid("workerId", "is required")
	}
	if _, err := ParseDate(s.Date); err != nil {
		return Invalid("date", "must be YYYY-MM-DD")
	}
	start, err := shifttime.ParseClock(s.StartTime)
	if err != nil {
		return Invalid("startTime", "must be HH:MM")
	}
	end, err := shifttime.ParseClock(s.EndTime)
	if err != nil {
		return Invalid("endTime", "must be HH:MM")
	}
	if start == end {
		return Invalid("endTime", "must differ from startTime")
	}
	s.StartTime, s.EndTime = start.String(), end.String()

	if s.Status == "" {
		s.Status = StatusScheduled
	}
	if !s.Status.Valid() {
		return Invalid("status", "unknown status %q", s.Status)
	}
	if s.Role != "" && !s.Role.Valid() {
		return Invalid("role", "unknown role %q", s.Role)
	}

	switch s.ShiftType {
	case ShiftDay, ShiftNight:
	case "":
		s.ShiftType = ShiftDay
		if shifttime.Crosses(start, end) || start.Hour >= nightStartHour {
			s.ShiftType = ShiftNight
		}
	default:
		return Invalid("shiftType", "must be day or night")
	}
	return nil
}

// PlannedHours is the scheduled length without breaks
func (s *Schedule) PlannedHours() float64 {
	start, err1 := shifttime.ParseClock(s.StartTime)
	end, err2 := shifttime.ParseClock(s.EndTime)
	if err1 != nil || err2 != nil {
		return 0
	}
	return shifttime.Hours(start, end, 0)
}

// BeforeSave rejects malformed schedules
func (s *Schedule) BeforeSave(tx *gorm.DB) error {
	return s.Validate()
}
