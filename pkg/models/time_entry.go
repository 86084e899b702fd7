package models

import (
	"strings"
	"time"

	"github.com/arnavshah/timeclock-api/pkg/shifttime"
	"gorm.io/gorm"
)

// OvertimeReason explains why a shift ran long
type OvertimeReason string

const (
	ReasonBusy           OvertimeReason = "Busy"
	ReasonLastOrder      OvertimeReason = "Last Order"
	ReasonCompanyRequest OvertimeReason = "Company Request"
)

// Valid reports whether r is empty or a known reason
func (r OvertimeReason) Valid() bool {
	switch r {
	case "", ReasonBusy, ReasonLastOrder, ReasonCompanyRequest:
		return true
	}
	return false
}

// TimeEntry is one worker's logged shift
type TimeEntry struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            uint           `gorm:"not null;index" json:"userId"`
	User              *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	StartTime         time.Time      `gorm:"not null" json:"startTime"`
	EndTime           time.Time      `gorm:"not null" json:"endTime"`
	Hours             float64        `gorm:"not null" json:"hours"`
	Date              string         `gorm:"size:10;not null;index" json:"date"`
	Position          Position       `gorm:"size:20" json:"position"`
	BreakMinutes      int            `gorm:"default:0" json:"breakMinutes"`
	OvertimeReason    OvertimeReason `gorm:"size:32" json:"overtimeReason,omitempty"`
	ResponsiblePerson string         `gorm:"size:120" json:"responsiblePerson,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// Validate checks the fields a client controls
func (e *TimeEntry) Validate() error {
	if e.StartTime.IsZero() {
		return Invalid("startTime", "is required")
	}
	if e.EndTime.IsZero() {
		return Invalid("endTime", "is required")
	}
	if _, err := ParseDate(e.Date); err != nil {
		return Invalid("date", "must be YYYY-MM-DD")
	}
	if e.BreakMinutes < 0 {
		return Invalid("breakMinutes", "cannot be negative")
	}
	if !e.OvertimeReason.Valid() {
		return Invalid("overtimeReason", "must be one of Busy, Last Order, Company Request")
	}
	e.ResponsiblePerson = strings.TrimSpace(e.ResponsiblePerson)
	if e.OvertimeReason == ReasonCompanyRequest && e.ResponsiblePerson == "" {
		return Invalid("responsiblePerson", "is required when the reason is Company Request")
	}
	if e.OvertimeReason != ReasonCompanyRequest {
		e.ResponsiblePerson = ""
	}
	return nil
}

// Recalculate derives Hours from the start, end and break
func (e *TimeEntry) Recalculate() {
	e.Hours = shifttime.HoursBetween(e.StartTime, e.EndTime, e.BreakMinutes, ClockLocation)
}

// BeforeSave keeps Hours derived on every create and update
func (e *TimeEntry) BeforeSave(tx *gorm.DB) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e.Recalculate()
	return nil
}
