package models

import (
	"strings"
	"time"

	"github.com/arnavshah/timeclock-api/pkg/shifttime"
)

// Weekdays are the day names used by branch hours and working-day patterns
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// NormalizeDay lower-cases a weekday name and checks it
func NormalizeDay(day string) (string, bool) {
	d := strings.ToLower(strings.TrimSpace(day))
	for _, w := range Weekdays {
		if d == w {
			return d, true
		}
	}
	return "", false
}

// Branch is a restaurant location
type Branch struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	Name           string        `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Address        string        `gorm:"size:255" json:"address"`
	Phone          string        `gorm:"size:50" json:"phone"`
	MinStaff       int           `gorm:"default:0" json:"minStaff"`
	MaxStaff       int           `gorm:"default:0" json:"maxStaff"`
	RequiredSkills []string      `gorm:"serializer:json;type:text" json:"requiredSkills"`
	IsActive       bool          `gorm:"default:true" json:"isActive"`
	Hours          []BranchHours `gorm:"foreignKey:BranchID" json:"hours,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// Validate checks the staffing bounds
func (b *Branch) Validate() error {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return Invalid("name", "is required")
	}
	if b.MinStaff < 0 || b.MaxStaff < 0 {
		return Invalid("minStaff", "staff bounds cannot be negative")
	}
	if b.MaxStaff > 0 && b.MinStaff > b.MaxStaff {
		return Invalid("maxStaff", "must be at least minStaff")
	}
	return nil
}

// HoursFor returns the configured hours for a weekday
func (b *Branch) HoursFor(day string) (BranchHours, bool) {
	for _, h := range b.Hours {
		if h.Day == day {
			return h, true
		}
	}
	return BranchHours{}, false
}

// BranchHours is the opening window of a branch on one weekday
type BranchHours struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	BranchID uint   `gorm:"uniqueIndex:idx_branch_day;not null" json:"-"`
	Day      string `gorm:"uniqueIndex:idx_branch_day;size:9;not null" json:"day"`
	Open     string `gorm:"size:5" json:"open"`
	Close    string `gorm:"size:5" json:"close"`
	Closed   bool   `json:"closed"`
}

// Validate normalizes the day and checks open/close times
func (h *BranchHours) Validate() error {
	day, ok := NormalizeDay(h.Day)
	if !ok {
		return Invalid("day", "unknown weekday %q", h.Day)
	}
	h.Day = day
	if h.Closed {
		h.Open, h.Close = "", ""
		return nil
	}
	open, err := shifttime.ParseClock(h.Open)
	if err != nil {
		return Invalid("open", "must be HH:MM")
	}
	closing, err := shifttime.ParseClock(h.Close)
	if err != nil {
		return Invalid("close", "must be HH:MM")
	}
	h.Open, h.Close = open.String(), closing.String()
	return nil
}
