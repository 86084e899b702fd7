package models

import (
	"strings"
	"time"
)

// AnnouncementType classifies a broadcast
type AnnouncementType string

const (
	AnnouncementInfo    AnnouncementType = "info"
	AnnouncementWarning AnnouncementType = "warning"
	AnnouncementUrgent  AnnouncementType = "urgent"
	AnnouncementEvent   AnnouncementType = "event"
)

// Announcement is a message shown to every worker
type Announcement struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Title       string           `gorm:"size:200;not null" json:"title"`
	Message     string           `gorm:"size:4000" json:"message"`
	Type        AnnouncementType `gorm:"size:20;default:info" json:"type"`
	IsActive    bool             `gorm:"default:true;index" json:"isActive"`
	CreatedByID uint             `json:"createdById"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Validate checks the title and type
func (a *Announcement) Validate() error {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return Invalid("title", "is required")
	}
	switch a.Type {
	case "":
		a.Type = AnnouncementInfo
	case AnnouncementInfo, AnnouncementWarning, AnnouncementUrgent, AnnouncementEvent:
	default:
		return Invalid("type", "unknown type %q", a.Type)
	}
	return nil
}
