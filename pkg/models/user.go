package models

import "time"

// EmergencyContact is stored inline on the users table
type EmergencyContact struct {
	Name     string `gorm:"size:100" json:"name"`
	Phone    string `gorm:"size:50" json:"phone"`
	Relation string `gorm:"size:50" json:"relation"`
}

// User represents a worker or admin account
type User struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	Username       string   `gorm:"size:64;uniqueIndex;not null" json:"username"`
	EmployeeID     string   `gorm:"size:32;uniqueIndex;not null" json:"employeeId"`
	PasswordHash   string   `gorm:"not null" json:"-"`
	Position       Position `gorm:"size:20;not null" json:"position"`
	IsAdmin        bool     `gorm:"default:false" json:"isAdmin"`
	TelegramChatID *int64   `json:"telegramChatId,omitempty"`

	// Profile
	FullName         string           `gorm:"size:120" json:"fullName"`
	Bio              string           `gorm:"size:1000" json:"bio"`
	Skills           []string         `gorm:"serializer:json;type:text" json:"skills"`
	EmergencyContact EmergencyContact `gorm:"embedded;embeddedPrefix:emergency_" json:"emergencyContact"`
	PhotoURL         string           `gorm:"size:500" json:"photoUrl"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName prefers the full name over the username
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
