package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ClockLocation is the zone wall-clock readings are taken in.
// Set once at startup from configuration.
var ClockLocation = time.Local

// DateLayout is the calendar date format used for dates stored as strings
const DateLayout = "2006-01-02"

// Position is a worker's job at the restaurant
type Position string

const (
	PositionRider   Position = "rider"
	PositionKitchen Position = "kitchen"
	PositionService Position = "service"
	PositionCashier Position = "cashier"
	PositionManager Position = "manager"
)

// Positions lists every valid position
var Positions = []Position{PositionRider, PositionKitchen, PositionService, PositionCashier, PositionManager}

// Valid reports whether p is a known position
func (p Position) Valid() bool {
	for _, known := range Positions {
		if p == known {
			return true
		}
	}
	return false
}

// ValidationError is returned from model hooks when a record is rejected
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for a field
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// MonthRange returns the [from, to) date strings of a calendar month
func MonthRange(year, month int) (string, string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first.Format(DateLayout), first.AddDate(0, 1, 0).Format(DateLayout)
}
