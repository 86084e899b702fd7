package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/arnavshah/timeclock-api/pkg/scheduler"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConflictError is returned when a schedule would double-book a worker
type ConflictError struct {
	Conflicts []models.Schedule
}

func (e *ConflictError) Error() string {
	parts := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("%s-%s", c.StartTime, c.EndTime))
	}
	return fmt.Sprintf("worker already has an overlapping schedule on this date (%s)", strings.Join(parts, ", "))
}

// FindConflicts loads the worker's schedules for the candidate's date and
// returns the ones that overlap it.
func FindConflicts(ctx context.Context, db *gorm.DB, candidate *models.Schedule) ([]models.Schedule, error) {
	var existing []models.Schedule
	err := db.WithContext(ctx).
		Where("worker_id = ? AND date = ? AND status <> ?", candidate.WorkerID, candidate.Date, models.StatusCancelled).
		Find(&existing).Error
	if err != nil {
		return nil, err
	}
	return scheduler.Conflicts(candidate, existing)
}

// SaveSchedule creates or updates a schedule. The conflict check and the write
// run in one transaction; on Postgres an advisory lock keyed on worker and date
// serializes concurrent writers for the same day.
func SaveSchedule(ctx context.Context, db *gorm.DB, s *models.Schedule) error {
	if err := s.Validate(); err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			key, err := dateKey(s.Date)
			if err != nil {
				return err
			}
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", int32(s.WorkerID), key).Error; err != nil {
				return fmt.Errorf("lock worker schedule: %w", err)
			}
		}

		conflicts, err := FindConflicts(ctx, tx, s)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}

		return tx.Omit(clause.Associations).Save(s).Error
	})
}

// dateKey packs a YYYY-MM-DD date into an int32 lock key
func dateKey(date string) (int32, error) {
	d, err := models.ParseDate(date)
	if err != nil {
		return 0, err
	}
	return int32(d.Year()*10000 + int(d.Month())*100 + d.Day()), nil
}

// PurgeExpiredSchedules deletes schedules created before now-ttl
func PurgeExpiredSchedules(ctx context.Context, db *gorm.DB, ttl time.Duration, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("created_at < ?", now.Add(-ttl)).
		Delete(&models.Schedule{})
	return res.RowsAffected, res.Error
}
