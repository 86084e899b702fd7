package report

import (
	"context"
	"database/sql"
	"time"

	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/jmoiron/sqlx"
)

// EntryRow is one time entry as read for a report
type EntryRow struct {
	ID                uint      `db:"id"`
	Date              string    `db:"date"`
	StartTime         time.Time `db:"start_time"`
	EndTime           time.Time `db:"end_time"`
	BreakMinutes      int       `db:"break_minutes"`
	Hours             float64   `db:"hours"`
	Position          string    `db:"position"`
	OvertimeReason    string    `db:"overtime_reason"`
	ResponsiblePerson string    `db:"responsible_person"`
}

// Repo reads timesheet rows straight from the time_entries table
type Repo struct {
	db *sqlx.DB
}

// NewRepo wraps an existing pool. driverName picks the bind-variable style.
func NewRepo(db *sql.DB, driverName string) *Repo {
	return &Repo{db: sqlx.NewDb(db, driverName)}
}

const monthlyEntriesQuery = `
SELECT id, date, start_time, end_time, break_minutes, hours,
       COALESCE(position, '') AS position,
       COALESCE(overtime_reason, '') AS overtime_reason,
       COALESCE(responsible_person, '') AS responsible_person
FROM time_entries
WHERE user_id = ? AND date >= ? AND date < ?
ORDER BY date, start_time`

// MonthlyEntries returns a worker's entries for one calendar month
func (r *Repo) MonthlyEntries(ctx context.Context, userID uint, year, month int) ([]EntryRow, error) {
	from, to := models.MonthRange(year, month)

	var rows []EntryRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(monthlyEntriesQuery), userID, from, to); err != nil {
		return nil, err
	}
	return rows, nil
}
