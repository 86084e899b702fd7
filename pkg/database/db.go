package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/arnavshah/timeclock-api/pkg/config"
	"github.com/arnavshah/timeclock-api/pkg/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open opens the database selected by the config: Postgres when
// DATABASE_URL is set, otherwise a SQLite file at DATA_PATH.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if cfg.UsesPostgres() {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DatabaseURL,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		db, err = OpenSQLite(cfg.DataPath)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens a SQLite database. path may be a file name or a "file:" DSN.
func OpenSQLite(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}

// Connect keeps trying to open the database every cfg.DBRetryInterval until
// it succeeds or ctx is cancelled.
func Connect(ctx context.Context, cfg *config.Config, logger *log.Logger) (*gorm.DB, error) {
	for attempt := 1; ; attempt++ {
		db, err := Open(cfg)
		if err == nil {
			if attempt > 1 {
				logger.Printf("Database connected after %d attempts", attempt)
			}
			return db, nil
		}

		logger.Printf("Database connection failed (attempt %d): %v; retrying in %s", attempt, err, cfg.DBRetryInterval)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up connecting to database: %w", ctx.Err())
		case <-time.After(cfg.DBRetryInterval):
		}
	}
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Branch{},
		&models.BranchHours{},
		&models.TimeEntry{},
		&models.Schedule{},
		&models.Announcement{},
	)
}

// DriverName returns the database/sql driver name behind a gorm connection
func DriverName(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "pgx"
	}
	return "sqlite3"
}

// SQL returns the raw connection pool behind gorm
func SQL(db *gorm.DB) (*sql.DB, error) {
	return db.DB()
}
