package database

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"
)

// JanitorInterval is how often expired schedules are purged
const JanitorInterval = time.Hour

// StartJanitor purges expired schedules right away and then every interval
// until ctx is cancelled. It stands in for a TTL index.
func StartJanitor(ctx context.Context, db *gorm.DB, ttl, interval time.Duration, logger *log.Logger) {
	if ttl <= 0 {
		logger.Println("Schedule expiry disabled")
		return
	}

	purge := func() {
		n, err := PurgeExpiredSchedules(ctx, db, ttl, time.Now())
		if err != nil {
			logger.Printf("Schedule purge failed: %v", err)
			return
		}
		if n > 0 {
			logger.Printf("Purged %d expired schedules", n)
		}
	}

	go func() {
		purge()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purge()
			}
		}
	}()
}
