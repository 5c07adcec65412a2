package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/a2zmarket/a2z-backend/internal/models"
	"gorm.io/gorm"
)

// StartCleanup deletes system_logs rows older than retentionDays once a day
// until ctx is cancelled.
func StartCleanup(ctx context.Context, db *gorm.DB, retentionDays int) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				purgeOlderThan(ctx, db, time.Now().UTC().AddDate(0, 0, -retentionDays))
			case <-ctx.Done():
				return
			}
		}
	}()
}

func purgeOlderThan(ctx context.Context, db *gorm.DB, cutoff time.Time) int64 {
	result := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "action", "log_cleanup", "error", result.Error)
		return 0
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
	return result.RowsAffected
}
