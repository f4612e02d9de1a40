package logging

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/models"
)

// RunCleanup deletes system_logs older than retention once at start and
// then daily, until ctx is cancelled.
func RunCleanup(ctx context.Context, db *gorm.DB, retention time.Duration) error {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		PurgeOlderThan(ctx, db, time.Now().Add(-retention))
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
}

// PurgeOlderThan deletes system_logs recorded before cutoff.
func PurgeOlderThan(ctx context.Context, db *gorm.DB, cutoff time.Time) int64 {
	result := db.WithContext(ctx).Where("timestamp < ?", cutoff.UTC()).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "error", result.Error)
		return 0
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
	return result.RowsAffected
}
