package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/models"
	"gorm.io/gorm"
)

// Retention is how long persisted error logs are kept.
const Retention = 30 * 24 * time.Hour

// StartCleanup deletes system_logs older than Retention once a day until
// done is closed.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := PurgeBefore(db, time.Now().Add(-Retention)); err != nil {
					slog.Error("log cleanup failed", "action", "log_cleanup", "error", err)
				}
			case <-done:
				return
			}
		}
	}()
}

// PurgeBefore removes persisted logs older than cutoff and returns how many
// rows went.
func PurgeBefore(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
