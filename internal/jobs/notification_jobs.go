package jobs

import (
	"context"
	"time"
)

// CleanupNotifications drops notifications older than the retention window.
func (jr *JobRunner) CleanupNotifications() {
	jr.runWithRecovery("CleanupNotifications", func(ctx context.Context) error {
		days := jr.config.NotificationRetentionDays
		if days <= 0 {
			return nil
		}
		n, err := jr.notifications.Cleanup(ctx, time.Duration(days)*24*time.Hour, jr.now())
		if err != nil {
			return err
		}
		jr.log.Info("old notifications deleted", map[string]interface{}{"count": n, "retention_days": days})
		return nil
	})
}
