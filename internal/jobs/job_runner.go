package jobs

import (
	"context"
	"time"

	"carrental/internal/config"
	"carrental/internal/pkg/logger"
)

const jobTimeout = 2 * time.Minute

type RentalSweeper interface {
	AdvanceDue(ctx context.Context) (int, error)
}

type NotificationCleaner interface {
	Cleanup(ctx context.Context, retention time.Duration, now time.Time) (int64, error)
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	rentals       RentalSweeper
	notifications NotificationCleaner
	config        config.SchedulerConfig
	log           logger.Logger
	now           func() time.Time
}

func NewJobRunner(rentals RentalSweeper, notifications NotificationCleaner, cfg config.SchedulerConfig, log logger.Logger) *JobRunner {
	return &JobRunner{
		rentals:       rentals,
		notifications: notifications,
		config:        cfg,
		log:           log,
		now:           time.Now,
	}
}

func (jr *JobRunner) Config() config.SchedulerConfig {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and a deadline.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			jr.log.Error("job panicked", map[string]interface{}{"job": jobName, "panic": r})
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := jobFunc(ctx); err != nil {
		jr.log.Error("job failed", map[string]interface{}{"job": jobName, "error": err.Error()})
		return
	}
	jr.log.Debug("job completed", map[string]interface{}{"job": jobName, "duration_ms": time.Since(start).Milliseconds()})
}

// RunAll runs every job once, for manual execution.
func (jr *JobRunner) RunAll() {
	jr.SweepRentals()
	jr.CleanupNotifications()
}
