package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"carrental/internal/jobs"
	"carrental/internal/pkg/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
	log  logger.Logger
}

// NewScheduler creates a scheduler in UTC with seconds precision and
// registers every job. A bad cron spec is an error.
func NewScheduler(jobRunner *jobs.JobRunner, log logger.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
		log:  log,
	}
	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config()

	entries := []struct {
		name string
		spec string
		fn   func()
	}{
		{"SweepRentals", cfg.RentalSweep, s.jobs.SweepRentals},
		{"CleanupNotifications", cfg.NotificationCleanup, s.jobs.CleanupNotifications},
	}
	for _, e := range entries {
		if e.spec == "" {
			continue
		}
		if _, err := s.cron.AddFunc(e.spec, e.fn); err != nil {
			return fmt.Errorf("register %s job: %w", e.name, err)
		}
	}

	s.log.Info("cron jobs registered", map[string]interface{}{"count": len(s.cron.Entries())})
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("cron scheduler started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("cron scheduler stopped")
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
