// Command rental_sweep applies every calendar-driven rental transition that
// is due and prunes old read notifications, then exits. It is meant for
// deployments that run the API with SCHEDULER_ENABLED=false.
package main

import (
	"context"
	"time"

	"carrental/internal/config"
	"carrental/internal/database"
	"carrental/internal/modules/notification"
	"carrental/internal/modules/rental"
	"carrental/internal/pkg/logger"
	"carrental/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDevelopment().Fatal("load config", map[string]interface{}{"error": err.Error()})
	}
	log := logger.New(cfg.Logger.Level, cfg.Logger.Format, cfg.Logger.Output)

	db, err := database.Connect(cfg.Database.URL, database.Options{}, log)
	if err != nil {
		log.Fatal("db connect failed", map[string]interface{}{"error": err.Error()})
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	notifications := notification.NewService(repository.NewNotificationRepository(db), nil, log)
	rentals := rental.NewService(db,
		repository.NewRentalRepository(db),
		repository.NewCarRepository(db),
		repository.NewPaymentRepository(db),
		notifications,
		log,
	)

	advanced, err := rentals.AdvanceDue(ctx)
	if err != nil {
		log.Fatal("rental sweep failed", map[string]interface{}{"error": err.Error()})
	}

	var removed int64
	if days := cfg.Scheduler.NotificationRetentionDays; days > 0 {
		removed, err = notifications.Cleanup(ctx, time.Duration(days)*24*time.Hour, time.Now())
		if err != nil {
			log.Fatal("notification cleanup failed", map[string]interface{}{"error": err.Error()})
		}
	}

	log.Info("rental sweep completed", map[string]interface{}{
		"rentals_advanced":      advanced,
		"notifications_removed": removed,
	})
}
