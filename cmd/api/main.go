package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"carrental/internal/config"
	"carrental/internal/database"
	"carrental/internal/jobs"
	"carrental/internal/pkg/cache"
	"carrental/internal/pkg/logger"
	"carrental/internal/scheduler"
	"carrental/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDevelopment().Fatal("load config", map[string]interface{}{"error": err.Error()})
	}

	log := logger.New(cfg.Logger.Level, cfg.Logger.Format, cfg.Logger.Output)
	logger.SetGlobalLogger(log)
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.Database.URL, database.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Debug:           cfg.Logger.Level == "debug",
	}, log)
	if err != nil {
		log.Fatal("connect database", map[string]interface{}{"error": err.Error()})
	}
	defer database.Close(db)

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("migrate database", map[string]interface{}{"error": err.Error()})
		}
	}

	cacheClient, err := cache.NewClient(cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		// the catalog falls back to the database without a cache
		log.Warn("redis unavailable, caching disabled", map[string]interface{}{"error": err.Error()})
		cacheClient = nil
	}
	defer cacheClient.Close()

	app := server.New(server.Deps{
		DB:     db,
		Cache:  cacheClient,
		Config: cfg,
		Log:    log,
	})
	defer app.Hub.Close()

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		runner := jobs.NewJobRunner(app.Rentals, app.Notifications, cfg.Scheduler, log)
		sched, err = scheduler.NewScheduler(runner, log)
		if err != nil {
			log.Fatal("init scheduler", map[string]interface{}{"error": err.Error()})
		}
		// catch up on transitions that came due while the process was down
		go runner.SweepRentals()
		sched.Start()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server starting", map[string]interface{}{"port": cfg.Server.Port, "env": cfg.AppEnv})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", map[string]interface{}{"error": err.Error()})
	}
}
