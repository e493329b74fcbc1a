package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	notificationapp "github.com/retailops/backoffice/internal/application/notification"
	"github.com/retailops/backoffice/internal/infrastructure/config"
	"github.com/retailops/backoffice/internal/infrastructure/jobs"
	"github.com/retailops/backoffice/internal/infrastructure/logger"
	"github.com/retailops/backoffice/internal/infrastructure/persistence"
)

// The worker drains the low-stock queue filled by the API server when jobs are enabled.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log = log.Named("worker")
	defer func() { _ = logger.Sync(log) }()

	if !cfg.Jobs.Enabled {
		log.Warn("Jobs are disabled; low-stock alerts are delivered inline by the server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := persistence.NewDatabase(&cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 0))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	notifications := notificationapp.NewService(
		persistence.NewGormNotificationRepository(db.DB),
		persistence.NewGormMembershipRepository(db.DB),
		log,
	)
	worker := jobs.NewWorker(jobs.RedisOpt(cfg.Redis), cfg.Jobs, jobs.NewLowStockJob(notifications, log), log)

	log.Info("Starting worker",
		zap.String("redis", cfg.Redis.Addr()),
		zap.String("queue", cfg.Jobs.Queue),
		zap.Int("concurrency", cfg.Jobs.Concurrency),
	)
	return worker.Run(ctx)
}
