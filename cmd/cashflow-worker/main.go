package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"cashflow/internal/amqp"
	"cashflow/internal/cli"
	"cashflow/internal/log"
	"cashflow/internal/storage"
	"cashflow/internal/worker"
)

// statsSchedule is the cron spec for the periodic stats report.
const statsSchedule = "@every 5m"

func main() {
	if err := cli.LoadEnvFile(""); err != nil {
		cli.SetupLogger("info", os.Stdout).Error("Failed to load .env", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout)
	logger.Info("Starting cashflow-worker")

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if !cfg.RunLogEnabled() || !cfg.EventsEnabled() {
		logger.Error("The worker needs both SQLITE_DB_PATH and AMQP_URL")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	w := worker.NewRunLogWorker(repo, logger)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(statsSchedule, func() {
		processed, failed := w.Stats()
		total, err := repo.CountRuns(ctx)
		if err != nil {
			logger.Warn("Failed to count runs", log.FieldError, err)
		}
		logger.Info("Worker stats", "processed", processed, "failed", failed, "runs_stored", total)
	}); err != nil {
		logger.Error("Invalid stats schedule", log.FieldError, err)
		os.Exit(1)
	}
	scheduler.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx, client)
	})
	g.Go(func() error {
		<-gctx.Done()
		stopCtx := scheduler.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(10 * time.Second):
			logger.Warn("Shutdown timeout reached waiting for scheduled jobs")
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
