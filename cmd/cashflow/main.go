package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"cashflow/internal/cli"
	apphttp "cashflow/internal/http"
	"cashflow/internal/log"
	"cashflow/internal/services"
)

func main() {
	if err := cli.LoadEnvFile(""); err != nil {
		cli.SetupLogger("info", os.Stdout).Error("Failed to load .env", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout)

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	resolver, err := cli.NewResolver(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize input adapters", log.FieldError, err)
		os.Exit(1)
	}
	recorders, err := cli.OpenRecorders(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize run log", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer recorders.Close()

	svc := services.NewCashflowService(resolver,
		append(recorders.Options(), services.WithLogger(logger))...)

	opts := apphttp.Options{
		Addr:               ":" + cfg.Port,
		UploadDir:          cfg.UploadDir,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		RequestTimeout:     cfg.RequestTimeout,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		CacheSize:          cfg.CacheSize,
		CacheTTL:           cfg.CacheTTL,
		Projector:          svc,
		Logger:             logger,
	}
	if recorders.Repo != nil {
		opts.Runs = recorders.Repo
		opts.Ready = append(opts.Ready, recorders.Repo)
	}
	srv, err := apphttp.NewServer(opts)
	if err != nil {
		logger.Error("Failed to initialize HTTP server", log.FieldError, err)
		os.Exit(1)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	}()

	logger.Info("Starting cashflow server",
		"port", cfg.Port,
		"run_log", cfg.RunLogEnabled(),
		"events", recorders.Events != nil,
		"google_sheets", cfg.SheetsEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
