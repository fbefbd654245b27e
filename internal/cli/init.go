// Package cli holds the start-up wiring shared by cmd/cashflow,
// cmd/cashflow-worker and cmd/cashflow-cli.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"cashflow/internal/amqp"
	"cashflow/internal/config"
	"cashflow/internal/log"
	"cashflow/internal/services"
	"cashflow/internal/sheets"
	"cashflow/internal/sheets/google"
	"cashflow/internal/sheets/memory"
	"cashflow/internal/storage"
)

// SetupLogger builds the root logger for level and makes it the slog default.
func SetupLogger(level string, out io.Writer) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads variables from path, or from ./.env when path is empty.
// A missing default .env is not an error; a missing explicit file is.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// LoadAndValidateConfig loads configuration from the environment.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadLayout returns the workbook layout, read from cfg.LayoutFile if set.
func LoadLayout(cfg *config.Config) (sheets.Layout, error) {
	if cfg.LayoutFile == "" {
		return sheets.DefaultLayout(), nil
	}
	return sheets.LoadLayout(cfg.LayoutFile)
}

// NewResolver wires every input adapter the configuration enables. The
// in-memory store always carries the "sample" dataset.
func NewResolver(ctx context.Context, cfg *config.Config, logger *log.Logger) (*services.SourceResolver, error) {
	layout, err := LoadLayout(cfg)
	if err != nil {
		return nil, err
	}

	var googleReader sheets.RecordReader
	if cfg.SheetsEnabled() {
		client, err := google.New(ctx, google.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
			Layout:          layout,
		})
		if err != nil {
			return nil, fmt.Errorf("google sheets: %w", err)
		}
		googleReader = client
		logger.Info("Google Sheets input enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	return services.NewSourceResolver(layout, googleReader, memory.NewWithSample()), nil
}

// Recorders are the optional run-log sinks. Close releases whichever were
// opened.
type Recorders struct {
	Repo   *storage.SQLiteRepository
	Events *amqp.Client
}

// OpenRecorders opens the sqlite run log and the AMQP publisher when
// configured. An unreachable broker is logged and skipped.
func OpenRecorders(cfg *config.Config, logger *log.Logger) (*Recorders, error) {
	r := &Recorders{}
	if cfg.RunLogEnabled() {
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("open run log: %w", err)
		}
		r.Repo = repo
	}
	if cfg.EventsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Run events disabled: broker unavailable", log.FieldError, err)
		} else {
			r.Events = client
		}
	}
	return r, nil
}

// Options returns the service options recording to every opened sink.
func (r *Recorders) Options() []services.Option {
	var opts []services.Option
	if r.Repo != nil {
		opts = append(opts, services.WithRecorder(r.Repo))
	}
	if r.Events != nil {
		opts = append(opts, services.WithRecorder(r.Events))
	}
	return opts
}

func (r *Recorders) Close() error {
	var errs []error
	if r.Events != nil {
		errs = append(errs, r.Events.Close())
	}
	if r.Repo != nil {
		errs = append(errs, r.Repo.Close())
	}
	return errors.Join(errs...)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
