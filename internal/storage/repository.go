package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"cashflow/internal/core"
	"cashflow/internal/log"

	_ "modernc.org/sqlite"
)

// DefaultListLimit caps ListRuns when no positive limit is given.
const DefaultListLimit = 50

const timeLayout = "2006-01-02T15:04:05.000000000Z"

var ErrRunNotFound = errors.New("run not found")

// SQLiteRepository is the run log: one row per completed projection.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger = logger.WithComponent(log.ComponentStorage)
	logger.Debug("Run log ready", "path", dbPath, "schema_version", version)
	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// RecordRun stores a run summary. Recording the same run ID twice is a no-op.
func (r *SQLiteRepository) RecordRun(ctx context.Context, run core.RunSummary) error {
	row := toRow(run)
	inserted, err := r.queries.InsertRun(ctx, row)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	if !inserted {
		r.logger.DebugContext(ctx, "Run already recorded", log.FieldRunID, run.ID)
		return nil
	}
	r.logger.InfoContext(ctx, "Run recorded",
		log.FieldRunID, run.ID,
		log.FieldSource, run.Source,
		log.FieldYear, run.Year,
		log.FieldMonth, run.Month,
		log.FieldTransactions, run.Transactions,
		log.FieldDropped, run.Dropped)
	return nil
}

// GetRun returns one run or ErrRunNotFound.
func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (core.RunSummary, error) {
	row, err := r.queries.GetRun(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RunSummary{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return core.RunSummary{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return fromRow(row)
}

// ListRuns returns the most recent runs first.
func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]core.RunSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := r.queries.ListRuns(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	out := make([]core.RunSummary, 0, len(rows))
	for _, row := range rows {
		run, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}

func (r *SQLiteRepository) CountRuns(ctx context.Context) (int, error) {
	n, err := r.queries.CountRuns(ctx)
	if err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return int(n), nil
}

func toRow(run core.RunSummary) ProjectionRun {
	row := ProjectionRun{
		ID:           run.ID,
		Source:       run.Source,
		Year:         int64(run.Year),
		Month:        int64(run.Month),
		Transactions: int64(run.Transactions),
		Credits:      int64(run.Credits),
		Debits:       int64(run.Debits),
		Dropped:      int64(run.Dropped),
		TotalCredits: run.TotalCredits.String(),
		TotalDebits:  run.TotalDebits.String(),
		CreatedAt:    run.CreatedAt.UTC().Format(timeLayout),
	}
	if run.Closing.Valid {
		row.Closing = sql.NullString{String: run.Closing.Decimal.String(), Valid: true}
	}
	return row
}

func fromRow(row ProjectionRun) (core.RunSummary, error) {
	credits, err := decimal.NewFromString(row.TotalCredits)
	if err != nil {
		return core.RunSummary{}, fmt.Errorf("run %s total credits: %w", row.ID, err)
	}
	debits, err := decimal.NewFromString(row.TotalDebits)
	if err != nil {
		return core.RunSummary{}, fmt.Errorf("run %s total debits: %w", row.ID, err)
	}
	var closing decimal.NullDecimal
	if row.Closing.Valid {
		d, err := decimal.NewFromString(row.Closing.String)
		if err != nil {
			return core.RunSummary{}, fmt.Errorf("run %s closing: %w", row.ID, err)
		}
		closing = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	created, err := time.Parse(timeLayout, row.CreatedAt)
	if err != nil {
		return core.RunSummary{}, fmt.Errorf("run %s created_at: %w", row.ID, err)
	}
	return core.RunSummary{
		ID:           row.ID,
		Source:       row.Source,
		Year:         int(row.Year),
		Month:        int(row.Month),
		Transactions: int(row.Transactions),
		Credits:      int(row.Credits),
		Debits:       int(row.Debits),
		Dropped:      int(row.Dropped),
		TotalCredits: credits,
		TotalDebits:  debits,
		Closing:      closing,
		CreatedAt:    created,
	}, nil
}
