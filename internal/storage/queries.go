package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// ProjectionRun mirrors a projection_runs row.
type ProjectionRun struct {
	ID           string
	Source       string
	Year         int64
	Month        int64
	Transactions int64
	Credits      int64
	Debits       int64
	Dropped      int64
	TotalCredits string
	TotalDebits  string
	Closing      sql.NullString
	CreatedAt    string
}

const insertRun = `
INSERT INTO projection_runs (
    id, source, year, month, transactions, credits, debits, dropped,
    total_credits, total_debits, closing, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING
`

// InsertRun stores a run and reports whether a new row was written.
func (q *Queries) InsertRun(ctx context.Context, arg ProjectionRun) (bool, error) {
	res, err := q.db.ExecContext(ctx, insertRun,
		arg.ID, arg.Source, arg.Year, arg.Month, arg.Transactions,
		arg.Credits, arg.Debits, arg.Dropped,
		arg.TotalCredits, arg.TotalDebits, arg.Closing, arg.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const runColumns = `id, source, year, month, transactions, credits, debits, dropped,
    total_credits, total_debits, closing, created_at`

const getRun = `SELECT ` + runColumns + ` FROM projection_runs WHERE id = ?`

func (q *Queries) GetRun(ctx context.Context, id string) (ProjectionRun, error) {
	return scanRun(q.db.QueryRowContext(ctx, getRun, id))
}

const listRuns = `SELECT ` + runColumns + ` FROM projection_runs
ORDER BY created_at DESC, id DESC
LIMIT ?`

func (q *Queries) ListRuns(ctx context.Context, limit int64) ([]ProjectionRun, error) {
	rows, err := q.db.QueryContext(ctx, listRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ProjectionRun
	for rows.Next() {
		i, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countRuns = `SELECT COUNT(*) FROM projection_runs`

func (q *Queries) CountRuns(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countRuns).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (ProjectionRun, error) {
	var i ProjectionRun
	err := s.Scan(
		&i.ID, &i.Source, &i.Year, &i.Month, &i.Transactions,
		&i.Credits, &i.Debits, &i.Dropped,
		&i.TotalCredits, &i.TotalDebits, &i.Closing, &i.CreatedAt,
	)
	return i, err
}
