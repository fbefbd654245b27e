package services

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"

	"cashflow/internal/core"
	"cashflow/internal/log"
	"cashflow/internal/render"
	"cashflow/internal/sheets"
)

// Mode selects the chart artifact produced by a run.
type Mode int

const (
	// ModeJSON produces the serialized Plotly figure.
	ModeJSON Mode = iota
	// ModeInteractive produces a standalone HTML page embedding the chart.
	ModeInteractive
)

func (m Mode) String() string {
	switch m {
	case ModeJSON:
		return "json"
	case ModeInteractive:
		return "interactive"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// RunRecorder stores or announces the summary of a completed run.
type RunRecorder interface {
	RecordRun(ctx context.Context, run core.RunSummary) error
}

// Result is everything a caller needs to present one projection.
type Result struct {
	Projection core.Projection
	Figure     render.Figure
	// Chart is the figure JSON in ModeJSON and a full HTML page in
	// ModeInteractive.
	Chart   []byte
	Table   template.HTML
	Summary core.RunSummary
}

// CashflowService reads a source, projects the month containing the current
// date and renders the result.
type CashflowService struct {
	reader    sheets.RecordReader
	recorders []RunRecorder
	now       func() time.Time
	newID     func() string
	logger    *log.Logger
}

type Option func(*CashflowService)

// WithClock replaces time.Now as the source of the current date.
func WithClock(now func() time.Time) Option {
	return func(s *CashflowService) { s.now = now }
}

// WithRecorder adds a run recorder. Nil recorders are ignored.
func WithRecorder(r RunRecorder) Option {
	return func(s *CashflowService) {
		if r != nil {
			s.recorders = append(s.recorders, r)
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *CashflowService) { s.logger = l.WithComponent(log.ComponentCashflow) }
}

// WithIDGenerator replaces the UUID generator used for run IDs.
func WithIDGenerator(f func() string) Option {
	return func(s *CashflowService) { s.newID = f }
}

func NewCashflowService(reader sheets.RecordReader, opts ...Option) *CashflowService {
	s := &CashflowService{
		reader: reader,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentCashflow),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run projects source and labels the run with the source itself.
func (s *CashflowService) Run(ctx context.Context, source string, mode Mode) (Result, error) {
	return s.RunLabeled(ctx, source, source, mode)
}

// RunLabeled projects source but records the run under label, e.g. the
// original name of an uploaded file staged under a unique path.
func (s *CashflowService) RunLabeled(ctx context.Context, source, label string, mode Mode) (Result, error) {
	recs, err := s.reader.ReadRecords(ctx, source)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", label, err)
	}
	return s.Project(ctx, recs, label, mode)
}

// Project computes and renders already loaded records.
func (s *CashflowService) Project(ctx context.Context, recs sheets.Records, label string, mode Mode) (Result, error) {
	now := s.now()
	period := core.ResolvePeriod(now)

	proj, err := core.Compute(recs.Credits, recs.Debits, period)
	if err != nil {
		return Result{}, fmt.Errorf("project %s: %w", label, err)
	}
	if proj.Dropped > 0 {
		s.logger.WarnContext(ctx, "Dropped incomplete rows",
			log.FieldSource, label, log.FieldDropped, proj.Dropped)
	}

	fig := render.NewFigure(proj, now)
	table, err := render.Table(proj.Ledger)
	if err != nil {
		return Result{}, err
	}

	var chart []byte
	switch mode {
	case ModeJSON:
		chart, err = fig.JSON()
	case ModeInteractive:
		chart, err = render.Page(proj, fig, table)
	default:
		err = fmt.Errorf("unknown output mode %v", mode)
	}
	if err != nil {
		return Result{}, err
	}

	summary := proj.Summary(s.newID(), label, now)
	s.record(ctx, summary)

	closing := "undefined"
	if summary.Closing.Valid {
		closing = summary.Closing.Decimal.StringFixed(2)
	}
	fields := log.NewFields().
		WithOperation(log.OpProject).
		WithPeriod(period.Year, period.Month).
		WithRun(label, summary.Transactions, summary.Dropped, closing)
	fields[log.FieldRunID] = summary.ID
	s.logger.InfoContext(ctx, "Projection completed", fields.ToSlice()...)

	return Result{
		Projection: proj,
		Figure:     fig,
		Chart:      chart,
		Table:      table,
		Summary:    summary,
	}, nil
}

// record hands the summary to every recorder. Failures are logged and never
// fail the run.
func (s *CashflowService) record(ctx context.Context, run core.RunSummary) {
	for _, r := range s.recorders {
		if err := r.RecordRun(ctx, run); err != nil {
			s.logger.ErrorContext(ctx, "Failed to record run",
				log.FieldRunID, run.ID, log.FieldOperation, log.OpRecord, log.FieldError, err)
		}
	}
}
