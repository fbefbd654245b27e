// Package worker persists run summaries consumed from the message broker.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	"cashflow/internal/log"
)

// RunStore persists run summaries.
type RunStore interface {
	RecordRun(ctx context.Context, run core.RunSummary) error
}

// RunConsumer delivers run messages until its context ends.
type RunConsumer interface {
	ConsumeRuns(ctx context.Context, handler func(context.Context, *amqp.RunCompletedMessage) error) error
}

// RunLogWorker writes every consumed run message to the run log.
type RunLogWorker struct {
	store     RunStore
	logger    *log.Logger
	processed atomic.Int64
	failed    atomic.Int64
}

func NewRunLogWorker(store RunStore, logger *log.Logger) *RunLogWorker {
	return &RunLogWorker{
		store:  store,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleRunCompleted stores one run. A returned error makes the consumer
// requeue the message; storing is idempotent per run ID.
func (w *RunLogWorker) HandleRunCompleted(ctx context.Context, msg *amqp.RunCompletedMessage) error {
	run := msg.Run
	if err := w.store.RecordRun(ctx, run); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	w.processed.Add(1)
	w.logger.InfoContext(ctx, "Run stored",
		log.FieldRunID, run.ID,
		log.FieldSource, run.Source,
		log.FieldYear, run.Year,
		log.FieldMonth, run.Month,
		log.FieldDropped, run.Dropped)
	return nil
}

// Run consumes until ctx is cancelled.
func (w *RunLogWorker) Run(ctx context.Context, consumer RunConsumer) error {
	w.logger.InfoContext(ctx, "Run log worker started")
	err := consumer.ConsumeRuns(ctx, w.HandleRunCompleted)
	w.logger.InfoContext(ctx, "Run log worker stopped",
		"processed", w.processed.Load(), "failed", w.failed.Load())
	return err
}

// Stats returns the number of stored and failed messages so far.
func (w *RunLogWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}
