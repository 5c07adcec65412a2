// Package worker runs the free-tier reset on a schedule.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/a2zmarket/a2z-backend/internal/models"
)

// Executor runs one triggered batch.
type Executor interface {
	Execute(ctx context.Context, trigger string) (*models.ResetRun, error)
}

// ResetWorker triggers the reset job every interval until its context ends.
type ResetWorker struct {
	job      Executor
	interval time.Duration
	runFirst bool
}

func NewResetWorker(job Executor, interval time.Duration, runOnStart bool) *ResetWorker {
	return &ResetWorker{
		job:      job,
		interval: interval,
		runFirst: runOnStart,
	}
}

// Run blocks until ctx is cancelled.
func (w *ResetWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("reset worker started", "interval", w.interval.String())
	if w.runFirst {
		w.tick(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("reset worker stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// Start runs the worker in a goroutine and returns a channel closed when it exits.
func (w *ResetWorker) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	return done
}

func (w *ResetWorker) tick(ctx context.Context) {
	_, err := w.job.Execute(ctx, models.TriggerWorker)
	switch {
	case err == nil:
	case errors.Is(err, ErrLocked):
		slog.Info("reset run skipped, another instance holds the lock")
	case errors.Is(err, context.Canceled):
	default:
		slog.Error("scheduled reset run failed", "action", "free_reset_run", "trigger", models.TriggerWorker, "error", err)
	}
}
