package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/a2zmarket/a2z-backend/internal/metrics"
	"github.com/a2zmarket/a2z-backend/internal/models"
	"github.com/a2zmarket/a2z-backend/internal/reset"
)

// ErrLocked is returned when another process holds the batch lock.
var ErrLocked = errors.New("free reset batch already running")

const lockKey = "a2z:free-reset:batch"

// Locker is a best-effort distributed mutex.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// BatchRunner runs one free reset pass.
type BatchRunner interface {
	BatchResetAccounts(ctx context.Context) (reset.BatchResult, error)
}

// RunRecorder persists the audit row for a run.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *models.ResetRun) error
}

// ResetJob is the single path every trigger (ticker, cron endpoint, CLI) uses
// to run a batch: lock, run, record, unlock.
type ResetJob struct {
	runner   BatchRunner
	recorder RunRecorder
	locker   Locker
	lockTTL  time.Duration
	now      func() time.Time
}

// NewResetJob builds a job. locker may be nil to run without a lock.
func NewResetJob(runner BatchRunner, recorder RunRecorder, locker Locker, lockTTL time.Duration) *ResetJob {
	return &ResetJob{
		runner:   runner,
		recorder: recorder,
		locker:   locker,
		lockTTL:  lockTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Execute runs one batch. The returned run is recorded even when the scan
// fails part way; in that case the scan error is returned alongside it.
func (j *ResetJob) Execute(ctx context.Context, trigger string) (*models.ResetRun, error) {
	if j.locker != nil {
		token, ok, err := j.locker.TryLock(ctx, lockKey, j.lockTTL)
		if err != nil {
			metrics.FreeResetRunsTotal.WithLabelValues(trigger, "lock_error").Inc()
			return nil, fmt.Errorf("acquire batch lock: %w", err)
		}
		if !ok {
			metrics.FreeResetRunsTotal.WithLabelValues(trigger, "locked").Inc()
			return nil, ErrLocked
		}
		defer func() {
			// The run context may already be cancelled; release on a fresh one.
			unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := j.locker.Unlock(unlockCtx, lockKey, token); err != nil {
				slog.Error("failed to release batch lock", "action", "free_reset_unlock", "error", err)
			}
		}()
	}

	run := &models.ResetRun{
		Trigger:   trigger,
		StartedAt: j.now(),
	}

	result, runErr := j.runner.BatchResetAccounts(ctx)
	run.FinishedAt = j.now()
	run.Scanned = result.Scanned
	run.Due = result.Due
	run.Succeeded = result.Success
	run.Failed = result.Failed
	run.Skipped = result.Skipped
	run.SetFailedUserIDs(result.FailedUserIDs)
	if runErr != nil {
		run.Error = runErr.Error()
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := j.recorder.RecordRun(recordCtx, run); err != nil {
		slog.Error("failed to record reset run", "action", "free_reset_record", "trigger", trigger, "error", err)
	}

	outcome := "ok"
	switch {
	case runErr != nil:
		outcome = "error"
		sentry.CaptureException(runErr)
	case run.Failed > 0:
		outcome = "partial"
	}
	metrics.FreeResetRunsTotal.WithLabelValues(trigger, outcome).Inc()

	slog.Info("reset run finished", "action", "free_reset_run", "trigger", trigger,
		"run_id", run.ID.String(), "outcome", outcome, "duration_ms", run.Duration().Milliseconds())
	return run, runErr
}
