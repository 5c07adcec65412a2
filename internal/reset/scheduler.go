package reset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/a2zmarket/a2z-backend/internal/metrics"
	"github.com/a2zmarket/a2z-backend/internal/models"
	"github.com/a2zmarket/a2z-backend/internal/repository"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNotFreeTier     = errors.New("profile is not on the free tier")
)

// DefaultPageSize bounds how many free profiles are loaded per scan page.
const DefaultPageSize = 500

// Store is the profile/listing data store the scheduler works against.
type Store interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	ListFreeProfiles(ctx context.Context, afterID uuid.UUID, limit int) ([]models.Profile, error)
	ApplyReset(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
}

// Info describes where a free account stands in its reset cycle.
type Info struct {
	UserID         uuid.UUID  `json:"user_id"`
	NextResetDate  time.Time  `json:"next_reset_date"`
	DaysUntilReset int        `json:"days_until_reset"`
	IsResetDay     bool       `json:"is_reset_day"`
	IsWarningDay   bool       `json:"is_warning_day"`
	LastResetAt    *time.Time `json:"last_reset_at"`
}

// BatchResult summarizes one batch pass.
type BatchResult struct {
	Scanned       int         `json:"scanned"`
	Due           int         `json:"due"`
	Success       int         `json:"success"`
	Failed        int         `json:"failed"`
	Skipped       int         `json:"skipped"`
	FailedUserIDs []uuid.UUID `json:"failed_user_ids"`
}

type Scheduler struct {
	store    Store
	now      func() time.Time
	pageSize int
}

type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithPageSize sets the scan page size. Non-positive values keep the default.
func WithPageSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func NewScheduler(store Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    store,
		now:      func() time.Time { return time.Now().UTC() },
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.now().UTC()
}

// InfoAt computes reset info for a free profile at a given instant.
func InfoAt(p *models.Profile, now time.Time) *Info {
	next := PendingResetDate(p.CreatedAt, p.LastFreeReset, now)
	days := DaysUntil(next, now)
	return &Info{
		UserID:         p.ID,
		NextResetDate:  next,
		DaysUntilReset: days,
		IsResetDay:     days <= 0,
		IsWarningDay:   days == 1,
		LastResetAt:    p.LastFreeReset,
	}
}

// GetResetInfo returns the caller's reset info. It returns ErrProfileNotFound
// for unknown users and ErrNotFreeTier for paid tiers.
func (s *Scheduler) GetResetInfo(ctx context.Context, userID uuid.UUID) (*Info, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		slog.Error("reset info lookup failed", "user_id", userID.String(), "action", "reset_info", "error", err)
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if !p.IsFree() {
		return nil, ErrNotFreeTier
	}
	return InfoAt(p, s.Now()), nil
}

// ResetAccount wipes a free account's listings and zeroes its counter when
// the account is due. It returns false with a nil error when the account is
// not due, unknown, or not on the free tier; nothing is written in that case.
func (s *Scheduler) ResetAccount(ctx context.Context, userID uuid.UUID) (bool, error) {
	info, err := s.GetResetInfo(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) || errors.Is(err, ErrNotFreeTier) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !info.IsResetDay {
		return false, nil
	}

	now := s.Now()
	deleted, err := s.store.ApplyReset(ctx, userID, now)
	if err != nil {
		slog.Error("free account reset failed", "user_id", userID.String(), "action", "free_reset", "error", err)
		metrics.FreeResetsTotal.WithLabelValues("failed").Inc()
		return false, fmt.Errorf("reset account %s: %w", userID, err)
	}

	metrics.FreeResetsTotal.WithLabelValues("success").Inc()
	metrics.FreeResetListingsDeleted.Add(float64(deleted))
	slog.Info("free account reset", "user_id", userID.String(), "action", "free_reset", "listings_deleted", deleted)
	return true, nil
}

// forEachDuePage walks every free profile page by page and hands the due ids
// of each page to fn. It returns the number of profiles scanned.
func (s *Scheduler) forEachDuePage(ctx context.Context, fn func(due []uuid.UUID) error) (int, error) {
	scanned := 0
	after := uuid.Nil
	for {
		if err := ctx.Err(); err != nil {
			return scanned, err
		}

		page, err := s.store.ListFreeProfiles(ctx, after, s.pageSize)
		if err != nil {
			return scanned, err
		}
		if len(page) == 0 {
			return scanned, nil
		}
		scanned += len(page)

		now := s.Now()
		due := make([]uuid.UUID, 0, len(page))
		for i := range page {
			if !PendingResetDate(page[i].CreatedAt, page[i].LastFreeReset, now).After(now) {
				due = append(due, page[i].ID)
			}
		}
		if len(due) > 0 {
			if err := fn(due); err != nil {
				return scanned, err
			}
		}

		if len(page) < s.pageSize {
			return scanned, nil
		}
		after = page[len(page)-1].ID
	}
}

// ListFreeUsersDueForReset returns the ids of free accounts whose pending
// reset date is at or before now.
func (s *Scheduler) ListFreeUsersDueForReset(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	_, err := s.forEachDuePage(ctx, func(due []uuid.UUID) error {
		ids = append(ids, due...)
		return nil
	})
	if err != nil {
		slog.Error("due account scan failed", "action", "free_reset_scan", "error", err)
		return nil, fmt.Errorf("scan free profiles: %w", err)
	}
	return ids, nil
}

// BatchResetAccounts resets every due free account, one at a time. A failed
// account never stops the batch. The returned error is only set when the scan
// itself fails; the result still holds what was processed before that.
func (s *Scheduler) BatchResetAccounts(ctx context.Context) (BatchResult, error) {
	start := time.Now()
	defer func() {
		metrics.FreeResetBatchDuration.Observe(time.Since(start).Seconds())
	}()

	var result BatchResult
	scanned, err := s.forEachDuePage(ctx, func(due []uuid.UUID) error {
		result.Due += len(due)
		for _, id := range due {
			ok, err := s.ResetAccount(ctx, id)
			switch {
			case err != nil:
				result.Failed++
				result.FailedUserIDs = append(result.FailedUserIDs, id)
				sentry.CaptureException(err)
			case ok:
				result.Success++
			default:
				result.Skipped++
			}
		}
		return nil
	})
	result.Scanned = scanned
	metrics.FreeResetDueAccounts.Set(float64(result.Due))

	if err != nil {
		slog.Error("free reset batch aborted", "action", "free_reset_batch", "error", err,
			"success", result.Success, "failed", result.Failed)
		return result, fmt.Errorf("scan free profiles: %w", err)
	}

	slog.Info("free reset batch finished", "action", "free_reset_batch",
		"scanned", result.Scanned, "due", result.Due,
		"success", result.Success, "failed", result.Failed, "skipped", result.Skipped)
	return result, nil
}
