package dto

import (
	"time"

	"github.com/google/uuid"
)

type ResetInfoResponse struct {
	Eligible       bool       `json:"eligible"`
	NextResetDate  *time.Time `json:"next_reset_date,omitempty"`
	DaysUntilReset int        `json:"days_until_reset"`
	IsResetDay     bool       `json:"is_reset_day"`
	IsWarningDay   bool       `json:"is_warning_day"`
	LastResetAt    *time.Time `json:"last_reset_at,omitempty"`
}

type DueAccountsResponse struct {
	UserIDs []uuid.UUID `json:"user_ids"`
	Count   int         `json:"count"`
	AsOf    time.Time   `json:"as_of"`
}

type ResetAccountResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Reset  bool      `json:"reset"`
}

type ResetRunResponse struct {
	ID            uuid.UUID   `json:"id"`
	Trigger       string      `json:"trigger"`
	StartedAt     time.Time   `json:"started_at"`
	FinishedAt    time.Time   `json:"finished_at"`
	DurationMs    int64       `json:"duration_ms"`
	Scanned       int         `json:"scanned"`
	Due           int         `json:"due"`
	Succeeded     int         `json:"succeeded"`
	Failed        int         `json:"failed"`
	Skipped       int         `json:"skipped"`
	FailedUserIDs []uuid.UUID `json:"failed_user_ids"`
	Error         string      `json:"error,omitempty"`
}
