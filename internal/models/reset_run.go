package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Reset run triggers.
const (
	TriggerWorker = "worker"
	TriggerCron   = "cron"
	TriggerCLI    = "cli"
	TriggerAdmin  = "admin"
)

// ResetRun records one batch execution of the free-tier reset.
type ResetRun struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Trigger       string         `gorm:"size:20;not null;index" json:"trigger"`
	StartedAt     time.Time      `gorm:"not null;index" json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	Scanned       int            `json:"scanned"`
	Due           int            `json:"due"`
	Succeeded     int            `json:"succeeded"`
	Failed        int            `json:"failed"`
	Skipped       int            `json:"skipped"`
	FailedUserIDs datatypes.JSON `json:"failed_user_ids"`
	Error         string         `gorm:"type:text" json:"error,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (r *ResetRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *ResetRun) SetFailedUserIDs(ids []uuid.UUID) {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	b, _ := json.Marshal(ids)
	r.FailedUserIDs = datatypes.JSON(b)
}

// FailedIDs decodes FailedUserIDs; malformed or empty data yields an empty slice.
func (r *ResetRun) FailedIDs() []uuid.UUID {
	ids := []uuid.UUID{}
	if len(r.FailedUserIDs) == 0 {
		return ids
	}
	if err := json.Unmarshal(r.FailedUserIDs, &ids); err != nil {
		return []uuid.UUID{}
	}
	return ids
}

func (r *ResetRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (ResetRun) TableName() string {
	return "reset_runs"
}
