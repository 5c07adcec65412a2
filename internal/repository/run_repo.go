package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/a2zmarket/a2z-backend/internal/models"
)

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) RecordRun(ctx context.Context, run *models.ResetRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("record reset run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]models.ResetRun, error) {
	var runs []models.ResetRun
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list reset runs: %w", err)
	}
	return runs, nil
}
