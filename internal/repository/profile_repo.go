// Package repository implements the Postgres-backed profile, listing and
// reset-run store on top of GORM.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/a2zmarket/a2z-backend/internal/models"
	"github.com/a2zmarket/a2z-backend/internal/subscription"
)

var ErrNotFound = errors.New("record not found")

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}
	return &profile, nil
}

// ListFreeProfiles returns up to limit free-tier profiles with id greater than
// afterID, ordered by id. Pass uuid.Nil to start from the beginning.
func (r *ProfileRepository) ListFreeProfiles(ctx context.Context, afterID uuid.UUID, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	q := r.db.WithContext(ctx).
		Select("id", "subscription_tier", "created_at", "last_free_reset").
		Where("subscription_tier = ?", subscription.TierFree)
	if afterID != uuid.Nil {
		q = q.Where("id > ?", afterID)
	}
	if err := q.Order("id ASC").Limit(limit).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list free profiles: %w", err)
	}
	return profiles, nil
}

// ApplyReset deletes every listing owned by id and then stamps the profile
// with the reset time and a zero listing counter. Both writes share one
// transaction; a failed delete never reaches the profile update.
func (r *ProfileRepository) ApplyReset(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ?", id).Delete(&models.Post{})
		if res.Error != nil {
			return fmt.Errorf("delete listings: %w", res.Error)
		}
		deleted = res.RowsAffected

		res = tx.Model(&models.Profile{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"last_free_reset":  at,
				"current_listings": 0,
			})
		if res.Error != nil {
			return fmt.Errorf("update profile: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
