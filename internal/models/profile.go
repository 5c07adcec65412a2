package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/a2zmarket/a2z-backend/internal/subscription"
)

// Profile mirrors the marketplace user profile. ID is the Supabase auth user id.
type Profile struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string            `gorm:"size:255;index" json:"email"`
	DisplayName      string            `gorm:"size:120" json:"display_name"`
	Role             string            `gorm:"size:20;default:'user'" json:"role"`
	SubscriptionTier subscription.Tier `gorm:"size:20;not null;default:'free';index" json:"subscription_tier"`
	LastFreeReset    *time.Time        `json:"last_free_reset"`
	CurrentListings  int               `gorm:"not null;default:0" json:"current_listings"`
	CreatedAt        time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.SubscriptionTier == "" {
		p.SubscriptionTier = subscription.TierFree
	}
	return nil
}

func (p *Profile) IsFree() bool {
	return p.SubscriptionTier == subscription.TierFree
}

func (Profile) TableName() string {
	return "profiles"
}
