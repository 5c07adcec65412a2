package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/a2zmarket/a2z-backend/internal/subscription"
)

type CreateListingRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=120"`
	Description string   `json:"description" validate:"max=4000"`
	PriceCents  int64    `json:"price_cents" validate:"gte=0"`
	Category    string   `json:"category" validate:"omitempty,max=50"`
	Location    string   `json:"location" validate:"omitempty,max=100"`
	ImageURLs   []string `json:"image_urls" validate:"omitempty,dive,url"`
}

type ListingResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	ImageURLs   []string  `json:"image_urls"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListingsListResponse struct {
	Listings []ListingResponse `json:"listings"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

type UsageResponse struct {
	Tier              subscription.Tier   `json:"tier"`
	Limits            subscription.Limits `json:"limits"`
	CurrentListings   int                 `json:"current_listings"`
	RemainingListings int                 `json:"remaining_listings"`
}
