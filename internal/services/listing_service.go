package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/a2zmarket/a2z-backend/internal/dto"
	"github.com/a2zmarket/a2z-backend/internal/models"
	"github.com/a2zmarket/a2z-backend/internal/subscription"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrListingNotFound      = errors.New("listing not found")
	ErrListingLimitReached  = errors.New("listing limit reached for your plan")
	ErrImageLimitReached    = errors.New("too many images for your plan")
	ErrContentRejected      = errors.New("content rejected")
	ErrInvalidListingFields = errors.New("invalid listing fields")
)

// RejectedError carries the content filter reason for a rejected listing.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return "content rejected: " + e.Reason }

func (e *RejectedError) Is(target error) bool { return target == ErrContentRejected }

type ListingService struct {
	db       *gorm.DB
	filter   *ContentFilter
	validate *validator.Validate
}

func NewListingService(db *gorm.DB, filter *ContentFilter) *ListingService {
	return &ListingService{
		db:       db,
		filter:   filter,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Create stores a new listing for userID and bumps the owner's listing
// counter. Tier limits are checked against the locked profile row.
func (s *ListingService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateListingRequest) (*models.Post, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidListingFields, describeValidation(err))
	}
	for _, text := range []string{req.Title, req.Description} {
		if ok, reason := s.filter.Check(text); !ok {
			return nil, &RejectedError{Reason: reason}
		}
	}

	post := models.Post{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		Location:    req.Location,
	}
	post.SetImages(req.ImageURLs)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&profile, "id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProfileNotFound
		}
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}

		limits := subscription.LimitsFor(profile.SubscriptionTier)
		if !subscription.CanCreateListing(profile.SubscriptionTier, profile.CurrentListings) {
			return ErrListingLimitReached
		}
		if len(req.ImageURLs) > limits.MaxImagesPerListing {
			return ErrImageLimitReached
		}

		if err := tx.Create(&post).Error; err != nil {
			return fmt.Errorf("create listing: %w", err)
		}
		return tx.Model(&models.Profile{}).
			Where("id = ?", userID).
			Update("current_listings", gorm.Expr("current_listings + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListOwn returns a page of the user's listings, newest first, and the total.
func (s *ListingService) ListOwn(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Post, int64, error) {
	var posts []models.Post
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&posts).Error; err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}
	return posts, total, nil
}

// Delete removes one of the user's listings and decrements the counter,
// never below zero.
func (s *ListingService) Delete(ctx context.Context, userID, postID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", postID, userID).Delete(&models.Post{})
		if res.Error != nil {
			return fmt.Errorf("delete listing: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrListingNotFound
		}
		return tx.Model(&models.Profile{}).
			Where("id = ?", userID).
			Update("current_listings", gorm.Expr("CASE WHEN current_listings > 0 THEN current_listings - 1 ELSE 0 END")).Error
	})
}

// Usage reports the user's tier limits alongside the current counter.
func (s *ListingService) Usage(ctx context.Context, userID uuid.UUID) (*dto.UsageResponse, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).First(&profile, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &dto.UsageResponse{
		Tier:              profile.SubscriptionTier,
		Limits:            subscription.LimitsFor(profile.SubscriptionTier),
		CurrentListings:   profile.CurrentListings,
		RemainingListings: subscription.RemainingListings(profile.SubscriptionTier, profile.CurrentListings),
	}, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+" failed "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
