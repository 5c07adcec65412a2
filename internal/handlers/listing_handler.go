package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/a2zmarket/a2z-backend/internal/dto"
	"github.com/a2zmarket/a2z-backend/internal/middleware"
	"github.com/a2zmarket/a2z-backend/internal/models"
	"github.com/a2zmarket/a2z-backend/internal/services"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type ListingHandler struct {
	listingService *services.ListingService
}

func NewListingHandler(listingService *services.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	post, err := h.listingService.Create(c.UserContext(), userID, &req)
	if err != nil {
		return listingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toListingResponse(post))
}

func (h *ListingHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}

	posts, total, err := h.listingService.ListOwn(c.UserContext(), userID, limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list listings",
		})
	}

	listings := make([]dto.ListingResponse, 0, len(posts))
	for i := range posts {
		listings = append(listings, toListingResponse(&posts[i]))
	}
	return c.JSON(dto.ListingsListResponse{
		Listings: listings,
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}

func (h *ListingHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid listing ID",
		})
	}

	if err := h.listingService.Delete(c.UserContext(), userID, postID); err != nil {
		return listingError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Limits returns the caller's tier limits and current usage.
func (h *ListingHandler) Limits(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	usage, err := h.listingService.Usage(c.UserContext(), userID)
	if err != nil {
		return listingError(c, err)
	}
	return c.JSON(usage)
}

func listingError(c *fiber.Ctx, err error) error {
	var rejected *services.RejectedError
	switch {
	case errors.As(err, &rejected):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Error: true, Message: services.RejectionMessage(rejected.Reason),
		})
	case errors.Is(err, services.ErrInvalidListingFields):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrListingLimitReached), errors.Is(err, services.ErrImageLimitReached):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrListingNotFound), errors.Is(err, services.ErrProfileNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
}

func toListingResponse(p *models.Post) dto.ListingResponse {
	return dto.ListingResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Category:    p.Category,
		Location:    p.Location,
		ImageURLs:   p.Images(),
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
	}
}
