package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/a2zmarket/a2z-backend/internal/dto"
	"github.com/a2zmarket/a2z-backend/internal/middleware"
	"github.com/a2zmarket/a2z-backend/internal/reset"
)

type ResetHandler struct {
	scheduler *reset.Scheduler
}

func NewResetHandler(scheduler *reset.Scheduler) *ResetHandler {
	return &ResetHandler{scheduler: scheduler}
}

// ResetInfo reports the caller's free reset cycle. Paid tiers get
// eligible=false rather than an error.
func (h *ResetHandler) ResetInfo(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	info, err := h.scheduler.GetResetInfo(c.UserContext(), userID)
	switch {
	case errors.Is(err, reset.ErrNotFreeTier):
		return c.JSON(dto.ResetInfoResponse{Eligible: false})
	case errors.Is(err, reset.ErrProfileNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Profile not found",
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load reset info",
		})
	}

	return c.JSON(toResetInfoResponse(info))
}

func toResetInfoResponse(info *reset.Info) dto.ResetInfoResponse {
	next := info.NextResetDate
	return dto.ResetInfoResponse{
		Eligible:       true,
		NextResetDate:  &next,
		DaysUntilReset: info.DaysUntilReset,
		IsResetDay:     info.IsResetDay,
		IsWarningDay:   info.IsWarningDay,
		LastResetAt:    info.LastResetAt,
	}
}
