package handlers

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/a2zmarket/a2z-backend/internal/dto"
	"github.com/a2zmarket/a2z-backend/internal/models"
	"github.com/a2zmarket/a2z-backend/internal/reset"
)

// RunLister reads the reset run audit trail.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]models.ResetRun, error)
}

// AdminResetHandler exposes operator views and a manual per-account reset.
type AdminResetHandler struct {
	scheduler *reset.Scheduler
	runs      RunLister
}

func NewAdminResetHandler(scheduler *reset.Scheduler, runs RunLister) *AdminResetHandler {
	return &AdminResetHandler{scheduler: scheduler, runs: runs}
}

func (h *AdminResetHandler) ListDue(c *fiber.Ctx) error {
	asOf := h.scheduler.Now()
	ids, err := h.scheduler.ListFreeUsersDueForReset(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list due accounts",
		})
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return c.JSON(dto.DueAccountsResponse{
		UserIDs: ids,
		Count:   len(ids),
		AsOf:    asOf,
	})
}

// ResetOne resets a single account if it is due. A not-due, unknown or paid
// account answers 200 with reset=false.
func (h *AdminResetHandler) ResetOne(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	ok, err := h.scheduler.ResetAccount(c.UserContext(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Reset failed",
		})
	}

	slog.Info("admin reset requested", "user_id", userID.String(), "action", "admin_reset",
		"trigger", models.TriggerAdmin, "reset", ok)
	return c.JSON(dto.ResetAccountResponse{UserID: userID, Reset: ok})
}

func (h *AdminResetHandler) ListRuns(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit < 1 || limit > maxPageLimit {
		limit = 20
	}

	runs, err := h.runs.ListRuns(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list reset runs",
		})
	}

	resp := make([]dto.ResetRunResponse, 0, len(runs))
	for i := range runs {
		resp = append(resp, toResetRunResponse(&runs[i]))
	}
	return c.JSON(fiber.Map{"runs": resp})
}
