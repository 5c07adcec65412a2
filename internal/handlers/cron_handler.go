package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/a2zmarket/a2z-backend/internal/dto"
	"github.com/a2zmarket/a2z-backend/internal/models"
	"github.com/a2zmarket/a2z-backend/internal/worker"
)

// CronHandler serves the externally scheduled batch trigger.
type CronHandler struct {
	job worker.Executor
}

func NewCronHandler(job worker.Executor) *CronHandler {
	return &CronHandler{job: job}
}

func (h *CronHandler) FreeReset(c *fiber.Ctx) error {
	run, err := h.job.Execute(c.UserContext(), models.TriggerCron)
	if errors.Is(err, worker.ErrLocked) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "A reset run is already in progress",
		})
	}
	if run == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Reset run failed",
		})
	}

	code := fiber.StatusOK
	if err != nil {
		code = fiber.StatusInternalServerError
	}
	return c.Status(code).JSON(toResetRunResponse(run))
}

func toResetRunResponse(run *models.ResetRun) dto.ResetRunResponse {
	return dto.ResetRunResponse{
		ID:            run.ID,
		Trigger:       run.Trigger,
		StartedAt:     run.StartedAt,
		FinishedAt:    run.FinishedAt,
		DurationMs:    run.Duration().Milliseconds(),
		Scanned:       run.Scanned,
		Due:           run.Due,
		Succeeded:     run.Succeeded,
		Failed:        run.Failed,
		Skipped:       run.Skipped,
		FailedUserIDs: run.FailedIDs(),
		Error:         run.Error,
	}
}
