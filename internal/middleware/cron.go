package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/a2zmarket/a2z-backend/internal/config"
	"github.com/a2zmarket/a2z-backend/internal/dto"
)

// CronAuth guards the scheduled trigger with "Authorization: Bearer <CRON_SECRET>".
// With no secret configured the endpoint is closed.
func CronAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.CronSecret == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Scheduled trigger is not configured",
			})
		}

		header := c.Get(fiber.HeaderAuthorization)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || !secretEqual(strings.TrimSpace(token), cfg.CronSecret) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		return c.Next()
	}
}
