package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/a2zmarket/a2z-backend/internal/config"
	"github.com/a2zmarket/a2z-backend/internal/dto"
	"github.com/a2zmarket/a2z-backend/internal/models"
)

const roleAdmin = "admin"

// AdminRequired lets a request through when any of these hold:
// the X-Admin-Token header matches, the caller's email or id is in the
// configured admin lists, or the caller's profile has the admin role.
// It must run after JWTProtected unless only the token is used.
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)
	adminUserIDs := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && secretEqual(c.Get("X-Admin-Token"), cfg.AdminToken) {
			return c.Next()
		}

		userID, err := GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if contains(adminEmails, strings.ToLower(GetEmail(c))) || contains(adminUserIDs, userID.String()) {
			return c.Next()
		}

		var profile models.Profile
		err = db.WithContext(c.UserContext()).Select("id", "role").First(&profile, "id = ?", userID).Error
		if err == nil && profile.Role == roleAdmin {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func secretEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	if val == "" {
		return false
	}
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
