package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/a2zmarket/a2z-backend/internal/config"
	"github.com/a2zmarket/a2z-backend/internal/dto"
)

var (
	errNoToken    = errors.New("invalid token in context")
	errBadClaims  = errors.New("invalid claims")
	errMissingSub = errors.New("missing sub claim")
)

// JWTProtected verifies Supabase access tokens (HS256, sub = profile id).
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

func claims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, errNoToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errBadClaims
	}
	return mc, nil
}

// GetUserID extracts the caller's profile id from the verified token.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	mc, err := claims(c)
	if err != nil {
		return uuid.Nil, err
	}
	sub, ok := mc["sub"].(string)
	if !ok || sub == "" {
		return uuid.Nil, errMissingSub
	}
	return uuid.Parse(sub)
}

// GetEmail returns the email claim, or "" when absent.
func GetEmail(c *fiber.Ctx) string {
	mc, err := claims(c)
	if err != nil {
		return ""
	}
	email, _ := mc["email"].(string)
	return email
}
