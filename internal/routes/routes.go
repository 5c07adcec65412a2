package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/a2zmarket/a2z-backend/internal/config"
	"github.com/a2zmarket/a2z-backend/internal/handlers"
	"github.com/a2zmarket/a2z-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	healthHandler *handlers.HealthHandler,
	resetHandler *handlers.ResetHandler,
	listingHandler *handlers.ListingHandler,
	cronHandler *handlers.CronHandler,
	adminResetHandler *handlers.AdminResetHandler,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Scheduled trigger (shared secret, no JWT)
	api.Post("/cron/free-reset", middleware.CronAuth(cfg), cronHandler.FreeReset)

	// Caller-scoped routes (JWT required), registered per route so public
	// routes stay untouched.
	api.Get("/me/reset-info", middleware.JWTProtected(cfg), resetHandler.ResetInfo)
	api.Get("/me/limits", middleware.JWTProtected(cfg), listingHandler.Limits)

	api.Post("/listings", middleware.JWTProtected(cfg), listingHandler.Create)
	api.Get("/listings", middleware.JWTProtected(cfg), listingHandler.List)
	api.Delete("/listings/:id", middleware.JWTProtected(cfg), listingHandler.Delete)

	admin := api.Group("/admin", jwtUnlessAdminToken(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/resets/due", adminResetHandler.ListDue)
	admin.Get("/resets/runs", adminResetHandler.ListRuns)
	admin.Post("/resets/:user_id", adminResetHandler.ResetOne)
}

// jwtUnlessAdminToken skips token verification when an admin token is sent,
// leaving AdminRequired to check it.
func jwtUnlessAdminToken(cfg *config.Config) fiber.Handler {
	jwtCheck := middleware.JWTProtected(cfg)
	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") != "" {
			return c.Next()
		}
		return jwtCheck(c)
	}
}
