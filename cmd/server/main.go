package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/a2zmarket/a2z-backend/internal/config"
	"github.com/a2zmarket/a2z-backend/internal/database"
	"github.com/a2zmarket/a2z-backend/internal/handlers"
	"github.com/a2zmarket/a2z-backend/internal/logging"
	"github.com/a2zmarket/a2z-backend/internal/middleware"
	"github.com/a2zmarket/a2z-backend/internal/repository"
	"github.com/a2zmarket/a2z-backend/internal/reset"
	"github.com/a2zmarket/a2z-backend/internal/routes"
	"github.com/a2zmarket/a2z-backend/internal/services"
	"github.com/a2zmarket/a2z-backend/internal/worker"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		slog.Error("SUPABASE_JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewJSONHandler(os.Stdout, logging.ParseLevel(cfg.LogLevel)),
		pgLogHandler,
	)))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	logging.StartCleanup(ctx, db, cfg.LogRetentionDays)

	// Optional Redis batch lock
	var (
		locker worker.Locker
		pinger handlers.Pinger
		rdb    *database.Redis
	)
	if cfg.RedisEnabled() {
		rdb, err = database.NewRedis(cfg)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		locker, pinger = rdb, rdb
		slog.Info("redis batch lock enabled", "addr", cfg.RedisAddr)
	} else {
		slog.Warn("REDIS_ADDR not set, reset batches run without a cross-instance lock")
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Reset pipeline
	profiles := repository.NewProfileRepository(db)
	runs := repository.NewRunRepository(db)
	scheduler := reset.NewScheduler(profiles, reset.WithPageSize(cfg.ResetPageSize))
	job := worker.NewResetJob(scheduler, runs, locker, cfg.ResetLockTTL)
	workerDone := worker.NewResetWorker(job, cfg.ResetInterval, cfg.ResetOnStart).Start(ctx)

	// Services
	listingService := services.NewListingService(db, services.NewContentFilter())

	// Handlers
	healthHandler := handlers.NewHealthHandler(db, pinger)
	resetHandler := handlers.NewResetHandler(scheduler)
	listingHandler := handlers.NewListingHandler(listingService)
	cronHandler := handlers.NewCronHandler(job)
	adminResetHandler := handlers.NewAdminResetHandler(scheduler, runs)

	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.Metrics())

	routes.Setup(app, cfg, db, healthHandler, resetHandler, listingHandler, cronHandler, adminResetHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	stop()
	<-workerDone

	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
