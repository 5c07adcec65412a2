package cmd

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/a2zmarket/a2z-backend/internal/config"
	"github.com/a2zmarket/a2z-backend/internal/database"
	"github.com/a2zmarket/a2z-backend/internal/repository"
	"github.com/a2zmarket/a2z-backend/internal/reset"
	"github.com/a2zmarket/a2z-backend/internal/worker"
)

// pipeline is the reset stack the database-backed commands share.
type pipeline struct {
	db        *gorm.DB
	redis     *database.Redis
	scheduler *reset.Scheduler
	job       *worker.ResetJob
}

func openPipeline() (*pipeline, error) {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	p := &pipeline{db: db}
	var locker worker.Locker
	if cfg.RedisEnabled() {
		p.redis, err = database.NewRedis(cfg)
		if err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("redis: %w", err)
		}
		locker = p.redis
	}

	profiles := repository.NewProfileRepository(db)
	p.scheduler = reset.NewScheduler(profiles, reset.WithPageSize(cfg.ResetPageSize))
	p.job = worker.NewResetJob(p.scheduler, repository.NewRunRepository(db), locker, cfg.ResetLockTTL)
	return p, nil
}

func (p *pipeline) Close() {
	if p.redis != nil {
		if err := p.redis.Close(); err != nil {
			slog.Warn("redis close failed", "error", err)
		}
	}
	if err := database.Close(p.db); err != nil {
		slog.Warn("database close failed", "error", err)
	}
}
