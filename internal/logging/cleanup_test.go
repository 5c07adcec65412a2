package logging

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/a2zmarket/a2z-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.SystemLog{}))
	return db
}

func TestPurgeOlderThan(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	for _, age := range []time.Duration{time.Hour, 40 * 24 * time.Hour, 90 * 24 * time.Hour} {
		require.NoError(t, db.Create(&models.SystemLog{
			ID:        uuid.New(),
			Timestamp: now.Add(-age),
			Level:     "ERROR",
			Message:   "old",
		}).Error)
	}

	deleted := purgeOlderThan(context.Background(), db, now.AddDate(0, 0, -30))
	assert.Equal(t, int64(2), deleted)

	var left int64
	require.NoError(t, db.Model(&models.SystemLog{}).Count(&left).Error)
	assert.Equal(t, int64(1), left)
}

func TestPGHandler_FlushesOnStop(t *testing.T) {
	db := newTestDB(t)
	h := NewPGHandler(db, time.Hour)

	logger := slog.New(h).With("trigger", "worker")
	logger.Error("free reset batch aborted", "action", "free_reset_batch", "error", "timeout")
	logger.Warn("not persisted")

	h.Stop()

	var rows []models.SystemLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "free_reset_batch", rows[0].Action)
	assert.Equal(t, "timeout", rows[0].Error)
	assert.Equal(t, "worker", rows[0].Trigger)
}
