package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/a2zmarket/a2z-backend/internal/models"
	"github.com/a2zmarket/a2z-backend/internal/subscription"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Post{}, &models.ResetRun{}))
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, tier subscription.Tier, createdAt time.Time, listings int) *models.Profile {
	t.Helper()
	p := &models.Profile{
		Email:            uuid.NewString()[:8] + "@example.com",
		SubscriptionTier: tier,
		CreatedAt:        createdAt,
		CurrentListings:  listings,
	}
	require.NoError(t, db.Create(p).Error)
	for i := 0; i < listings; i++ {
		post := &models.Post{UserID: p.ID, Title: fmt.Sprintf("Listing %d", i)}
		require.NoError(t, db.Create(post).Error)
	}
	return p
}
