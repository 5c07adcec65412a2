package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/a2zmarket/a2z-backend/internal/config"
	"github.com/a2zmarket/a2z-backend/internal/dto"
	"github.com/a2zmarket/a2z-backend/internal/handlers"
	"github.com/a2zmarket/a2z-backend/internal/middleware"
	"github.com/a2zmarket/a2z-backend/internal/models"
	"github.com/a2zmarket/a2z-backend/internal/repository"
	"github.com/a2zmarket/a2z-backend/internal/reset"
	"github.com/a2zmarket/a2z-backend/internal/services"
	"github.com/a2zmarket/a2z-backend/internal/subscription"
	"github.com/a2zmarket/a2z-backend/internal/worker"
)

const (
	testJWTSecret  = "test-jwt-secret"
	testCronSecret = "test-cron-secret"
	testAdminToken = "test-admin-token"
)

var (
	registeredAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fixedNow     = time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)
)

type stubExecutor struct {
	run *models.ResetRun
	err error
}

func (s *stubExecutor) Execute(ctx context.Context, trigger string) (*models.ResetRun, error) {
	if s.run != nil {
		s.run.Trigger = trigger
	}
	return s.run, s.err
}

type testServer struct {
	app *fiber.App
	db  *gorm.DB
	now time.Time
}

func newTestServer(t *testing.T, job worker.Executor) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Post{}, &models.ResetRun{}))

	cfg := &config.Config{
		JWTSecret:   testJWTSecret,
		CronSecret:  testCronSecret,
		AdminToken:  testAdminToken,
		AdminEmails: "ops@a2z.test",
		CORSOrigins: "*",
	}

	ts := &testServer{db: db, now: fixedNow}
	profiles := repository.NewProfileRepository(db)
	runs := repository.NewRunRepository(db)
	scheduler := reset.NewScheduler(profiles, reset.WithClock(func() time.Time { return ts.now }))
	if job == nil {
		job = worker.NewResetJob(scheduler, runs, nil, time.Minute)
	}

	app := fiber.New()
	app.Use(middleware.Metrics())
	Setup(app, cfg, db,
		handlers.NewHealthHandler(db, nil),
		handlers.NewResetHandler(scheduler),
		handlers.NewListingHandler(services.NewListingService(db, services.NewContentFilter())),
		handlers.NewCronHandler(job),
		handlers.NewAdminResetHandler(scheduler, runs),
	)
	ts.app = app
	return ts
}

func (ts *testServer) seedProfile(t *testing.T, tier subscription.Tier, role string) *models.Profile {
	t.Helper()
	p := &models.Profile{
		Email:            uuid.NewString()[:8] + "@a2z.test",
		Role:             role,
		SubscriptionTier: tier,
		CreatedAt:        registeredAt,
	}
	require.NoError(t, ts.db.Create(p).Error)
	return p
}

func token(t *testing.T, sub uuid.UUID, email string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub.String(),
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func bearer(tok string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := ts.do(t, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health dto.HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.DB)
	assert.Empty(t, health.Redis)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(t, http.MethodGet, "/api/health", nil, nil)

	resp, body := ts.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "a2z_http_requests_total")
}

func TestResetInfo(t *testing.T) {
	ts := newTestServer(t, nil)
	free := ts.seedProfile(t, subscription.TierFree, "")
	premium := ts.seedProfile(t, subscription.TierPremium, "")

	t.Run("requires token", func(t *testing.T) {
		resp, _ := ts.do(t, http.MethodGet, "/api/me/reset-info", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": free.ID.String()})
		signed, err := tok.SignedString([]byte("other-secret"))
		require.NoError(t, err)
		resp, _ := ts.do(t, http.MethodGet, "/api/me/reset-info", nil, bearer(signed))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("free account on warning day", func(t *testing.T) {
		resp, body := ts.do(t, http.MethodGet, "/api/me/reset-info", nil, bearer(token(t, free.ID, free.Email)))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var info dto.ResetInfoResponse
		require.NoError(t, json.Unmarshal(body, &info))
		assert.True(t, info.Eligible)
		require.NotNil(t, info.NextResetDate)
		assert.True(t, info.NextResetDate.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, 1, info.DaysUntilReset)
		assert.True(t, info.IsWarningDay)
		assert.False(t, info.IsResetDay)
	})

	t.Run("paid account is not eligible", func(t *testing.T) {
		resp, body := ts.do(t, http.MethodGet, "/api/me/reset-info", nil, bearer(token(t, premium.ID, premium.Email)))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var info dto.ResetInfoResponse
		require.NoError(t, json.Unmarshal(body, &info))
		assert.False(t, info.Eligible)
		assert.Nil(t, info.NextResetDate)
	})

	t.Run("unknown profile", func(t *testing.T) {
		resp, _ := ts.do(t, http.MethodGet, "/api/me/reset-info", nil, bearer(token(t, uuid.New(), "")))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestListingLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)
	p := ts.seedProfile(t, subscription.TierFree, "")
	auth := bearer(token(t, p.ID, p.Email))

	resp, body := ts.do(t, http.MethodPost, "/api/listings", dto.CreateListingRequest{
		Title:      "Fridge, barely used",
		PriceCents: 450000,
		ImageURLs:  []string{"https://cdn.a2z.test/fridge.jpg"},
	}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created dto.ListingResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, p.ID, created.UserID)

	resp, body = ts.do(t, http.MethodGet, "/api/listings?page=1&limit=10", nil, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.ListingsListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Listings, 1)
	assert.Equal(t, created.ID, list.Listings[0].ID)

	resp, body = ts.do(t, http.MethodGet, "/api/me/limits", nil, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var usage dto.UsageResponse
	require.NoError(t, json.Unmarshal(body, &usage))
	assert.Equal(t, 1, usage.CurrentListings)
	assert.Equal(t, 4, usage.RemainingListings)

	resp, _ = ts.do(t, http.MethodDelete, "/api/listings/"+created.ID.String(), nil, auth)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodDelete, "/api/listings/"+created.ID.String(), nil, auth)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodDelete, "/api/listings/not-a-uuid", nil, auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateListing_Errors(t *testing.T) {
	ts := newTestServer(t, nil)
	p := ts.seedProfile(t, subscription.TierFree, "")
	auth := bearer(token(t, p.ID, p.Email))

	resp, body := ts.do(t, http.MethodPost, "/api/listings", dto.CreateListingRequest{
		Title: "Cheap phones, visit www.deals.example.com",
	}, auth)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "Links are not allowed")

	resp, _ = ts.do(t, http.MethodPost, "/api/listings", dto.CreateListingRequest{Title: "x"}, auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.NoError(t, ts.db.Model(&models.Profile{}).Where("id = ?", p.ID).Update("current_listings", 5).Error)
	resp, _ = ts.do(t, http.MethodPost, "/api/listings", dto.CreateListingRequest{Title: "Sixth listing"}, auth)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCronFreeReset(t *testing.T) {
	t.Run("rejects wrong secret", func(t *testing.T) {
		ts := newTestServer(t, nil)
		resp, _ := ts.do(t, http.MethodPost, "/api/cron/free-reset", nil, bearer("wrong"))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp, _ = ts.do(t, http.MethodPost, "/api/cron/free-reset", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("runs the batch", func(t *testing.T) {
		ts := newTestServer(t, nil)
		ts.now = time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
		due := ts.seedProfile(t, subscription.TierFree, "")
		require.NoError(t, ts.db.Create(&models.Post{UserID: due.ID, Title: "Old listing"}).Error)

		resp, body := ts.do(t, http.MethodPost, "/api/cron/free-reset", nil, bearer(testCronSecret))
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var run dto.ResetRunResponse
		require.NoError(t, json.Unmarshal(body, &run))
		assert.Equal(t, models.TriggerCron, run.Trigger)
		assert.Equal(t, 1, run.Due)
		assert.Equal(t, 1, run.Succeeded)
		assert.Empty(t, run.FailedUserIDs)

		var posts int64
		require.NoError(t, ts.db.Model(&models.Post{}).Where("user_id = ?", due.ID).Count(&posts).Error)
		assert.Zero(t, posts)

		var runs int64
		require.NoError(t, ts.db.Model(&models.ResetRun{}).Count(&runs).Error)
		assert.Equal(t, int64(1), runs)
	})

	t.Run("conflict when locked", func(t *testing.T) {
		ts := newTestServer(t, &stubExecutor{err: worker.ErrLocked})
		resp, _ := ts.do(t, http.MethodPost, "/api/cron/free-reset", nil, bearer(testCronSecret))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("scan failure returns recorded run", func(t *testing.T) {
		ts := newTestServer(t, &stubExecutor{
			run: &models.ResetRun{ID: uuid.New(), Succeeded: 2, Error: "scan free profiles: timeout"},
			err: fmt.Errorf("scan free profiles: timeout"),
		})
		resp, body := ts.do(t, http.MethodPost, "/api/cron/free-reset", nil, bearer(testCronSecret))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, string(body), "scan free profiles")
	})
}

func TestAdminResets(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.now = time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)

	due := ts.seedProfile(t, subscription.TierFree, "")
	regular := ts.seedProfile(t, subscription.TierFree, "")
	require.NoError(t, ts.db.Model(&models.Profile{}).Where("id = ?", regular.ID).
		Update("created_at", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)).Error)
	admin := ts.seedProfile(t, subscription.TierPremium, "admin")

	t.Run("forbidden for regular users", func(t *testing.T) {
		resp, _ := ts.do(t, http.MethodGet, "/api/admin/resets/due", nil, bearer(token(t, regular.ID, regular.Email)))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("wrong admin token", func(t *testing.T) {
		resp, _ := ts.do(t, http.MethodGet, "/api/admin/resets/due", nil, map[string]string{"X-Admin-Token": "nope"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("lists due accounts with admin token", func(t *testing.T) {
		resp, body := ts.do(t, http.MethodGet, "/api/admin/resets/due", nil, map[string]string{"X-Admin-Token": testAdminToken})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out dto.DueAccountsResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, []uuid.UUID{due.ID}, out.UserIDs)
		assert.Equal(t, 1, out.Count)
	})

	t.Run("admin by configured email", func(t *testing.T) {
		resp, _ := ts.do(t, http.MethodGet, "/api/admin/resets/due", nil, bearer(token(t, uuid.New(), "OPS@a2z.test")))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("resets one account by role", func(t *testing.T) {
		auth := bearer(token(t, admin.ID, admin.Email))

		resp, body := ts.do(t, http.MethodPost, "/api/admin/resets/"+regular.ID.String(), nil, auth)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out dto.ResetAccountResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.False(t, out.Reset)

		resp, body = ts.do(t, http.MethodPost, "/api/admin/resets/"+due.ID.String(), nil, auth)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, json.Unmarshal(body, &out))
		assert.True(t, out.Reset)

		resp, _ = ts.do(t, http.MethodPost, "/api/admin/resets/bogus", nil, auth)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("lists runs", func(t *testing.T) {
		resp, _ := ts.do(t, http.MethodPost, "/api/cron/free-reset", nil, bearer(testCronSecret))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, body := ts.do(t, http.MethodGet, "/api/admin/resets/runs?limit=5", nil, map[string]string{"X-Admin-Token": testAdminToken})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			Runs []dto.ResetRunResponse `json:"runs"`
		}
		require.NoError(t, json.Unmarshal(body, &out))
		require.Len(t, out.Runs, 1)
		assert.Equal(t, models.TriggerCron, out.Runs[0].Trigger)
	})
}
