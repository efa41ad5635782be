package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/example/storefront/internal/utils"
)

func TestAdminAuth(t *testing.T) {
	adminID := uuid.New()
	app := fiber.New()
	app.Get("/admin", AdminAuth("secret"), func(c *fiber.Ctx) error {
		id, ok := CurrentAdminID(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(id.String())
	})

	valid, err := utils.GenerateToken("secret", adminID, "owner@example.com", time.Hour)
	require.NoError(t, err)
	forged, err := utils.GenerateToken("other-secret", adminID, "owner@example.com", time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + forged, http.StatusUnauthorized},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	app := fiber.New()
	app.Post("/orders", limiter.Handler(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })

	var statuses []int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/orders", nil), -1)
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, statuses)

	assert.Same(t, limiter.Limiter("10.0.0.1"), limiter.Limiter("10.0.0.1"))
	assert.NotSame(t, limiter.Limiter("10.0.0.1"), limiter.Limiter("10.0.0.2"))
}

func TestRateLimiterEvictsIdleIPs(t *testing.T) {
	limiter := NewRateLimiter(60, 1)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }
	limiter.lastSweep = clock

	first := limiter.Limiter("10.0.0.1")
	limiter.Limiter("10.0.0.2")
	assert.Equal(t, 2, limiter.Size())

	clock = clock.Add(idleTTL / 2)
	limiter.Limiter("10.0.0.2")

	clock = clock.Add(idleTTL/2 + time.Second)
	limiter.Limiter("10.0.0.3")
	assert.Equal(t, 2, limiter.Size(), "10.0.0.1 idle past the TTL is dropped")

	assert.NotSame(t, first, limiter.Limiter("10.0.0.1"))
	assert.Equal(t, 3, limiter.Size())
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"success": false, "error": err.Error()})
		},
	})
	app.Use(requestid.New())
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("fine") })
	app.Get("/fail", func(c *fiber.Ctx) error { return errors.New("upstream down") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ok", entries[0].ContextMap()["path"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusBadGateway), entries[1].ContextMap()["status"])
}
