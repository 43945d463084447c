//go:build integration

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/inn-guest-registry/internal/config"
	"github.com/iliyamo/inn-guest-registry/internal/logger"
	"github.com/iliyamo/inn-guest-registry/internal/middleware"
	"github.com/iliyamo/inn-guest-registry/internal/testutil/containers"
)

func TestRedisMiddleware(t *testing.T) {
	rc := containers.NewRedis(t)
	ctx := context.Background()

	t.Run("rate limit rejects after capacity", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		cfg := config.RateLimitConfig{
			Enabled:        true,
			Capacity:       3,
			RefillTokens:   1,
			RefillInterval: time.Minute,
			TTL:            10 * time.Minute,
			KeyStrategy:    "ip_route",
			Prefix:         "test:rl",
		}
		e := echo.New()
		e.POST("/v1/auth/login", func(c echo.Context) error {
			return c.NoContent(http.StatusNoContent)
		}, middleware.RateLimit(cfg, rc.Client, logger.Discard()))

		do := func() *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
			req.RemoteAddr = "203.0.113.7:5000"
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			return rec
		}
		for i := 0; i < cfg.Capacity; i++ {
			rec := do()
			require.Equal(t, http.StatusNoContent, rec.Code, "attempt %d", i+1)
			assert.Equal(t, strconv.Itoa(cfg.Capacity-i-1), rec.Header().Get("X-RateLimit-Remaining"))
		}
		rec := do()
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
		require.NoError(t, err)
		assert.Greater(t, retry, 0)
	})

	t.Run("cache hits until a write bumps the generation", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		cfg := config.CacheConfig{
			Enabled:      true,
			Methods:      map[string]bool{http.MethodGet: true},
			TTL:          time.Minute,
			Prefix:       "test:cache",
			MaxBodyBytes: 1 << 20,
		}
		version := 1
		e := echo.New()
		g := e.Group("/v1", middleware.ResponseCache(cfg, rc.Client, logger.Discard()))
		g.GET("/guests", func(c echo.Context) error {
			return c.JSON(http.StatusOK, echo.Map{"version": version})
		})
		g.POST("/guests", func(c echo.Context) error {
			version++
			return c.NoContent(http.StatusCreated)
		})
		g.PUT("/guests/broken", func(c echo.Context) error {
			return c.NoContent(http.StatusBadRequest)
		})

		get := func() *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/guests", nil))
			return rec
		}

		first := get()
		require.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

		version = 99 // hidden by the cached copy
		second := get()
		assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
		assert.JSONEq(t, first.Body.String(), second.Body.String())

		// a failed write leaves the cache alone
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/guests/broken", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "HIT", get().Header().Get("X-Cache"))

		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/guests", nil))
		require.Equal(t, http.StatusCreated, rec.Code)

		third := get()
		assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
		assert.JSONEq(t, `{"version":100}`, third.Body.String())
	})
}
