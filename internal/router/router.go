// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/inn-guest-registry/internal/config"
	"github.com/iliyamo/inn-guest-registry/internal/handler"
	"github.com/iliyamo/inn-guest-registry/internal/middleware"
)

// Deps is everything the HTTP surface needs.  Redis, DB and Gatherer may be
// nil: without Redis rate limiting and caching are off, without DB /readyz
// only reports the process, and without Gatherer /metrics is not mounted.
type Deps struct {
	Auth      *handler.AuthHandler
	Registry  *handler.RegistryHandler
	Sessions  middleware.SessionVerifier
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	DB        handler.Pinger
	Gatherer  prometheus.Gatherer
	Log       *slog.Logger
}

// New builds the echo instance with every route registered.
func New(d Deps) *echo.Echo {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.ContextLogger(log))
	e.Use(middleware.AccessLog(log))

	RegisterRoutes(e, d)
	RegisterAuth(e, d, log)
	RegisterRegistry(e, d, log)
	return e
}

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(d.DB))
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
}

// RegisterAuth registers /v1/auth.  Login is rate limited; verify needs a
// valid session.
func RegisterAuth(e *echo.Echo, d Deps, log *slog.Logger) {
	g := e.Group("/v1/auth")
	g.POST("/login", d.Auth.Login, middleware.RateLimit(d.RateLimit, d.Redis, log))
	g.POST("/logout", d.Auth.Logout)
	g.GET("/verify", d.Auth.Verify, middleware.SessionGate(d.Sessions))
}

// RegisterRegistry registers the guest and stay endpoints.  Every route sits
// behind the session gate; reads are cached and writes invalidate the cache.
func RegisterRegistry(e *echo.Echo, d Deps, log *slog.Logger) {
	g := e.Group("/v1")
	g.Use(middleware.SessionGate(d.Sessions))
	g.Use(middleware.ResponseCache(d.Cache, d.Redis, log))

	r := d.Registry
	g.POST("/guests", r.RegisterGuest)
	g.GET("/guests", r.ListGuests)
	g.GET("/guests/search", r.SearchGuests)
	g.GET("/guests/export", r.ExportGuests)
	g.GET("/guests/:id", r.GetGuest)
	g.PUT("/guests/:id", r.UpdateGuest)
	g.POST("/guests/:id/stays", r.CheckIn)

	g.POST("/stays", r.CheckInByBody)
	g.GET("/stays/:id", r.GetStay)
	g.PUT("/stays/:id", r.AmendStay)
	g.DELETE("/stays/:id", r.CancelStay)
}
