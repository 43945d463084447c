package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/inn-guest-registry/internal/auth"
	"github.com/iliyamo/inn-guest-registry/internal/config"
	"github.com/iliyamo/inn-guest-registry/internal/database"
	"github.com/iliyamo/inn-guest-registry/internal/handler"
	"github.com/iliyamo/inn-guest-registry/internal/logger"
	"github.com/iliyamo/inn-guest-registry/internal/metrics"
	"github.com/iliyamo/inn-guest-registry/internal/registry"
	"github.com/iliyamo/inn-guest-registry/internal/repository"
	"github.com/iliyamo/inn-guest-registry/internal/repository/memory"
	"github.com/iliyamo/inn-guest-registry/internal/router"
	"github.com/iliyamo/inn-guest-registry/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// backend is the store pair selected by APP_STORE.
type backend struct {
	registry registry.Store
	admins   auth.AdminStore
	db       handler.Pinger
	close    func()
}

func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (backend, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store; data is lost on exit")
		st := memory.New()
		if cfg.AdminLogin != "" {
			if _, err := auth.Provision(ctx, st, cfg.AdminLogin, cfg.AdminPassword, cfg.BcryptCost); err != nil {
				return backend{}, fmt.Errorf("provision admin: %w", err)
			}
		} else {
			log.Warn("ADMIN_LOGIN not set; nobody can log in to the in-memory store")
		}
		return backend{registry: st, admins: st, close: func() {}}, nil
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return backend{}, fmt.Errorf("open database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db, database.Up); err != nil {
			_ = db.Close()
			return backend{}, fmt.Errorf("migrate: %w", err)
		}
		v, _, _ := database.Version(db)
		log.Info("schema up to date", "version", v)
	}
	st := repository.NewStore(db)
	return backend{registry: st, admins: st, db: db, close: func() { _ = db.Close() }}, nil
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer be.close()

	m := metrics.New(prometheus.DefaultRegisterer)
	opts := []registry.Option{registry.WithMetrics(m), registry.WithLogger(log)}
	if cfg.AMQPURL != "" {
		opts = append(opts, registry.WithEvents(service.NewQueuePublisher(cfg.AMQPURL)))
	} else {
		log.Info("AMQP_URL not set; registry events are not published")
	}
	svc := registry.NewService(be.registry, opts...)

	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		log.Warn("redis unavailable; rate limiting and response cache disabled", "error", err)
	} else {
		defer rdb.Close()
	}

	gate := auth.NewGate(auth.NewCredentials(be.admins), auth.NewSessions(cfg.JWTSecret))
	e := router.New(router.Deps{
		Auth:      handler.NewAuthHandler(gate, m, !cfg.IsDev()),
		Registry:  handler.NewRegistryHandler(svc),
		Sessions:  gate,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		DB:        be.db,
		Gatherer:  prometheus.DefaultGatherer,
		Log:       log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info("listening", "addr", addr, "env", cfg.Env, "store", cfg.Store)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return e.Shutdown(sctx)
	})
	return g.Wait()
}
