// Command worker consumes registry events from RabbitMQ and appends an audit
// line per event to AUDIT_LOG_PATH (default logs/registry.log).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/inn-guest-registry/internal/config"
	"github.com/iliyamo/inn-guest-registry/internal/logger"
	"github.com/iliyamo/inn-guest-registry/internal/queue"
)

func main() {
	cfg := config.LoadWorkerConfig()
	log := logger.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("registry worker started", "queue", queue.RegistryQueueName, "audit_log", cfg.AuditLog)
	c := &queue.Consumer{URL: cfg.AMQPURL, LogPath: cfg.AuditLog, Log: log}
	if err := c.Run(ctx); err != nil {
		log.Error("registry worker stopped", "error", err)
		os.Exit(1)
	}
	log.Info("registry worker stopped")
}
