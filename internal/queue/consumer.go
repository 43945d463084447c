package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultAuditLog is where the worker appends one line per registry event.
const DefaultAuditLog = "logs/registry.log"

// Consumer reads registry events from RabbitMQ and appends them to an audit
// log file.
type Consumer struct {
	URL     string
	LogPath string
	Log     *slog.Logger
}

// Run connects, declares the durable registry queue and consumes until ctx is
// cancelled.  Broker failures trigger a reconnect with exponential backoff
// capped at 30 seconds.  Malformed messages are rejected without requeue so
// they cannot loop.
func (c *Consumer) Run(ctx context.Context) error {
	log := c.Log
	if log == nil {
		log = slog.Default()
	}
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return nil
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Warn("registry consumer: dial failed", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		log.Warn("registry consumer: consume loop ended; reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection, log *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("registry consumer: set QoS failed", "error", err)
	}
	if _, err := ch.QueueDeclare(RegistryQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(RegistryQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	path := c.LogPath
	if path == "" {
		path = DefaultAuditLog
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleMessage(path, d.Body); err != nil {
				log.Error("registry consumer: handle message failed", "error", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one event and appends its audit line to path,
// creating the directory when needed.
func HandleMessage(path string, body []byte) error {
	var ev RegistryEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.GuestID == "" {
		return errors.New("event without type or guest id")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev) + "\n"); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single human-readable audit line.
func FormatLine(ev RegistryEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | guest_id=%s", ev.OccurredAt, ev.Type, ev.GuestID)
	if ev.GuestName != "" {
		fmt.Fprintf(&b, " | guest=%q", ev.GuestName)
	}
	if ev.StayID != "" {
		fmt.Fprintf(&b, " | stay_id=%s | status=%s | dates=%s..%s", ev.StayID, ev.StayStatus, ev.CheckIn, ev.CheckOut)
	}
	if len(ev.Superseded) > 0 {
		fmt.Fprintf(&b, " | superseded=[%s]", strings.Join(ev.Superseded, ","))
	}
	return b.String()
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
