// Package service holds adapters that connect the registry to external
// services.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/inn-guest-registry/internal/queue"
)

// QueuePublisher publishes registry events to RabbitMQ.  Every publish dials
// its own connection, so a broker restart never leaves a stale channel
// behind.
type QueuePublisher struct {
	url   string
	queue string
	dial  func(ctx context.Context, url string) (*amqp.Connection, error)
}

// NewQueuePublisher returns a publisher for the registry events queue at url.
func NewQueuePublisher(url string) *QueuePublisher {
	return &QueuePublisher{url: url, queue: queue.RegistryQueueName, dial: dialContext}
}

// defaultDialTimeout applies when the publish context has no deadline.
const defaultDialTimeout = 5 * time.Second

// dialContext connects to url, bounding the TCP connect and the AMQP
// handshake by the deadline of ctx.
func dialContext(ctx context.Context, url string) (*amqp.Connection, error) {
	timeout := defaultDialTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// Publish implements registry.EventPublisher.  Messages are persistent and
// routed through the default exchange straight to the durable queue.
func (p *QueuePublisher) Publish(ctx context.Context, ev queue.RegistryEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := p.dial(ctx, p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}
