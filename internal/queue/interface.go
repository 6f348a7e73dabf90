package queue

import (
	"context"

	"github.com/givehope/donation-api/internal/events"
)

// DeliveryInterface is a consumed event awaiting acknowledgement. The
// interface exists so workers can be tested without a broker.
type DeliveryInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetEvent() events.Event
}

// EventQueue is a durable transport for bridge events between processes.
// Implementations also satisfy events.Bus on the producer side.
type EventQueue interface {
	// Publish places an event on the queue.
	Publish(ctx context.Context, ev events.Event) error

	// Consume returns a channel of deliveries. The caller must Ack or
	// Nack each one. Prefetch bounds the unacknowledged deliveries one
	// consumer holds. The channels close when ctx is cancelled or the
	// connection fails.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Delivery, <-chan error, error)

	// Close closes the queue connection.
	Close() error

	// HealthCheck verifies the connection is healthy.
	HealthCheck(ctx context.Context) error
}
