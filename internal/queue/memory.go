package queue

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/givehope/donation-api/internal/events"
)

// MemoryBus dispatches events synchronously to in-process subscribers. Used
// when the API and notifier run in one process and no broker is configured.
// A failing subscriber is logged and does not stop delivery to the others.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers []func(events.Event) error
	log      *zap.Logger
}

// NewMemoryBus creates an empty bus.
func NewMemoryBus(log *zap.Logger) *MemoryBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &MemoryBus{log: log}
}

// Subscribe registers a handler for every published event.
func (b *MemoryBus) Subscribe(handler func(events.Event) error) {
	b.mu.Lock()
	b.handlers = append(b.handlers, handler)
	b.mu.Unlock()
}

// Publish delivers the event to all subscribers in registration order.
func (b *MemoryBus) Publish(ctx context.Context, ev events.Event) error {
	b.mu.RLock()
	handlers := make([]func(events.Event) error, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ev); err != nil {
			b.log.Warn("event_handler_failed",
				zap.String("signal", string(ev.Signal)),
				zap.Error(err),
			)
		}
	}
	return nil
}

var _ events.Bus = (*MemoryBus)(nil)
