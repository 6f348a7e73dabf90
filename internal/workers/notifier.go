package workers

import (
	"context"

	"go.uber.org/zap"

	"github.com/givehope/donation-api/internal/events"
	"github.com/givehope/donation-api/internal/queue"
)

// DefaultPrefetch bounds the unacknowledged deliveries one notifier holds.
const DefaultPrefetch = 10

// Notifier consumes bridge events from the queue and turns them into
// notifications. Events the bridge rejects go to the dead letter queue.
type Notifier struct {
	queue    queue.EventQueue
	bridge   *events.Bridge
	prefetch int
	log      *zap.Logger
}

// NewNotifier creates a new notifier worker
func NewNotifier(q queue.EventQueue, bridge *events.Bridge, prefetch int, log *zap.Logger) *Notifier {
	if prefetch <= 0 {
		prefetch = DefaultPrefetch
	}
	return &Notifier{
		queue:    q,
		bridge:   bridge,
		prefetch: prefetch,
		log:      log,
	}
}

// Run consumes events until ctx is cancelled or the queue connection
// fails.
func (n *Notifier) Run(ctx context.Context) error {
	deliveries, errs, err := n.queue.Consume(ctx, n.prefetch)
	if err != nil {
		return err
	}

	n.log.Info("notifier_started", zap.Int("prefetch", n.prefetch))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			n.log.Error("queue_consumer_error", zap.Error(err))

		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			n.handle(delivery)
		}
	}
}

// handle bridges one delivery. DeliveryInterface keeps this testable
// without a broker.
func (n *Notifier) handle(delivery queue.DeliveryInterface) {
	ev := delivery.GetEvent()

	if err := n.bridge.Handle(ev); err != nil {
		n.log.Warn("event_rejected",
			zap.String("signal", string(ev.Signal)),
			zap.String("event_id", ev.ID.String()),
			zap.Error(err),
		)
		// No requeue: a rejected payload will never become valid
		if nackErr := delivery.Nack(false); nackErr != nil {
			n.log.Error("failed_to_nack_event", zap.Error(nackErr))
		}
		return
	}

	if err := delivery.Ack(); err != nil {
		n.log.Error("failed_to_ack_event",
			zap.String("event_id", ev.ID.String()),
			zap.Error(err),
		)
	}
}
