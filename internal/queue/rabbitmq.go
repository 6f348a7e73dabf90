package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/givehope/donation-api/internal/events"
)

const (
	// DefaultExchangeName is the exchange bridge events flow through.
	DefaultExchangeName = "donation_events"
	// DefaultQueueName is the queue the notifier consumes.
	DefaultQueueName = "notification_events"
	// DefaultDLQName holds events the notifier refused (bad payloads).
	DefaultDLQName = "notification_events_dlq"

	routingKeyEvents = "events"
	routingKeyDLQ    = "dlq"
)

// Delivery is a consumed event with its broker acknowledgement handle.
type Delivery struct {
	event       events.Event
	deliveryTag uint64
	channel     *amqp.Channel
}

// GetEvent returns the decoded event.
func (d *Delivery) GetEvent() events.Event { return d.event }

// Ack acknowledges the delivery.
func (d *Delivery) Ack() error {
	if d.channel == nil {
		return nil
	}
	return d.channel.Ack(d.deliveryTag, false)
}

// Nack negatively acknowledges the delivery. With requeue false the broker
// dead-letters it.
func (d *Delivery) Nack(requeue bool) error {
	if d.channel == nil {
		return nil
	}
	return d.channel.Nack(d.deliveryTag, false, requeue)
}

// NewTestDelivery builds a broker-less delivery whose Ack and Nack are
// no-ops. For tests.
func NewTestDelivery(ev events.Event) *Delivery {
	return &Delivery{event: ev}
}

// RabbitMQQueue implements EventQueue over RabbitMQ with a dead-letter
// queue for events the consumer refuses.
type RabbitMQQueue struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	exchangeName string
	queueName    string
	dlqName      string
}

// NewRabbitMQQueue connects and declares the exchange, queue and DLQ.
func NewRabbitMQQueue(amqpURL string) (*RabbitMQQueue, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q := &RabbitMQQueue{
		conn:         conn,
		channel:      ch,
		exchangeName: DefaultExchangeName,
		queueName:    DefaultQueueName,
		dlqName:      DefaultDLQName,
	}
	if err := q.setup(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("setup queues: %w", err)
	}
	return q, nil
}

func (q *RabbitMQQueue) setup() error {
	err := q.channel.ExchangeDeclare(
		q.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := q.channel.QueueDeclare(q.dlqName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := q.channel.QueueBind(q.dlqName, routingKeyDLQ, q.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}

	queueArgs := amqp.Table{
		"x-dead-letter-exchange":    q.exchangeName,
		"x-dead-letter-routing-key": routingKeyDLQ,
	}
	if _, err := q.channel.QueueDeclare(q.queueName, true, false, false, false, queueArgs); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := q.channel.QueueBind(q.queueName, routingKeyEvents, q.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish places an event on the exchange as a persistent message.
func (q *RabbitMQQueue) Publish(ctx context.Context, ev events.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = q.channel.PublishWithContext(
		ctx,
		q.exchangeName,
		routingKeyEvents,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.ID.String(),
			Type:         string(ev.Signal),
			Timestamp:    ev.Timestamp,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Signal, err)
	}
	return nil
}

// Consume returns a channel of deliveries on a dedicated consumer channel
// with manual acknowledgement. Undecodable messages are dead-lettered.
func (q *RabbitMQQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *Delivery, <-chan error, error) {
	consumeCh, err := q.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("create consumer channel: %w", err)
	}

	if err := consumeCh.Qos(prefetchCount, 0, false); err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("set QoS: %w", err)
	}

	deliveries, err := consumeCh.Consume(
		q.queueName,
		"",    // consumer tag
		false, // auto-ack off; consumers ack explicitly
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("start consuming: %w", err)
	}

	out := make(chan *Delivery, prefetchCount)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)
		defer func() { _ = consumeCh.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					errCh <- fmt.Errorf("delivery channel closed")
					return
				}
				var ev events.Event
				if err := json.Unmarshal(d.Body, &ev); err != nil {
					// Undecodable; send to the DLQ instead of
					// looping forever.
					_ = consumeCh.Nack(d.DeliveryTag, false, false)
					continue
				}
				out <- &Delivery{event: ev, deliveryTag: d.DeliveryTag, channel: consumeCh}
			}
		}
	}()

	return out, errCh, nil
}

// Close closes the channel and connection.
func (q *RabbitMQQueue) Close() error {
	if q.channel != nil {
		_ = q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

// HealthCheck verifies the connection is open.
func (q *RabbitMQQueue) HealthCheck(ctx context.Context) error {
	if q.conn == nil || q.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection closed")
	}
	return nil
}
