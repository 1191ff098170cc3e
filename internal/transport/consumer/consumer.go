// Package consumer delivers change feed events to one session's order store.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/dal/rabbitmq"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/changeevent"
	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ErrFeedClosed is recorded when the broker ends a subscription.
var ErrFeedClosed = errors.New("change feed closed by broker")

const shutdownTimeout = 10 * time.Second

// target is the order store events are reconciled into.
type target interface {
	ApplyRemote(ctx context.Context, ev changeevent.Event) error
	MarkDegraded(err error)
}

// Subscriber opens per-session subscriptions on the change feed exchange.
type Subscriber struct {
	client   *rabbitmq.Client
	exchange string
}

// NewSubscriber creates a Subscriber for exchange.
func NewSubscriber(client *rabbitmq.Client, exchange string) *Subscriber {
	return &Subscriber{
		client:   client,
		exchange: exchange,
	}
}

// Subscribe binds a private queue to the exchange and starts delivering its
// events to t in order. The queue is removed when the subscription closes.
func (s *Subscriber) Subscribe(ctx context.Context, t target) (*Subscription, error) {
	ch, err := s.client.NewChannel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := rabbitmq.DeclareFanoutExchange(ch, s.exchange); err != nil {
		_ = ch.Close()

		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := rabbitmq.DeclareQueue(ch, rabbitmq.DeclareQueueConfig{
		Name:       "",
		Durable:    false,
		AutoDelete: true,
		Exclusive:  true,
	})
	if err != nil {
		_ = ch.Close()

		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(queue.Name, "", s.exchange, false, nil); err != nil {
		_ = ch.Close()

		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	tag := "meatshop-" + uuid.NewString()
	msgs, err := rabbitmq.Consume(ch, rabbitmq.ConsumeConfig{
		Queue:     queue.Name,
		Consumer:  tag,
		Exclusive: true,
	})
	if err != nil {
		_ = ch.Close()

		return nil, fmt.Errorf("failed to consume queue: %w", err)
	}

	sub := newSubscription(t)
	sub.ch = ch
	sub.tag = tag

	t.MarkDegraded(nil)
	go sub.run(context.WithoutCancel(ctx), msgs)

	slog.Info("Change feed subscribed", "queue", queue.Name, "consumer_tag", tag)

	return sub, nil
}

// Subscription is one session's live feed.
type Subscription struct {
	target target
	ch     *amqp.Channel
	tag    string
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newSubscription(t target) *Subscription {
	return &Subscription{
		target: t,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (s *Subscription) run(ctx context.Context, msgs <-chan amqp.Delivery) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case msg, ok := <-msgs:
			if !ok {
				select {
				case <-s.stop:
				default:
					slog.Warn("Change feed closed", "consumer_tag", s.tag)
					s.target.MarkDegraded(ErrFeedClosed)
				}

				return
			}
			s.processMessage(ctx, msg)
		}
	}
}

// processMessage applies one event. Events that cannot be read or applied are
// dropped, since redelivery would fail the same way.
func (s *Subscription) processMessage(ctx context.Context, msg amqp.Delivery) {
	ctx, span := otel.Tracer("consumer").Start(ctx, "Subscription.processMessage")
	defer span.End()

	var ev changeevent.Event
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		slog.Error("Failed to unmarshal change event", "error", err)
		if err := msg.Nack(false, false); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return
	}
	span.SetAttributes(
		attribute.String("event.type", string(ev.Type)),
		attribute.String("order.id", ev.OrderID()),
	)

	if err := s.target.ApplyRemote(ctx, ev); err != nil {
		slog.Error("Failed to apply change event", "error", err, "order_id", ev.OrderID(), "event_type", ev.Type)
		if err := msg.Nack(false, false); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return
	}

	if err := msg.Ack(false); err != nil {
		slog.Error("Failed to ack message", "error", err)
	}
}

// Close stops delivery and releases the channel. Safe to call more than once.
func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stop)

		select {
		case <-s.done:
		case <-time.After(shutdownTimeout):
			slog.Warn("Change feed subscription shutdown timeout", "consumer_tag", s.tag)
		}

		if s.ch == nil {
			return
		}
		if cerr := s.ch.Cancel(s.tag, false); cerr != nil {
			slog.Warn("Failed to cancel consumer", "consumer_tag", s.tag, "error", cerr)
		}
		err = s.ch.Close()
		slog.Info("Change feed unsubscribed", "consumer_tag", s.tag)
	})

	return err
}
