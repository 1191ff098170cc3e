package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/changeevent"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
)

const defaultExchange = "meatshop.orders"

// publisher is the part of the RabbitMQ client the change feed needs.
type publisher interface {
	DeclareFanoutExchange(name string) error
	Publish(exchange, routingKey string, msg amqp.Publishing) error
}

// ChangeFeedRabbitMQRepository broadcasts order changes on a fanout exchange.
type ChangeFeedRabbitMQRepository struct {
	client   publisher
	exchange string
}

// ExchangeName returns the configured change feed exchange.
func ExchangeName() string {
	if name := viper.GetString("rabbitmq.changefeed.exchange"); name != "" {
		return name
	}

	return defaultExchange
}

// NewChangeFeedRabbitMQRepository declares the exchange and returns the publisher.
func NewChangeFeedRabbitMQRepository(client publisher) *ChangeFeedRabbitMQRepository {
	exchange := ExchangeName()
	if err := client.DeclareFanoutExchange(exchange); err != nil {
		panic(err)
	}

	return &ChangeFeedRabbitMQRepository{
		client:   client,
		exchange: exchange,
	}
}

// Exchange returns the exchange events are published to.
func (r *ChangeFeedRabbitMQRepository) Exchange() string {
	return r.exchange
}

// Publish encodes and sends ev. The payload is returned even when sending fails.
func (r *ChangeFeedRabbitMQRepository) Publish(ctx context.Context, ev changeevent.Event) ([]byte, error) {
	if ev.CommitTS.IsZero() {
		ev.CommitTS = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal change event: %w", err)
	}

	return payload, r.PublishRaw(ctx, payload, "application/json")
}

// PublishRaw sends an already encoded event.
func (r *ChangeFeedRabbitMQRepository) PublishRaw(ctx context.Context, payload []byte, contentType string) error {
	_, span := otel.Tracer("changefeed").Start(ctx, "ChangeFeed.Publish")
	defer span.End()

	err := r.client.Publish(r.exchange, "", amqp.Publishing{
		ContentType:  contentType,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}

	return nil
}
