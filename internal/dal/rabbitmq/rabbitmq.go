package rabbitmq

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/streadway/amqp"
)

// Client represents a RabbitMQ client.
// The shared channel publishes; subscribers open their own channels.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel

	// publishMu serializes use of the shared channel, which is not goroutine safe for publishing.
	publishMu sync.Mutex
}

// Channel returns the shared AMQP channel.
func (r *Client) Channel() *amqp.Channel {
	return r.channel
}

// Connection returns the underlying AMQP connection.
func (r *Client) Connection() *amqp.Connection {
	return r.conn
}

// NewChannel opens a dedicated channel on the connection.
func (r *Client) NewChannel() (*amqp.Channel, error) {
	return r.conn.Channel()
}

// Close closes the channel and connection for graceful shutdown.
func (r *Client) Close() error {
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			return err
		}
	}
	if r.conn != nil {
		return r.conn.Close()
	}

	return nil
}

// MustNewClient creates a new RabbitMQ client.
func MustNewClient() *Client {
	host := os.Getenv("RABBITMQ_HOST")
	if host == "" {
		host = "rabbitmq"
	}

	connStr := fmt.Sprintf(
		"amqp://%s:%s@%s:5672/",
		os.Getenv("RABBITMQ_DEFAULT_USER"),
		os.Getenv("RABBITMQ_DEFAULT_PASS"),
		host,
	)

	conn, err := amqp.Dial(connStr)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to RabbitMQ: %v", err))
	}

	channel, err := conn.Channel()
	if err != nil {
		err := conn.Close()
		if err != nil {
			panic(fmt.Sprintf("Failed to close a connection: %v", err))
		}
		panic(fmt.Sprintf("Failed to open a channel: %v", err))
	}

	slog.Info("RabbitMQ connected", "host", host)

	return &Client{
		conn:    conn,
		channel: channel,
	}
}

// DeclareFanoutExchange declares a durable fanout exchange on the shared channel.
func (r *Client) DeclareFanoutExchange(name string) error {
	return DeclareFanoutExchange(r.channel, name)
}

// DeclareFanoutExchange declares a durable fanout exchange on ch.
func DeclareFanoutExchange(ch *amqp.Channel, name string) error {
	return ch.ExchangeDeclare(
		name,
		amqp.ExchangeFanout,
		true,
		false,
		false,
		false,
		nil,
	)
}

// Publish sends one message on the shared channel.
func (r *Client) Publish(exchange, routingKey string, msg amqp.Publishing) error {
	r.publishMu.Lock()
	defer r.publishMu.Unlock()

	return r.channel.Publish(exchange, routingKey, false, false, msg)
}

type DeclareQueueConfig struct {
	Name       string
	Durable    bool
	AutoDelete bool
	Exclusive  bool
	NoWait     bool
	Args       amqp.Table
}

// DeclareQueue declares a queue with the given configuration on ch.
func DeclareQueue(ch *amqp.Channel, cfg DeclareQueueConfig) (amqp.Queue, error) {
	return ch.QueueDeclare(
		cfg.Name,
		cfg.Durable,
		cfg.AutoDelete,
		cfg.Exclusive,
		cfg.NoWait,
		cfg.Args,
	)
}

type ConsumeConfig struct {
	Queue     string
	Consumer  string
	AutoAck   bool
	Exclusive bool
	NoLocal   bool
	NoWait    bool
	Args      amqp.Table
}

// Consume starts consuming messages from the queue on ch.
func Consume(ch *amqp.Channel, cfg ConsumeConfig) (<-chan amqp.Delivery, error) {
	return ch.Consume(
		cfg.Queue,
		cfg.Consumer,
		cfg.AutoAck,
		cfg.Exclusive,
		cfg.NoLocal,
		cfg.NoWait,
		cfg.Args,
	)
}
