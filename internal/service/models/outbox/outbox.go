package outbox

import (
	"time"
)

const defaultMaxRetries = 5

// Message is a change event that could not be published and waits for the outbox worker.
type Message struct {
	ID           int64     `db:"id"`
	OrderID      string    `db:"order_id"`
	ExchangeName string    `db:"exchange_name"`
	RoutingKey   string    `db:"routing_key"`
	Payload      []byte    `db:"payload"`
	ContentType  string    `db:"content_type"`
	RetryCount   int       `db:"retry_count"`
	MaxRetries   int       `db:"max_retries"`
	LastError    string    `db:"last_error"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	NextRetryAt  time.Time `db:"next_retry_at"`
}

// NewMessage builds a message due for its first retry at now.
func NewMessage(orderID, exchange string, payload []byte, cause error, now time.Time) Message {
	lastError := ""
	if cause != nil {
		lastError = cause.Error()
	}

	return Message{
		OrderID:      orderID,
		ExchangeName: exchange,
		Payload:      payload,
		ContentType:  "application/json",
		MaxRetries:   defaultMaxRetries,
		LastError:    lastError,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	}
}

// Backoff returns the delay before retry number n: 30s, 60s, 120s and so on.
func Backoff(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	if n > 10 {
		n = 10
	}

	return time.Duration(1<<(n-1)) * 30 * time.Second
}
