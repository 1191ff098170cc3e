package ichangefeedrepo

import (
	"context"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/changeevent"
)

// IChangeFeedRepository publishes order changes to every subscribed session.
type IChangeFeedRepository interface {
	// Publish sends ev and returns the encoded payload, also on failure, so it can be kept in the outbox.
	Publish(ctx context.Context, ev changeevent.Event) ([]byte, error)
	// PublishRaw resends an already encoded event.
	PublishRaw(ctx context.Context, payload []byte, contentType string) error
	Exchange() string
}
