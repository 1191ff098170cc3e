package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/dal/interfaces/ichangefeedrepo"
	"github.com/corray333/backend-labs/meatshop/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/outbox"
	"github.com/spf13/viper"
)

// Worker republishes change events that could not be broadcast at commit time.
type Worker struct {
	outboxRepo   ioutboxrepo.IOutboxRepository
	changeFeed   ichangefeedrepo.IChangeFeedRepository
	pollInterval time.Duration
	batchSize    int
	now          func() time.Time
	stopCh       chan struct{}
}

// NewWorker creates a new outbox worker.
func NewWorker(
	outboxRepo ioutboxrepo.IOutboxRepository,
	changeFeed ichangefeedrepo.IChangeFeedRepository,
) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	return &Worker{
		outboxRepo:   outboxRepo,
		changeFeed:   changeFeed,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		now:          time.Now,
		stopCh:       make(chan struct{}),
	}
}

// Start processes the outbox until ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.processMessages(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) processMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetPendingMessages(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending messages from outbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Processing outbox messages", "count", len(messages))

	for _, msg := range messages {
		w.process(ctx, msg)
	}
}

func (w *Worker) process(ctx context.Context, msg outbox.Message) {
	if err := w.changeFeed.PublishRaw(ctx, msg.Payload, msg.ContentType); err != nil {
		retries := msg.RetryCount + 1
		nextRetryAt := w.now().Add(outbox.Backoff(retries))

		slog.Warn("Failed to publish change event from outbox, will retry",
			"outbox_id", msg.ID,
			"order_id", msg.OrderID,
			"retry_count", retries,
			"next_retry", nextRetryAt,
			"error", err,
		)

		if err := w.outboxRepo.UpdateRetry(ctx, msg.ID, retries, err.Error(), nextRetryAt); err != nil {
			slog.Error("Failed to update retry information", "outbox_id", msg.ID, "error", err)
		}

		return
	}

	if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
		slog.Error("Failed to delete message from outbox after successful publish",
			"outbox_id", msg.ID,
			"error", err,
		)

		return
	}

	slog.Info("Change event published from outbox", "outbox_id", msg.ID, "order_id", msg.OrderID)
}
