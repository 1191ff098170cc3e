package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/changeevent"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/outbox"
	"github.com/stretchr/testify/mock"
)

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Insert(ctx context.Context, msg outbox.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockOutboxRepo) GetPendingMessages(ctx context.Context, limit int) ([]outbox.Message, error) {
	args := m.Called(ctx, limit)

	return args.Get(0).([]outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOutboxRepo) UpdateRetry(ctx context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error {
	return m.Called(ctx, id, retryCount, lastError, nextRetryAt).Error(0)
}

type mockFeed struct {
	mock.Mock
}

func (m *mockFeed) Publish(ctx context.Context, ev changeevent.Event) ([]byte, error) {
	args := m.Called(ctx, ev)

	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockFeed) PublishRaw(ctx context.Context, payload []byte, contentType string) error {
	return m.Called(ctx, payload, contentType).Error(0)
}

func (m *mockFeed) Exchange() string {
	return "meatshop.orders"
}

func TestProcessMessages(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	ok := outbox.Message{ID: 1, OrderID: "a", Payload: []byte(`{"eventType":"INSERT"}`), ContentType: "application/json"}
	bad := outbox.Message{ID: 2, OrderID: "b", Payload: []byte(`{"eventType":"UPDATE"}`), ContentType: "application/json", RetryCount: 1}

	repo := &mockOutboxRepo{}
	feed := &mockFeed{}

	repo.On("GetPendingMessages", ctx, 100).Return([]outbox.Message{ok, bad}, nil)
	feed.On("PublishRaw", ctx, ok.Payload, "application/json").Return(nil)
	feed.On("PublishRaw", ctx, bad.Payload, "application/json").Return(errors.New("channel closed"))
	repo.On("Delete", ctx, int64(1)).Return(nil)
	repo.On("UpdateRetry", ctx, int64(2), 2, "channel closed", now.Add(time.Minute)).Return(nil)

	w := &Worker{outboxRepo: repo, changeFeed: feed, batchSize: 100, now: func() time.Time { return now }}
	w.processMessages(ctx)

	repo.AssertExpectations(t)
	feed.AssertExpectations(t)
}

func TestProcessMessagesListFailure(t *testing.T) {
	ctx := context.Background()

	repo := &mockOutboxRepo{}
	feed := &mockFeed{}
	repo.On("GetPendingMessages", ctx, 10).Return([]outbox.Message(nil), errors.New("db down"))

	w := &Worker{outboxRepo: repo, changeFeed: feed, batchSize: 10, now: time.Now}
	w.processMessages(ctx)

	feed.AssertNotCalled(t, "PublishRaw", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartStops(t *testing.T) {
	w := &Worker{pollInterval: time.Hour, stopCh: make(chan struct{}), now: time.Now}

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()
	w.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
