package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/changeevent"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ackRecorder struct {
	mu     sync.Mutex
	acked  []uint64
	nacked []uint64
}

func (a *ackRecorder) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)

	return nil
}

func (a *ackRecorder) Nack(tag uint64, _ bool, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)

	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type fakeTarget struct {
	mu       sync.Mutex
	applied  []changeevent.Event
	degraded []error
	fail     error
}

func (f *fakeTarget) ApplyRemote(_ context.Context, ev changeevent.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.applied = append(f.applied, ev)

	return nil
}

func (f *fakeTarget) MarkDegraded(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.degraded = append(f.degraded, err)
}

func delivery(ack *ackRecorder, tag uint64, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: []byte(body)}
}

func TestProcessMessage(t *testing.T) {
	ack := &ackRecorder{}
	tgt := &fakeTarget{}
	sub := newSubscription(tgt)

	sub.processMessage(context.Background(), delivery(ack, 1, `{"eventType":"DELETE","actorId":"staff-2","oldId":"o-1"}`))
	sub.processMessage(context.Background(), delivery(ack, 2, `not json`))

	require.Len(t, tgt.applied, 1)
	assert.Equal(t, changeevent.TypeDelete, tgt.applied[0].Type)
	assert.Equal(t, "o-1", tgt.applied[0].OrderID())
	assert.Equal(t, []uint64{1}, ack.acked)
	assert.Equal(t, []uint64{2}, ack.nacked)
}

func TestRejectedEventIsDropped(t *testing.T) {
	ack := &ackRecorder{}
	sub := newSubscription(&fakeTarget{fail: errors.New("bad record")})

	sub.processMessage(context.Background(), delivery(ack, 7, `{"eventType":"UPDATE","oldId":"o-1"}`))

	assert.Empty(t, ack.acked)
	assert.Equal(t, []uint64{7}, ack.nacked)
}

func TestRunInOrderAndDegradeOnBrokerClose(t *testing.T) {
	ack := &ackRecorder{}
	tgt := &fakeTarget{}
	sub := newSubscription(tgt)

	msgs := make(chan amqp.Delivery, 3)
	msgs <- delivery(ack, 1, `{"eventType":"DELETE","oldId":"a"}`)
	msgs <- delivery(ack, 2, `{"eventType":"DELETE","oldId":"b"}`)
	msgs <- delivery(ack, 3, `{"eventType":"DELETE","oldId":"c"}`)
	close(msgs)

	go sub.run(context.Background(), msgs)

	select {
	case <-sub.done:
	case <-time.After(time.Second):
		t.Fatal("subscription did not finish")
	}

	require.Len(t, tgt.applied, 3)
	assert.Equal(t, "a", tgt.applied[0].OldID)
	assert.Equal(t, "c", tgt.applied[2].OldID)
	require.Len(t, tgt.degraded, 1)
	assert.ErrorIs(t, tgt.degraded[0], ErrFeedClosed)
}

func TestCloseStopsWithoutDegrading(t *testing.T) {
	tgt := &fakeTarget{}
	sub := newSubscription(tgt)

	msgs := make(chan amqp.Delivery)
	go sub.run(context.Background(), msgs)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	assert.Empty(t, tgt.degraded)
}
