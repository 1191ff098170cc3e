// Package notify keeps the per-session list of new-order notifications.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
)

const defaultCapacity = 100

// Notification announces an order staff has not seen yet.
type Notification struct {
	OrderID      string    `json:"orderId"`
	ShortID      string    `json:"shortId"`
	CustomerName string    `json:"customerName"`
	Summary      string    `json:"productDetails"`
	RaisedAt     time.Time `json:"raisedAt"`
}

// Inbox buffers notifications until drained. When full the oldest is dropped.
type Inbox struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	now      func() time.Time
}

// NewInbox creates an empty inbox holding at most capacity notifications.
func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	return &Inbox{capacity: capacity, now: time.Now}
}

// NotifyNewOrder enqueues a notification for o.
func (in *Inbox) NotifyNewOrder(o order.Order) {
	n := Notification{
		OrderID:      o.ID,
		ShortID:      o.ShortID(),
		CustomerName: o.CustomerName,
		Summary:      o.ItemSummary,
		RaisedAt:     in.now(),
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	if len(in.items) == in.capacity {
		in.items = in.items[1:]
	}
	in.items = append(in.items, n)

	slog.Info("New order notification", "order_id", o.ID, "customer", o.CustomerName)
}

// Drain returns the pending notifications, oldest first, and empties the inbox.
func (in *Inbox) Drain() []Notification {
	in.mu.Lock()
	defer in.mu.Unlock()

	out := in.items
	in.items = nil
	if out == nil {
		return []Notification{}
	}

	return out
}

// Len returns the number of pending notifications.
func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()

	return len(in.items)
}
