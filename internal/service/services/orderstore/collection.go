package orderstore

import (
	"sort"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
)

func indexOf(orders []order.Order, id string) (int, bool) {
	for i := range orders {
		if orders[i].ID == id {
			return i, true
		}
	}

	return -1, false
}

// upsert replaces the order with the same id or adds it, then re-sorts.
func upsert(orders []order.Order, o order.Order) []order.Order {
	o = o.Clone()
	if i, ok := indexOf(orders, o.ID); ok {
		orders[i] = o
	} else {
		orders = append([]order.Order{o}, orders...)
	}
	sortByCreated(orders)

	return orders
}

func remove(orders []order.Order, id string) []order.Order {
	i, ok := indexOf(orders, id)
	if !ok {
		return orders
	}

	return append(orders[:i], orders[i+1:]...)
}

// dedupe keeps the last occurrence of every id.
func dedupe(orders []order.Order) []order.Order {
	out := make([]order.Order, 0, len(orders))
	for _, o := range orders {
		out = upsertUnsorted(out, o)
	}

	return out
}

func upsertUnsorted(orders []order.Order, o order.Order) []order.Order {
	if i, ok := indexOf(orders, o.ID); ok {
		orders[i] = o.Clone()

		return orders
	}

	return append(orders, o.Clone())
}

// sortByCreated orders newest first; ties break on id.
func sortByCreated(orders []order.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}

		return orders[i].ID < orders[j].ID
	})
}

// sortActive surfaces New orders first, newest first within each group.
func sortActive(orders []order.Order) {
	sortByCreated(orders)
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Status == order.StatusNew && orders[j].Status != order.StatusNew
	})
}

// tombstoneLimit bounds how many deleted ids a store remembers.
const tombstoneLimit = 512

// tombstones remembers recently deleted ids so late events cannot revive them.
type tombstones struct {
	ids  map[string]struct{}
	fifo []string
}

func newTombstones() *tombstones {
	return &tombstones{ids: make(map[string]struct{})}
}

func (t *tombstones) add(id string) {
	if _, ok := t.ids[id]; ok {
		return
	}
	if len(t.fifo) == tombstoneLimit {
		delete(t.ids, t.fifo[0])
		t.fifo = t.fifo[1:]
	}
	t.ids[id] = struct{}{}
	t.fifo = append(t.fifo, id)
}

func (t *tombstones) has(id string) bool {
	_, ok := t.ids[id]

	return ok
}

// isStale reports whether incoming is older than the copy already held.
func isStale(current, incoming order.Order) bool {
	return incoming.UpdatedAt.Before(current.UpdatedAt)
}

// mergeFetched combines a fresh listing with the local collection. Local copies
// newer than the listed ones win, local orders changed after since survive the
// listing, and deleted ids stay deleted.
func mergeFetched(local, fetched []order.Order, since time.Time, deleted *tombstones) []order.Order {
	out := make([]order.Order, 0, len(fetched))
	for _, o := range dedupe(fetched) {
		if deleted.has(o.ID) {
			continue
		}
		if i, ok := indexOf(local, o.ID); ok && isStale(local[i], o) {
			o = local[i]
		}
		out = append(out, o.Clone())
	}
	for _, o := range local {
		if _, ok := indexOf(out, o.ID); !ok && o.UpdatedAt.After(since) {
			out = append(out, o.Clone())
		}
	}
	sortByCreated(out)

	return out
}
