package orderstore

import (
	"strings"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
)

// View selects which part of the collection a listing shows.
type View string

const (
	ViewAll     View = "all"
	ViewActive  View = "active"
	ViewHistory View = "history"
)

// Filter narrows a listing.
type Filter struct {
	View View
	// Status keeps only orders with exactly this status when set.
	Status order.Status
	// Query matches a case-insensitive substring of the customer name or order id.
	Query string
}

func (f Filter) matches(o order.Order) bool {
	switch f.View {
	case ViewActive:
		if !o.Status.In(order.ActiveStatuses...) {
			return false
		}
	case ViewHistory:
		if !o.Status.In(order.HistoryStatuses...) {
			return false
		}
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(strings.ToLower(o.CustomerName), q) ||
			strings.Contains(strings.ToLower(o.ID), q)
	}

	return true
}

// List returns copies of the matching orders in display order.
func (s *Store) List(f Filter) []order.Order {
	s.mu.RLock()
	out := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if f.matches(o) {
			out = append(out, o.Clone())
		}
	}
	s.mu.RUnlock()

	if f.View == ViewActive {
		sortActive(out)
	}

	return out
}

// Len returns the number of orders in the collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.orders)
}
