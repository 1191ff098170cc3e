package order

import (
	"database/sql/driver"
	"errors"
)

// Status is the fulfillment state of an order.
type Status string

const (
	StatusNew       Status = "New"
	StatusPreparing Status = "Preparing"
	StatusShipped   Status = "Shipped"
	StatusDelivered Status = "Delivered"
	StatusPaid      Status = "Paid"
	StatusCancelled Status = "Cancelled"
)

var ErrInvalidStatus = errors.New("invalid order status")

// ActiveStatuses are shown on the dashboard.
var ActiveStatuses = []Status{StatusNew, StatusPreparing}

// HistoryStatuses are shown in the order history.
var HistoryStatuses = []Status{StatusShipped, StatusDelivered, StatusPaid, StatusCancelled}

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// IsShippedOrLater reports whether the order went through payment reconciliation.
func (s Status) IsShippedOrLater() bool {
	switch s {
	case StatusShipped, StatusDelivered, StatusPaid:
		return true
	default:
		return false
	}
}

// In reports whether s is one of statuses.
func (s Status) In(statuses ...Status) bool {
	for _, candidate := range statuses {
		if s == candidate {
			return true
		}
	}

	return false
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusPreparing, StatusShipped, StatusDelivered, StatusPaid, StatusCancelled:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}
