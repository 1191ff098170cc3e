package changeevent

import (
	"errors"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/orderrecord"
)

// Type is the kind of change a feed event carries.
type Type string

const (
	TypeInsert Type = "INSERT"
	TypeUpdate Type = "UPDATE"
	TypeDelete Type = "DELETE"
)

var ErrInvalidType = errors.New("invalid change event type")

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeInsert, TypeUpdate, TypeDelete:
		return Type(s), nil
	default:
		return "", ErrInvalidType
	}
}

// Event is one change of the orders collection as pushed on the change feed.
type Event struct {
	Type     Type                `json:"eventType"`
	ActorID  string              `json:"actorId"`
	Record   *orderrecord.Record `json:"record,omitempty"`
	OldID    string              `json:"oldId,omitempty"`
	CommitTS time.Time           `json:"commitTimestamp"`
}

// OrderID returns the id the event is about.
func (e Event) OrderID() string {
	if e.Record != nil && e.Record.ID != "" {
		return e.Record.ID
	}

	return e.OldID
}

// Validate checks that the event carries what its type needs.
func (e Event) Validate() error {
	if _, err := ParseType(string(e.Type)); err != nil {
		return err
	}
	if e.Type != TypeDelete && e.Record == nil {
		return errors.New("change event without record")
	}
	if e.OrderID() == "" {
		return errors.New("change event without order id")
	}

	return nil
}
