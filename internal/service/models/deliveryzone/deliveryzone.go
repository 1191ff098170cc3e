package deliveryzone

import (
	"errors"
	"strings"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/shopspring/decimal"
)

var ErrZoneNotFound = errors.New("delivery zone not found")

// Zone is a named delivery area with a flat price.
type Zone struct {
	ID   string          `json:"id"   db:"id"`
	Name string          `json:"name" db:"name"`
	Cost decimal.Decimal `json:"cost" db:"cost"`
}

func (z Zone) Validate() error {
	if strings.TrimSpace(z.Name) == "" {
		return order.NewValidationError("name", "is required")
	}
	if z.Cost.IsNegative() {
		return order.NewValidationError("cost", "must not be negative")
	}

	return nil
}
