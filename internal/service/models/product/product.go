package product

import (
	"errors"
	"strings"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// Product is a catalog entry. Orders copy name and price at add time.
type Product struct {
	ID          string          `json:"id"          db:"id"`
	Name        string          `json:"name"        db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price"       db:"price"`
	Category    string          `json:"category"    db:"category"`
	ImageURL    string          `json:"imageUrl"    db:"image_url"`
	Available   bool            `json:"available"   db:"available"`
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return order.NewValidationError("name", "is required")
	}
	if p.Price.IsNegative() {
		return order.NewValidationError("price", "must not be negative")
	}

	return nil
}
