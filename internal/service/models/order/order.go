package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a customer order moving through the fulfillment lifecycle.
type Order struct {
	ID                   string              `json:"id"`
	ActorID              string              `json:"actorId"`
	CustomerName         string              `json:"customerName"`
	CustomerPhone        string              `json:"customerPhone"`
	DeliveryAddress      string              `json:"deliveryAddress"`
	DeliveryZoneID       string              `json:"deliveryZoneId"`
	DeliveryCost         decimal.Decimal     `json:"deliveryCost"`
	Items                Items               `json:"itemsList"`
	Subtotal             decimal.Decimal     `json:"subtotal"`
	RealTotal            decimal.Decimal     `json:"realTotal"`
	PaymentMethod        PaymentMethod       `json:"paymentMethod"`
	Status               Status              `json:"status"`
	PaidWith             decimal.NullDecimal `json:"paidWith"`
	ChangeGiven          decimal.NullDecimal `json:"changeGiven"`
	DriverCarriesChange  bool                `json:"driverCarriesChange"`
	DriverSettlement     decimal.NullDecimal `json:"driverSettlement"`
	FolioWeb             string              `json:"folioWeb"`
	PreparationStartTime *time.Time          `json:"preparationStartTime"`
	PreparationElapsed   time.Duration       `json:"-"`
	Notes                string              `json:"notes"`
	ItemSummary          string              `json:"productDetails"`
	CreatedAt            time.Time           `json:"createdAt"`
	UpdatedAt            time.Time           `json:"updatedAt"`
}

// ShortID is the prefix of the id used on tickets and notifications.
func (o Order) ShortID() string {
	if len(o.ID) <= 8 {
		return o.ID
	}

	return o.ID[:8]
}

// Clone returns a copy that shares no mutable state with o.
func (o Order) Clone() Order {
	c := o
	c.Items = o.Items.Clone()
	if o.PreparationStartTime != nil {
		t := *o.PreparationStartTime
		c.PreparationStartTime = &t
	}

	return c
}

// LineItem is one product-quantity-price tuple within an order.
type LineItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ItemTotal decimal.Decimal `json:"itemTotal"`
}

func (i LineItem) line() money.Line {
	return money.Line{Quantity: i.Quantity, UnitPrice: i.UnitPrice}
}

// Items is the ordered line item list of an order.
type Items []LineItem

// Clone copies the list.
func (it Items) Clone() Items {
	if it == nil {
		return nil
	}
	c := make(Items, len(it))
	copy(c, it)

	return c
}

// Recalculate returns a copy with every ItemTotal recomputed and missing ids assigned.
// Item totals coming from input are never trusted.
func (it Items) Recalculate() Items {
	c := it.Clone()
	for i := range c {
		if c[i].ID == "" {
			c[i].ID = uuid.NewString()
		}
		c[i].ItemTotal = money.ItemTotal(c[i].Quantity, c[i].UnitPrice)
	}

	return c
}

// Subtotal sums the item totals.
func (it Items) Subtotal() decimal.Decimal {
	lines := make([]money.Line, len(it))
	for i, item := range it {
		lines[i] = item.line()
	}

	return money.Subtotal(lines)
}

// Summary renders "2x Name, 1x Other" for contexts without the full item table.
func (it Items) Summary() string {
	if len(it) == 0 {
		return "N/A"
	}
	parts := make([]string, len(it))
	for i, item := range it {
		parts[i] = fmt.Sprintf("%dx %s", item.Quantity, item.Name)
	}

	return strings.Join(parts, ", ")
}

// Validate checks quantity and price of every line.
func (it Items) Validate() error {
	for i, item := range it {
		if item.Quantity <= 0 {
			return NewValidationError(fmt.Sprintf("itemsList[%d].quantity", i), "must be greater than zero")
		}
		if item.UnitPrice.IsNegative() {
			return NewValidationError(fmt.Sprintf("itemsList[%d].unitPrice", i), "must not be negative")
		}
		if strings.TrimSpace(item.Name) == "" {
			return NewValidationError(fmt.Sprintf("itemsList[%d].name", i), "is required")
		}
	}

	return nil
}

// Draft carries the staff- or intake-supplied fields of a new order.
type Draft struct {
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress string
	DeliveryZoneID  string
	// DeliveryCost overrides the zone price when valid.
	DeliveryCost  decimal.NullDecimal
	Items         Items
	PaymentMethod PaymentMethod
	Notes         string
}
