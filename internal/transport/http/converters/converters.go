// Package converters maps HTTP request and response bodies to domain models.
package converters

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/elapsed"
	"github.com/corray333/backend-labs/meatshop/internal/service/lifecycle"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Validate checks the validate tags of a request body. The first failing
// field is reported as an order validation error.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]

		return order.NewValidationError(fe.Field(), "failed "+fe.Tag())
	}

	return order.NewValidationError("body", err.Error())
}

// ItemRequest is a line item in a create or edit request. A line naming only
// productId takes its name and price from the catalog.
type ItemRequest struct {
	ProductID string           `json:"productId"`
	Name      string           `json:"name"`
	Quantity  int              `json:"quantity"  validate:"gt=0"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
}

func (r ItemRequest) toModel() order.LineItem {
	item := order.LineItem{
		ProductID: r.ProductID,
		Name:      r.Name,
		Quantity:  r.Quantity,
	}
	if r.UnitPrice != nil {
		item.UnitPrice = *r.UnitPrice
	}

	return item
}

func itemsToModel(in []ItemRequest) order.Items {
	items := make(order.Items, len(in))
	for i, it := range in {
		items[i] = it.toModel()
	}

	return items
}

// CreateOrderRequest is the body of POST /api/orders.
type CreateOrderRequest struct {
	CustomerName    string              `json:"customerName"    validate:"required"`
	CustomerPhone   string              `json:"customerPhone"`
	DeliveryAddress string              `json:"deliveryAddress"`
	DeliveryZoneID  string              `json:"deliveryZoneId"`
	DeliveryCost    decimal.NullDecimal `json:"deliveryCost"`
	Items           []ItemRequest       `json:"itemsList"       validate:"dive"`
	PaymentMethod   string              `json:"paymentMethod"   validate:"omitempty,oneof=cash card"`
	Notes           string              `json:"notes"`
	External        bool                `json:"external"`
}

// ToDraft converts the request into an order draft.
func (r CreateOrderRequest) ToDraft() order.Draft {
	return order.Draft{
		CustomerName:    r.CustomerName,
		CustomerPhone:   r.CustomerPhone,
		DeliveryAddress: r.DeliveryAddress,
		DeliveryZoneID:  r.DeliveryZoneID,
		DeliveryCost:    r.DeliveryCost,
		Items:           itemsToModel(r.Items),
		PaymentMethod:   order.PaymentMethod(r.PaymentMethod),
		Notes:           r.Notes,
	}
}

// UpdateOrderRequest is the body of PATCH /api/orders/{id}. Omitted fields are kept.
// Status changes go through the action routes.
type UpdateOrderRequest struct {
	CustomerName    *string          `json:"customerName"`
	CustomerPhone   *string          `json:"customerPhone"`
	DeliveryAddress *string          `json:"deliveryAddress"`
	DeliveryZoneID  *string          `json:"deliveryZoneId"`
	DeliveryCost    *decimal.Decimal `json:"deliveryCost"`
	Items           *[]ItemRequest   `json:"itemsList"`
	PaymentMethod   *string          `json:"paymentMethod"   validate:"omitempty,oneof=cash card"`
	Notes           *string          `json:"notes"`
	RealTotal       *decimal.Decimal `json:"realTotal"`
	FolioWeb        *string          `json:"folioWeb"`
}

// ToPatch converts the request into a partial update.
func (r UpdateOrderRequest) ToPatch() (order.Patch, error) {
	var p order.Patch
	if r.CustomerName != nil {
		p.CustomerName = order.Set(*r.CustomerName)
	}
	if r.CustomerPhone != nil {
		p.CustomerPhone = order.Set(*r.CustomerPhone)
	}
	if r.DeliveryAddress != nil {
		p.DeliveryAddress = order.Set(*r.DeliveryAddress)
	}
	if r.DeliveryZoneID != nil {
		p.DeliveryZoneID = order.Set(*r.DeliveryZoneID)
	}
	if r.DeliveryCost != nil {
		p.DeliveryCost = order.Set(*r.DeliveryCost)
	}
	if r.Items != nil {
		p.Items = order.Set(itemsToModel(*r.Items))
	}
	if r.PaymentMethod != nil {
		m, err := order.ParsePaymentMethod(*r.PaymentMethod)
		if err != nil {
			return order.Patch{}, order.NewValidationError("paymentMethod", err.Error())
		}
		p.PaymentMethod = order.Set(m)
	}
	if r.Notes != nil {
		p.Notes = order.Set(*r.Notes)
	}
	if r.RealTotal != nil {
		p.RealTotal = order.Set(*r.RealTotal)
	}
	if r.FolioWeb != nil {
		p.FolioWeb = order.Set(*r.FolioWeb)
	}

	return p, nil
}

// SendRequest is the payment reconciliation entered when an order ships.
type SendRequest struct {
	RealTotal           decimal.NullDecimal `json:"realTotal"`
	PaidWith            decimal.NullDecimal `json:"paidWith"`
	PaymentMethod       string              `json:"paymentMethod"       validate:"omitempty,oneof=cash card"`
	FolioWeb            string              `json:"folioWeb"`
	DriverCarriesChange bool                `json:"driverCarriesChange"`
}

func (r SendRequest) ToReconciliation() lifecycle.Reconciliation {
	return lifecycle.Reconciliation{
		RealTotal:           r.RealTotal,
		PaidWith:            r.PaidWith,
		PaymentMethod:       order.PaymentMethod(r.PaymentMethod),
		FolioWeb:            r.FolioWeb,
		DriverCarriesChange: r.DriverCarriesChange,
	}
}

// ItemResponse is a line item as returned to clients.
type ItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ItemTotal decimal.Decimal `json:"itemTotal"`
}

// OrderResponse is an order as returned to clients.
type OrderResponse struct {
	ID                   string              `json:"id"`
	ShortID              string              `json:"shortId"`
	ActorID              string              `json:"actorId"`
	CustomerName         string              `json:"customerName"`
	CustomerPhone        string              `json:"customerPhone"`
	DeliveryAddress      string              `json:"deliveryAddress"`
	DeliveryZoneID       string              `json:"deliveryZoneId,omitempty"`
	DeliveryCost         decimal.Decimal     `json:"deliveryCost"`
	Items                []ItemResponse      `json:"itemsList"`
	ProductDetails       string              `json:"productDetails"`
	Subtotal             decimal.Decimal     `json:"subtotal"`
	RealTotal            decimal.Decimal     `json:"realTotal"`
	PaymentMethod        string              `json:"paymentMethod"`
	Status               string              `json:"status"`
	PaidWith             decimal.NullDecimal `json:"paidWith"`
	ChangeGiven          decimal.NullDecimal `json:"changeGiven"`
	DriverCarriesChange  bool                `json:"driverCarriesChange"`
	DriverSettlement     decimal.NullDecimal `json:"driverSettlement"`
	FolioWeb             string              `json:"folioWeb,omitempty"`
	Notes                string              `json:"notes"`
	PreparationStartTime *time.Time          `json:"preparationStartTime"`
	ElapsedMs            int64               `json:"elapsedMs"`
	AllowedActions       []lifecycle.Event   `json:"allowedActions"`
	CreatedAt            time.Time           `json:"createdAt"`
	UpdatedAt            time.Time           `json:"updatedAt"`
}

// OrderToResponse converts o, with the elapsed time displayed at now.
func OrderToResponse(o order.Order, now time.Time) OrderResponse {
	items := make([]ItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			ItemTotal: it.ItemTotal,
		}
	}

	return OrderResponse{
		ID:                   o.ID,
		ShortID:              o.ShortID(),
		ActorID:              o.ActorID,
		CustomerName:         o.CustomerName,
		CustomerPhone:        o.CustomerPhone,
		DeliveryAddress:      o.DeliveryAddress,
		DeliveryZoneID:       o.DeliveryZoneID,
		DeliveryCost:         o.DeliveryCost,
		Items:                items,
		ProductDetails:       o.ItemSummary,
		Subtotal:             o.Subtotal,
		RealTotal:            o.RealTotal,
		PaymentMethod:        o.PaymentMethod.String(),
		Status:               o.Status.String(),
		PaidWith:             o.PaidWith,
		ChangeGiven:          o.ChangeGiven,
		DriverCarriesChange:  o.DriverCarriesChange,
		DriverSettlement:     o.DriverSettlement,
		FolioWeb:             o.FolioWeb,
		Notes:                o.Notes,
		PreparationStartTime: o.PreparationStartTime,
		ElapsedMs:            elapsed.Of(o, now).Milliseconds(),
		AllowedActions:       lifecycle.Allowed(o.Status),
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

// OrdersToResponse converts a list of orders.
func OrdersToResponse(orders []order.Order, now time.Time) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = OrderToResponse(o, now)
	}

	return out
}

// SendResponse adds the reconciliation figures shown to staff to the shipped order.
type SendResponse struct {
	Order             OrderResponse       `json:"order"`
	ChangeGiven       decimal.NullDecimal `json:"changeGiven"`
	SettlementPreview decimal.NullDecimal `json:"settlementPreview"`
}

func SendResultToResponse(o order.Order, res lifecycle.SendResult, now time.Time) SendResponse {
	return SendResponse{
		Order:             OrderToResponse(o, now),
		ChangeGiven:       res.ChangeGiven,
		SettlementPreview: res.SettlementPreview,
	}
}
