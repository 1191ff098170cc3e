// Package orderrecord translates between the persisted order row and order.Order.
package orderrecord

import (
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/money"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/shopspring/decimal"
)

// ItemRecord is a line item as stored inside the items_list json column.
type ItemRecord struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ItemTotal decimal.Decimal `json:"itemTotal"`
}

// Record is the storage shape of an order.
// The same shape travels on the change feed.
type Record struct {
	ID                       string              `db:"id"                          json:"id"`
	UserID                   *string             `db:"user_id"                     json:"user_id"`
	CustomerName             string              `db:"customer_name"               json:"customer_name"`
	CustomerPhone            string              `db:"customer_phone"              json:"customer_phone"`
	DeliveryAddress          string              `db:"delivery_address"            json:"delivery_address"`
	DeliveryZoneID           *string             `db:"delivery_zone_id"            json:"delivery_zone_id"`
	DeliveryCost             decimal.NullDecimal `db:"delivery_cost"               json:"delivery_cost"`
	ItemsList                []ItemRecord        `db:"items_list"                  json:"items_list"`
	TotalAmount              decimal.NullDecimal `db:"total_amount"                json:"total_amount"`
	RealTotal                decimal.NullDecimal `db:"real_total"                  json:"real_total"`
	PaymentMethod            string              `db:"payment_method"              json:"payment_method"`
	OrderStatus              string              `db:"order_status"                json:"order_status"`
	Notes                    string              `db:"notes"                       json:"notes"`
	ProductDetailsString     string              `db:"product_details_string"      json:"product_details_string"`
	PaidWith                 decimal.NullDecimal `db:"paid_with"                   json:"paid_with"`
	ChangeGiven              decimal.NullDecimal `db:"change_given"                json:"change_given"`
	DeliveryPersonPays       decimal.NullDecimal `db:"delivery_person_pays"        json:"delivery_person_pays"`
	DriverCarriesChange      *bool               `db:"driver_carries_change"       json:"driver_carries_change"`
	FolioWeb                 *string             `db:"folio_web"                   json:"folio_web"`
	PreparationStartTime     *time.Time          `db:"preparation_start_time"      json:"preparation_start_time"`
	PreparationTimeElapsedMs *int64              `db:"preparation_time_elapsed_ms" json:"preparation_time_elapsed_ms"`
	CreatedAt                time.Time           `db:"created_at"                  json:"created_at"`
	UpdatedAt                time.Time           `db:"updated_at"                  json:"updated_at"`
}

// Absence says what an absent column means in the domain.
type Absence int

const (
	// AbsentIsNull marks values that are not yet determined.
	AbsentIsNull Absence = iota
	// AbsentIsZero marks accumulators that are always defined.
	AbsentIsZero
)

// absencePolicy lists every nullable numeric or flag column.
var absencePolicy = map[string]Absence{
	"delivery_cost":               AbsentIsZero,
	"total_amount":                AbsentIsZero,
	"real_total":                  AbsentIsNull,
	"paid_with":                   AbsentIsNull,
	"change_given":                AbsentIsNull,
	"delivery_person_pays":        AbsentIsNull,
	"driver_carries_change":       AbsentIsZero,
	"preparation_time_elapsed_ms": AbsentIsZero,
}

// Policy returns the absence policy of column. Unknown columns are AbsentIsNull.
func Policy(column string) Absence {
	return absencePolicy[column]
}

func numeric(column string, v decimal.NullDecimal) decimal.NullDecimal {
	if v.Valid {
		return v
	}
	if Policy(column) == AbsentIsZero {
		return decimal.NewNullDecimal(decimal.Zero)
	}

	return decimal.NullDecimal{}
}

func flag(v *bool) bool {
	return v != nil && *v
}

func millis(v *int64) time.Duration {
	if v == nil || *v < 0 {
		return 0
	}

	return time.Duration(*v) * time.Millisecond
}

func optionalString(v *string) string {
	if v == nil {
		return ""
	}

	return *v
}

func stringOrNil(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// ToDomain converts a stored record into an order.
// Item totals and the subtotal are recomputed. A persisted real total wins over
// subtotal plus delivery cost.
func ToDomain(r Record) (order.Order, error) {
	status, err := order.ParseStatus(r.OrderStatus)
	if err != nil {
		return order.Order{}, err
	}
	method, err := order.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return order.Order{}, err
	}

	items := make(order.Items, len(r.ItemsList))
	for i, it := range r.ItemsList {
		items[i] = order.LineItem{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}
	items = items.Recalculate()
	subtotal := items.Subtotal()
	deliveryCost := numeric("delivery_cost", r.DeliveryCost).Decimal

	realTotal := money.GrandTotal(subtotal, deliveryCost)
	if rt := numeric("real_total", r.RealTotal); rt.Valid {
		realTotal = rt.Decimal
	}

	var start *time.Time
	if r.PreparationStartTime != nil {
		t := *r.PreparationStartTime
		start = &t
	}

	return order.Order{
		ID:                   r.ID,
		ActorID:              optionalString(r.UserID),
		CustomerName:         r.CustomerName,
		CustomerPhone:        r.CustomerPhone,
		DeliveryAddress:      r.DeliveryAddress,
		DeliveryZoneID:       optionalString(r.DeliveryZoneID),
		DeliveryCost:         deliveryCost,
		Items:                items,
		Subtotal:             subtotal,
		RealTotal:            realTotal,
		PaymentMethod:        method,
		Status:               status,
		PaidWith:             numeric("paid_with", r.PaidWith),
		ChangeGiven:          numeric("change_given", r.ChangeGiven),
		DriverCarriesChange:  flag(r.DriverCarriesChange),
		DriverSettlement:     numeric("delivery_person_pays", r.DeliveryPersonPays),
		FolioWeb:             optionalString(r.FolioWeb),
		PreparationStartTime: start,
		PreparationElapsed:   millis(r.PreparationTimeElapsedMs),
		Notes:                r.Notes,
		ItemSummary:          items.Summary(),
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}, nil
}

// FromDomain converts an order into its stored record.
func FromDomain(o order.Order) Record {
	items := make([]ItemRecord, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemRecord{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			ItemTotal: it.ItemTotal,
		}
	}

	carries := o.DriverCarriesChange
	elapsedMs := o.PreparationElapsed.Milliseconds()

	var start *time.Time
	if o.PreparationStartTime != nil {
		t := *o.PreparationStartTime
		start = &t
	}

	return Record{
		ID:                       o.ID,
		UserID:                   stringOrNil(o.ActorID),
		CustomerName:             o.CustomerName,
		CustomerPhone:            o.CustomerPhone,
		DeliveryAddress:          o.DeliveryAddress,
		DeliveryZoneID:           stringOrNil(o.DeliveryZoneID),
		DeliveryCost:             decimal.NewNullDecimal(o.DeliveryCost),
		ItemsList:                items,
		TotalAmount:              decimal.NewNullDecimal(o.Subtotal),
		RealTotal:                decimal.NewNullDecimal(o.RealTotal),
		PaymentMethod:            o.PaymentMethod.String(),
		OrderStatus:              o.Status.String(),
		Notes:                    o.Notes,
		ProductDetailsString:     o.Items.Summary(),
		PaidWith:                 o.PaidWith,
		ChangeGiven:              o.ChangeGiven,
		DeliveryPersonPays:       o.DriverSettlement,
		DriverCarriesChange:      &carries,
		FolioWeb:                 stringOrNil(o.FolioWeb),
		PreparationStartTime:     start,
		PreparationTimeElapsedMs: &elapsedMs,
		CreatedAt:                o.CreatedAt,
		UpdatedAt:                o.UpdatedAt,
	}
}

// SetMap returns the writable columns of r for insert and update statements.
// id and created_at are assigned by the store.
func SetMap(r Record) map[string]any {
	return map[string]any{
		"user_id":                     r.UserID,
		"customer_name":               r.CustomerName,
		"customer_phone":              r.CustomerPhone,
		"delivery_address":            r.DeliveryAddress,
		"delivery_zone_id":            r.DeliveryZoneID,
		"delivery_cost":               r.DeliveryCost,
		"items_list":                  r.ItemsList,
		"total_amount":                r.TotalAmount,
		"real_total":                  r.RealTotal,
		"payment_method":              r.PaymentMethod,
		"order_status":                r.OrderStatus,
		"notes":                       r.Notes,
		"product_details_string":      r.ProductDetailsString,
		"paid_with":                   r.PaidWith,
		"change_given":                r.ChangeGiven,
		"delivery_person_pays":        r.DeliveryPersonPays,
		"driver_carries_change":       r.DriverCarriesChange,
		"folio_web":                   r.FolioWeb,
		"preparation_start_time":      r.PreparationStartTime,
		"preparation_time_elapsed_ms": r.PreparationTimeElapsedMs,
		"updated_at":                  r.UpdatedAt,
	}
}

// Columns lists every column of the orders table in select order.
var Columns = []string{
	"id",
	"user_id",
	"customer_name",
	"customer_phone",
	"delivery_address",
	"delivery_zone_id",
	"delivery_cost",
	"items_list",
	"total_amount",
	"real_total",
	"payment_method",
	"order_status",
	"notes",
	"product_details_string",
	"paid_with",
	"change_given",
	"delivery_person_pays",
	"driver_carries_change",
	"folio_web",
	"preparation_start_time",
	"preparation_time_elapsed_ms",
	"created_at",
	"updated_at",
}
