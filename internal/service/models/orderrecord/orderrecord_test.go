package orderrecord

import (
	"testing"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func wellFormed() order.Order {
	created := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	items := order.Items{
		{ID: "i-1", ProductID: "p-1", Name: "Ribeye", Quantity: 2, UnitPrice: dec("125.375")},
		{ID: "i-2", Name: "Chorizo", Quantity: 1, UnitPrice: dec("120.00")},
	}.Recalculate()

	return order.Order{
		ID:              "2b0c4b9e-6c62-4d43-9a3c-1f0e5a7d9c11",
		ActorID:         "staff-1",
		CustomerName:    "Ana",
		CustomerPhone:   "555-0101",
		DeliveryAddress: "Calle 5 #12",
		DeliveryZoneID:  "zone-1",
		DeliveryCost:    dec("50"),
		Items:           items,
		Subtotal:        items.Subtotal(),
		RealTotal:       dec("420.75"),
		PaymentMethod:   order.PaymentCash,
		Status:          order.StatusNew,
		Notes:           "ring twice",
		ItemSummary:     items.Summary(),
		CreatedAt:       created,
		UpdatedAt:       created,
	}
}

func TestRoundTrip(t *testing.T) {
	start := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(o *order.Order)
	}{
		{name: "new order", mutate: func(o *order.Order) {}},
		{name: "preparing with offset", mutate: func(o *order.Order) {
			o.Status = order.StatusPreparing
			o.PreparationStartTime = &start
			o.PreparationElapsed = 3600 * time.Second
		}},
		{name: "shipped cash with carried change", mutate: func(o *order.Order) {
			o.Status = order.StatusShipped
			o.RealTotal = dec("410")
			o.PaidWith = decimal.NewNullDecimal(dec("500"))
			o.ChangeGiven = decimal.NewNullDecimal(dec("90"))
			o.DriverCarriesChange = true
			o.FolioWeb = "W-77"
			o.PreparationElapsed = 754 * time.Millisecond
		}},
		{name: "paid with settlement", mutate: func(o *order.Order) {
			o.Status = order.StatusPaid
			o.PaidWith = decimal.NewNullDecimal(dec("500"))
			o.ChangeGiven = decimal.NewNullDecimal(dec("79.25"))
			o.DriverCarriesChange = true
			o.DriverSettlement = decimal.NewNullDecimal(dec("500"))
		}},
		{name: "pickup paid by card", mutate: func(o *order.Order) {
			o.DeliveryZoneID = ""
			o.DeliveryCost = decimal.Zero
			o.RealTotal = o.Subtotal
			o.PaymentMethod = order.PaymentCard
		}},
		{name: "no items", mutate: func(o *order.Order) {
			o.Items = order.Items{}
			o.Subtotal = decimal.Zero
			o.RealTotal = dec("50")
			o.ItemSummary = "N/A"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := wellFormed()
			tt.mutate(&o)

			got, err := ToDomain(FromDomain(o))
			require.NoError(t, err)

			if diff := cmp.Diff(o, got, decimalComparer); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToDomainAbsentValues(t *testing.T) {
	r := Record{
		ID:            "o-1",
		CustomerName:  "Luis",
		PaymentMethod: "cash",
		OrderStatus:   "New",
		ItemsList: []ItemRecord{
			{ID: "i-1", Name: "Brisket", Quantity: 3, UnitPrice: dec("10"), ItemTotal: dec("999")},
		},
		DeliveryCost: decimal.NewNullDecimal(dec("15")),
	}

	o, err := ToDomain(r)
	require.NoError(t, err)

	assert.False(t, o.PaidWith.Valid, "paid with is not determined before shipping")
	assert.False(t, o.ChangeGiven.Valid)
	assert.False(t, o.DriverSettlement.Valid)
	assert.False(t, o.DriverCarriesChange)
	assert.Zero(t, o.PreparationElapsed)
	assert.Nil(t, o.PreparationStartTime)
	assert.Empty(t, o.ActorID)
	assert.Empty(t, o.FolioWeb)

	assert.Equal(t, "30", o.Items[0].ItemTotal.String(), "stored item total is never trusted")
	assert.Equal(t, "30", o.Subtotal.String())
	assert.Equal(t, "45", o.RealTotal.String(), "real total derives from subtotal and delivery")
	assert.Equal(t, "3x Brisket", o.ItemSummary)
}

func TestToDomainPrefersPersistedRealTotal(t *testing.T) {
	r := Record{
		ID:            "o-1",
		PaymentMethod: "cash",
		OrderStatus:   "Shipped",
		ItemsList:     []ItemRecord{{ID: "i-1", Name: "Ribs", Quantity: 1, UnitPrice: dec("200")}},
		DeliveryCost:  decimal.NewNullDecimal(dec("10.50")),
		RealTotal:     decimal.NewNullDecimal(dec("205")),
	}

	o, err := ToDomain(r)
	require.NoError(t, err)
	assert.Equal(t, "205", o.RealTotal.String())
	assert.Equal(t, "200", o.Subtotal.String())
}

func TestToDomainRejectsUnknownEnums(t *testing.T) {
	_, err := ToDomain(Record{OrderStatus: "Lost", PaymentMethod: "cash"})
	require.ErrorIs(t, err, order.ErrInvalidStatus)

	_, err = ToDomain(Record{OrderStatus: "New", PaymentMethod: "barter"})
	require.ErrorIs(t, err, order.ErrInvalidPaymentMethod)
}

func TestPolicy(t *testing.T) {
	assert.Equal(t, AbsentIsZero, Policy("preparation_time_elapsed_ms"))
	assert.Equal(t, AbsentIsZero, Policy("delivery_cost"))
	assert.Equal(t, AbsentIsNull, Policy("paid_with"))
	assert.Equal(t, AbsentIsNull, Policy("real_total"))
	assert.Equal(t, AbsentIsNull, Policy("unknown"))
}

func TestSetMapCoversWritableColumns(t *testing.T) {
	set := SetMap(FromDomain(wellFormed()))
	for _, col := range Columns {
		if col == "id" || col == "created_at" {
			assert.NotContains(t, set, col)

			continue
		}
		assert.Contains(t, set, col)
	}
}
