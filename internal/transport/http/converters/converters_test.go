package converters

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/lifecycle"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderRequestToDraft(t *testing.T) {
	body := `{
		"customerName": "Ana",
		"deliveryZoneId": "zone-1",
		"itemsList": [
			{"name": "Ribeye", "quantity": 2, "unitPrice": "150.25"},
			{"productId": "p-9", "quantity": 1}
		],
		"paymentMethod": "card",
		"external": true
	}`

	var req CreateOrderRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.NoError(t, Validate(req))
	assert.True(t, req.External)

	draft := req.ToDraft()
	assert.Equal(t, "Ana", draft.CustomerName)
	assert.Equal(t, order.PaymentCard, draft.PaymentMethod)
	assert.False(t, draft.DeliveryCost.Valid, "zone price applies when no cost is sent")
	require.Len(t, draft.Items, 2)
	assert.Equal(t, "150.25", draft.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "p-9", draft.Items[1].ProductID)
	assert.True(t, draft.Items[1].UnitPrice.IsZero())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		req   CreateOrderRequest
		field string
	}{
		{name: "missing name", req: CreateOrderRequest{}, field: "customerName"},
		{name: "zero quantity", req: CreateOrderRequest{CustomerName: "Ana", Items: []ItemRequest{{Name: "Ribs"}}}, field: "quantity"},
		{name: "unknown payment", req: CreateOrderRequest{CustomerName: "Ana", PaymentMethod: "crypto"}, field: "paymentMethod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			require.Error(t, err)
			assert.True(t, order.IsValidation(err))

			var ve *order.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestUpdateOrderRequestToPatch(t *testing.T) {
	var req UpdateOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"notes": "", "status": "Delivered", "deliveryCost": "0"}`), &req))

	p, err := req.ToPatch()
	require.NoError(t, err)
	assert.True(t, p.Notes.Set)
	assert.Equal(t, "", p.Notes.Value)
	assert.False(t, p.Status.Set, "status is not editable")
	assert.True(t, p.DeliveryCost.Set)
	assert.False(t, p.CustomerName.Set)
	assert.False(t, p.Items.Set)

	bad := "barter"
	_, err = UpdateOrderRequest{PaymentMethod: &bad}.ToPatch()
	assert.True(t, order.IsValidation(err))
}

func TestOrderToResponse(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(-10 * time.Second)
	o := order.Order{
		ID:                   "0f5c2a1e-9a7b-4c1d",
		Status:               order.StatusPreparing,
		PaymentMethod:        order.PaymentCash,
		RealTotal:            decimal.RequireFromString("210.50"),
		PreparationStartTime: &start,
		PreparationElapsed:   time.Hour,
	}

	resp := OrderToResponse(o, now)
	assert.Equal(t, "0f5c2a1e", resp.ShortID)
	assert.Equal(t, int64(3610000), resp.ElapsedMs)
	assert.Equal(t, []lifecycle.Event{lifecycle.EventSend}, resp.AllowedActions)
}
