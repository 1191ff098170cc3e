package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestItemTotal(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		price    string
		want     string
	}{
		{name: "regular line", quantity: 2, price: "125.375", want: "250.75"},
		{name: "zero quantity", quantity: 0, price: "10", want: "0"},
		{name: "negative quantity clamps", quantity: -3, price: "10", want: "0"},
		{name: "negative price clamps", quantity: 3, price: "-10", want: "0"},
		{name: "free item", quantity: 5, price: "0", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ItemTotal(tt.quantity, dec(tt.price))
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestSubtotal(t *testing.T) {
	t.Run("sums every line", func(t *testing.T) {
		lines := []Line{
			{Quantity: 2, UnitPrice: dec("125.375")},
			{Quantity: 1, UnitPrice: dec("120.00")},
		}
		assert.Equal(t, "370.75", Subtotal(lines).String())
	})

	t.Run("negative terms contribute nothing", func(t *testing.T) {
		lines := []Line{
			{Quantity: 1, UnitPrice: dec("10")},
			{Quantity: -1, UnitPrice: dec("50")},
			{Quantity: 1, UnitPrice: dec("-50")},
		}
		assert.Equal(t, "10", Subtotal(lines).String())
	})

	t.Run("empty list", func(t *testing.T) {
		assert.True(t, Subtotal(nil).IsZero())
	})
}

func TestGrandTotal(t *testing.T) {
	subtotal := Subtotal([]Line{
		{Quantity: 2, UnitPrice: dec("125.375")},
		{Quantity: 1, UnitPrice: dec("120.00")},
	})
	assert.Equal(t, "420.75", GrandTotal(subtotal, dec("50")).String())
	assert.Equal(t, "370.75", GrandTotal(subtotal, dec("-5")).String())

	// monotonic in both arguments
	base := GrandTotal(dec("10"), dec("5"))
	assert.True(t, GrandTotal(dec("11"), dec("5")).GreaterThanOrEqual(base))
	assert.True(t, GrandTotal(dec("10"), dec("6")).GreaterThanOrEqual(base))
}

func TestChangeGivenAndSettlement(t *testing.T) {
	change := ChangeGiven(dec("250.00"), dec("210.50"))
	assert.Equal(t, "39.5", change.String())
	assert.Equal(t, "250", DriverSettlement(dec("210.50"), change).String())

	assert.True(t, ChangeGiven(dec("200"), dec("210.50")).IsZero())
	assert.True(t, ChangeGiven(dec("210.50"), dec("210.50")).IsZero())
}
