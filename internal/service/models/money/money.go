// Package money holds the pure arithmetic behind order totals.
// Malformed (negative) inputs are normalized to zero instead of failing.
package money

import "github.com/shopspring/decimal"

// Line is a quantity/price pair of a single order line.
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// nonNegative clamps d to zero.
func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}

	return d
}

// ItemTotal returns max(0, quantity) * max(0, unitPrice).
func ItemTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}

	return nonNegative(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
}

// Subtotal sums the item totals of lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(ItemTotal(l.Quantity, l.UnitPrice))
	}

	return sum
}

// GrandTotal returns subtotal + max(0, deliveryCost).
func GrandTotal(subtotal, deliveryCost decimal.Decimal) decimal.Decimal {
	return subtotal.Add(nonNegative(deliveryCost))
}

// ChangeGiven returns max(0, paidWith - realTotal).
// Callers must refuse paidWith < realTotal before calling it.
func ChangeGiven(paidWith, realTotal decimal.Decimal) decimal.Decimal {
	return nonNegative(paidWith.Sub(realTotal))
}

// DriverSettlement is the amount a driver who carried change turns in after the run.
func DriverSettlement(realTotal, changeGiven decimal.Decimal) decimal.Decimal {
	return realTotal.Add(changeGiven)
}
