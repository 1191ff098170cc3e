package order

import (
	"database/sql/driver"
	"errors"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

var ErrInvalidPaymentMethod = errors.New("invalid payment method")

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return m.String(), nil
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentCard:
		return PaymentMethod(s), nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}
