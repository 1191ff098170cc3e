// Package lifecycle defines the order status transitions and the payload each one writes.
package lifecycle

import (
	"sort"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/elapsed"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/money"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/shopspring/decimal"
)

// Event is a staff action that moves an order.
type Event string

const (
	EventAccept   Event = "accept"
	EventCancel   Event = "cancel"
	EventSend     Event = "send"
	EventDeliver  Event = "deliver"
	EventMarkPaid Event = "mark-paid"
	EventDelete   Event = "delete"
	EventEdit     Event = "edit"
)

var transitions = map[order.Status]map[Event]order.Status{
	order.StatusNew: {
		EventAccept: order.StatusPreparing,
		EventCancel: order.StatusCancelled,
	},
	order.StatusPreparing: {
		EventSend: order.StatusShipped,
	},
	order.StatusShipped: {
		EventDeliver:  order.StatusDelivered,
		EventMarkPaid: order.StatusPaid,
	},
	order.StatusDelivered: {
		EventSend:     order.StatusShipped,
		EventMarkPaid: order.StatusPaid,
	},
}

// Next returns the status ev leads to from from.
func Next(from order.Status, ev Event) (order.Status, error) {
	to, ok := transitions[from][ev]
	if !ok {
		return "", &order.InvalidTransitionError{From: from, Event: string(ev)}
	}

	return to, nil
}

// CanTransition reports whether some event moves an order from one status to another.
func CanTransition(from, to order.Status) bool {
	for _, target := range transitions[from] {
		if target == to {
			return true
		}
	}

	return false
}

// Allowed lists the events valid from status, delete included for terminal ones.
func Allowed(from order.Status) []Event {
	events := make([]Event, 0, len(transitions[from])+1)
	for ev := range transitions[from] {
		events = append(events, ev)
	}
	if from.IsTerminal() {
		events = append(events, EventDelete)
	}
	sort.Slice(events, func(i, j int) bool { return events[i] < events[j] })

	return events
}

// Accept starts preparation.
func Accept(o order.Order, now time.Time) (order.Patch, error) {
	to, err := Next(o.Status, EventAccept)
	if err != nil {
		return order.Patch{}, err
	}
	start := now

	return order.Patch{
		Status:               order.Set(to),
		PreparationStartTime: order.Set(&start),
	}, nil
}

// Cancel moves a new order to history.
func Cancel(o order.Order) (order.Patch, error) {
	to, err := Next(o.Status, EventCancel)
	if err != nil {
		return order.Patch{}, err
	}

	return order.Patch{Status: order.Set(to)}, nil
}

// Reconciliation is the staff input of the send step.
type Reconciliation struct {
	// RealTotal overrides the current real total when valid.
	RealTotal decimal.NullDecimal
	// PaidWith defaults to the real total for cash when not valid.
	PaidWith decimal.NullDecimal
	// PaymentMethod keeps the order's method when empty.
	PaymentMethod       order.PaymentMethod
	FolioWeb            string
	DriverCarriesChange bool
}

// SendResult is the payload of the send step plus the figures shown to staff.
type SendResult struct {
	Patch             order.Patch
	ChangeGiven       decimal.NullDecimal
	SettlementPreview decimal.NullDecimal
}

// Send reconciles payment and ships the order. From Preparing it freezes the
// preparation time; a resend from Delivered keeps the frozen value.
func Send(o order.Order, rec Reconciliation, now time.Time) (SendResult, error) {
	to, err := Next(o.Status, EventSend)
	if err != nil {
		return SendResult{}, err
	}

	realTotal := o.RealTotal
	if rec.RealTotal.Valid {
		realTotal = rec.RealTotal.Decimal
	}
	if realTotal.IsNegative() {
		return SendResult{}, order.NewValidationError("realTotal", "must not be negative")
	}

	method := o.PaymentMethod
	if rec.PaymentMethod != "" {
		if _, err := order.ParsePaymentMethod(rec.PaymentMethod.String()); err != nil {
			return SendResult{}, order.NewValidationError("paymentMethod", err.Error())
		}
		method = rec.PaymentMethod
	}

	folio := o.FolioWeb
	if rec.FolioWeb != "" {
		folio = rec.FolioWeb
	}

	var paidWith, change, preview decimal.NullDecimal
	carries := false
	if method == order.PaymentCash {
		paid := realTotal
		if rec.PaidWith.Valid {
			paid = rec.PaidWith.Decimal
		}
		if paid.LessThan(realTotal) {
			return SendResult{}, order.NewValidationError("paidWith", "must cover the real total")
		}
		c := money.ChangeGiven(paid, realTotal)
		paidWith = decimal.NewNullDecimal(paid)
		change = decimal.NewNullDecimal(c)
		carries = rec.DriverCarriesChange && c.IsPositive()
		if carries {
			preview = decimal.NewNullDecimal(money.DriverSettlement(realTotal, c))
		}
	}

	patch := order.Patch{
		Status:              order.Set(to),
		RealTotal:           order.Set(realTotal),
		PaymentMethod:       order.Set(method),
		PaidWith:            order.Set(paidWith),
		ChangeGiven:         order.Set(change),
		DriverCarriesChange: order.Set(carries),
		DriverSettlement:    order.Set(decimal.NullDecimal{}),
		FolioWeb:            order.Set(folio),
	}
	if o.Status == order.StatusPreparing {
		patch.PreparationElapsed = order.Set(elapsed.Compute(o.PreparationStartTime, o.PreparationElapsed, true, now))
		patch.PreparationStartTime = order.Set[*time.Time](nil)
	}

	return SendResult{Patch: patch, ChangeGiven: change, SettlementPreview: preview}, nil
}

// Deliver records that a shipped order reached the customer.
func Deliver(o order.Order) (order.Patch, error) {
	to, err := Next(o.Status, EventDeliver)
	if err != nil {
		return order.Patch{}, err
	}

	return order.Patch{Status: order.Set(to)}, nil
}

// MarkPaid closes the order. The settlement is computed from the persisted
// reconciliation fields and is present only when the driver carried change.
func MarkPaid(o order.Order) (order.Patch, error) {
	to, err := Next(o.Status, EventMarkPaid)
	if err != nil {
		return order.Patch{}, err
	}

	var settlement decimal.NullDecimal
	if o.DriverCarriesChange && o.ChangeGiven.Valid && o.ChangeGiven.Decimal.IsPositive() {
		settlement = decimal.NewNullDecimal(money.DriverSettlement(o.RealTotal, o.ChangeGiven.Decimal))
	}

	return order.Patch{
		Status:           order.Set(to),
		DriverSettlement: order.Set(settlement),
	}, nil
}

// CheckDelete allows deleting terminal orders only.
func CheckDelete(o order.Order) error {
	if !o.Status.IsTerminal() {
		return &order.InvalidTransitionError{From: o.Status, Event: string(EventDelete)}
	}

	return nil
}

// CheckEdit guards a free-form edit. Status and reconciliation results are
// written by the transition payloads only. Terminal orders take no edits, and
// shipped orders keep their items, delivery and confirmed payment; a resend
// from Delivered is the way to correct the latter.
func CheckEdit(o order.Order, p order.Patch) error {
	if p.Status.Set {
		return &order.InvalidTransitionError{From: o.Status, Event: "move to " + p.Status.Value.String()}
	}
	if p.TouchesLifecycle() || o.Status.IsTerminal() {
		return &order.InvalidTransitionError{From: o.Status, Event: string(EventEdit)}
	}
	if o.Status.IsShippedOrLater() && (p.TouchesContent() || p.TouchesReconciliation()) {
		return &order.InvalidTransitionError{From: o.Status, Event: string(EventEdit)}
	}

	return nil
}
