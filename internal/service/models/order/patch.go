package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Opt is a patch field that is either present with a value or absent.
type Opt[T any] struct {
	Value T
	Set   bool
}

// Set returns a present field.
func Set[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Set: true}
}

// Patch is a partial update: absent fields keep the current value.
type Patch struct {
	CustomerName         Opt[string]
	CustomerPhone        Opt[string]
	DeliveryAddress      Opt[string]
	DeliveryZoneID       Opt[string]
	DeliveryCost         Opt[decimal.Decimal]
	Items                Opt[Items]
	PaymentMethod        Opt[PaymentMethod]
	Status               Opt[Status]
	Notes                Opt[string]
	RealTotal            Opt[decimal.Decimal]
	PaidWith             Opt[decimal.NullDecimal]
	ChangeGiven          Opt[decimal.NullDecimal]
	DriverCarriesChange  Opt[bool]
	DriverSettlement     Opt[decimal.NullDecimal]
	FolioWeb             Opt[string]
	PreparationStartTime Opt[*time.Time]
	PreparationElapsed   Opt[time.Duration]
}

// TouchesContent reports whether the patch edits items or delivery pricing.
func (p Patch) TouchesContent() bool {
	return p.Items.Set || p.DeliveryZoneID.Set || p.DeliveryCost.Set
}

// TouchesReconciliation reports whether the patch edits fields the send step confirms.
func (p Patch) TouchesReconciliation() bool {
	return p.RealTotal.Set || p.PaymentMethod.Set || p.FolioWeb.Set
}

// TouchesLifecycle reports whether the patch writes fields only a transition payload may set.
func (p Patch) TouchesLifecycle() bool {
	return p.Status.Set ||
		p.PaidWith.Set ||
		p.ChangeGiven.Set ||
		p.DriverCarriesChange.Set ||
		p.DriverSettlement.Set ||
		p.PreparationStartTime.Set ||
		p.PreparationElapsed.Set
}

// Apply merges the present fields of p over a copy of o.
// Derived totals are not recomputed here.
func (p Patch) Apply(o Order) Order {
	o = o.Clone()
	if p.CustomerName.Set {
		o.CustomerName = p.CustomerName.Value
	}
	if p.CustomerPhone.Set {
		o.CustomerPhone = p.CustomerPhone.Value
	}
	if p.DeliveryAddress.Set {
		o.DeliveryAddress = p.DeliveryAddress.Value
	}
	if p.DeliveryZoneID.Set {
		o.DeliveryZoneID = p.DeliveryZoneID.Value
	}
	if p.DeliveryCost.Set {
		o.DeliveryCost = p.DeliveryCost.Value
	}
	if p.Items.Set {
		o.Items = p.Items.Value.Clone()
	}
	if p.PaymentMethod.Set {
		o.PaymentMethod = p.PaymentMethod.Value
	}
	if p.Status.Set {
		o.Status = p.Status.Value
	}
	if p.Notes.Set {
		o.Notes = p.Notes.Value
	}
	if p.RealTotal.Set {
		o.RealTotal = p.RealTotal.Value
	}
	if p.PaidWith.Set {
		o.PaidWith = p.PaidWith.Value
	}
	if p.ChangeGiven.Set {
		o.ChangeGiven = p.ChangeGiven.Value
	}
	if p.DriverCarriesChange.Set {
		o.DriverCarriesChange = p.DriverCarriesChange.Value
	}
	if p.DriverSettlement.Set {
		o.DriverSettlement = p.DriverSettlement.Value
	}
	if p.FolioWeb.Set {
		o.FolioWeb = p.FolioWeb.Value
	}
	if p.PreparationStartTime.Set {
		o.PreparationStartTime = nil
		if p.PreparationStartTime.Value != nil {
			t := *p.PreparationStartTime.Value
			o.PreparationStartTime = &t
		}
	}
	if p.PreparationElapsed.Set {
		o.PreparationElapsed = p.PreparationElapsed.Value
	}

	return o
}
