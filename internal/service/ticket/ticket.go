// Package ticket renders orders as fixed-width thermal printer receipts.
package ticket

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/shopspring/decimal"
)

// Format selects how much of the order a ticket shows.
type Format string

const (
	FormatSimple Format = "simple"
	FormatFull   Format = "full"
)

var ErrInvalidFormat = errors.New("invalid ticket format")

// ParseFormat defaults an empty value to the full ticket.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "":
		return FormatFull, nil
	case FormatSimple, FormatFull:
		return Format(s), nil
	default:
		return "", ErrInvalidFormat
	}
}

const (
	shortRule  = "--------------------------------"
	longRule   = "----------------------------------------"
	nameWidth  = 20
	dateLayout = "02/01/2006 15:04"
)

// Printer renders tickets under a shop header.
type Printer struct {
	shopName string
	now      func() time.Time
}

// option is a function that configures the Printer.
type option func(*Printer)

// NewPrinter creates a Printer for shopName.
func NewPrinter(shopName string, opts ...option) *Printer {
	p := &Printer{shopName: shopName, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithClock replaces time.Now for the print time.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(p *Printer) {
		p.now = now
	}
}

// Render returns the ticket text for o.
func (p *Printer) Render(o order.Order, f Format) (string, error) {
	switch f {
	case FormatSimple:
		return p.simple(o), nil
	case FormatFull:
		return p.full(o), nil
	default:
		return "", ErrInvalidFormat
	}
}

func (p *Printer) simple(o order.Order) string {
	var b strings.Builder

	line(&b, p.shopName)
	line(&b, shortRule)
	line(&b, "FOLIO: "+o.ID)
	line(&b, "FECHA: "+p.date(o))
	line(&b, shortRule)
	line(&b, "PRODUCTOS:")
	if len(o.Items) == 0 {
		line(&b, o.ItemSummary)
	}
	for _, it := range o.Items {
		line(&b, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
	}
	line(&b, shortRule)
	line(&b, "CLIENTE: "+o.CustomerName)
	if o.CustomerPhone != "" {
		line(&b, "TEL: "+o.CustomerPhone)
	}

	return b.String()
}

func (p *Printer) full(o order.Order) string {
	var b strings.Builder

	line(&b, "      "+p.shopName)
	line(&b, shortRule)
	line(&b, "FOLIO PEDIDO: "+o.ID)
	line(&b, "FOLIO WEB: "+orNA(o.FolioWeb))
	line(&b, "FECHA: "+p.date(o))
	line(&b, shortRule)
	line(&b, "CLIENTE: "+o.CustomerName)
	line(&b, "TEL: "+orNA(o.CustomerPhone))
	line(&b, shortRule)
	if len(o.Items) == 0 {
		line(&b, "PRODUCTOS:")
		line(&b, o.ItemSummary)
	} else {
		line(&b, "CANT PRODUCTO             P.UNIT.    TOTAL")
		line(&b, longRule)
		for _, it := range o.Items {
			line(&b, itemRow(it))
		}
	}
	line(&b, shortRule)
	line(&b, "FORMA DE PAGO: "+paymentLabel(o.PaymentMethod))
	line(&b, "TOTAL PARCIAL: "+amount(o.Subtotal))
	line(&b, "TOTAL REAL:    "+amount(o.RealTotal))
	if o.PaidWith.Valid {
		line(&b, "PAGA CON:      "+amount(o.PaidWith.Decimal))
	}
	if o.ChangeGiven.Valid {
		line(&b, "CAMBIO:        "+amount(o.ChangeGiven.Decimal))
	}
	line(&b, shortRule)
	if settlement, ok := driverSettlement(o); ok {
		line(&b, "LIQUIDACIÓN REPARTIDOR: "+amount(settlement))
		line(&b, shortRule)
	}
	line(&b, "¡GRACIAS POR SU COMPRA!")

	return b.String()
}

// driverSettlement is shown only on paid orders where the driver carried change.
func driverSettlement(o order.Order) (decimal.Decimal, bool) {
	if o.Status != order.StatusPaid || !o.DriverCarriesChange || !o.DriverSettlement.Valid {
		return decimal.Decimal{}, false
	}
	if !o.ChangeGiven.Valid || !o.ChangeGiven.Decimal.IsPositive() {
		return decimal.Decimal{}, false
	}

	return o.DriverSettlement.Decimal, true
}

func itemRow(it order.LineItem) string {
	return fmt.Sprintf("%3d %s %10s %10s", it.Quantity, fit(it.Name, nameWidth), amount(it.UnitPrice), amount(it.ItemTotal))
}

// fit pads or cuts s to exactly width runes.
func fit(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return string([]rune(s)[:width])
	}

	return s + strings.Repeat(" ", width-n)
}

func amount(d decimal.Decimal) string {
	return "MXN$" + d.StringFixed(2)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}

	return s
}

func paymentLabel(m order.PaymentMethod) string {
	switch m {
	case order.PaymentCard:
		return "TARJETA"
	case order.PaymentCash:
		return "EFECTIVO"
	default:
		return strings.ToUpper(m.String())
	}
}

func (p *Printer) date(o order.Order) string {
	if o.CreatedAt.IsZero() {
		return p.now().Format(dateLayout)
	}

	return o.CreatedAt.Format(dateLayout)
}

func line(b *strings.Builder, s string) {
	b.WriteString(s)
	b.WriteByte('\n')
}
