// Package pricing computes sale totals. All arithmetic is decimal fixed-point;
// binary floats never touch money.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNegativeLineTotal is returned when a line discount exceeds the line's
// gross amount. The order-level discount is intentionally not checked the
// same way: a taxable amount below zero propagates into tax and total.
var ErrNegativeLineTotal = errors.New("line discount exceeds line total")

// currency precision, 2 decimal places
const places = 2

type LineItem struct {
	UnitPrice decimal.Decimal
	Quantity  int
	Discount  decimal.Decimal
}

type Quote struct {
	LineTotals    []decimal.Decimal
	Subtotal      decimal.Decimal
	TaxableAmount decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
	Change        decimal.Decimal
}

// Calculate prices a sale:
//
//	lineTotal = unitPrice*quantity - lineDiscount  (must not be negative)
//	subtotal  = sum(lineTotal)
//	taxable   = subtotal - discountAmount
//	tax       = taxable * taxRate
//	total     = taxable + tax
//	change    = max(amountPaid - total, 0)
//
// Under-payment does not fail; the caller sees change 0 and decides policy.
func Calculate(items []LineItem, discountAmount, amountPaid, taxRate decimal.Decimal) (Quote, error) {
	lineTotals := make([]decimal.Decimal, 0, len(items))
	subtotal := decimal.Zero

	for i, item := range items {
		gross := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lineTotal := gross.Sub(item.Discount).Round(places)
		if lineTotal.IsNegative() {
			return Quote{}, fmt.Errorf("item %d: %w", i, ErrNegativeLineTotal)
		}
		lineTotals = append(lineTotals, lineTotal)
		subtotal = subtotal.Add(lineTotal)
	}

	subtotal = subtotal.Round(places)
	taxable := subtotal.Sub(discountAmount).Round(places)
	tax := taxable.Mul(taxRate).Round(places)
	total := taxable.Add(tax).Round(places)

	change := amountPaid.Sub(total).Round(places)
	if change.IsNegative() {
		change = decimal.Zero.Round(places)
	}

	return Quote{
		LineTotals:    lineTotals,
		Subtotal:      subtotal,
		TaxableAmount: taxable,
		TaxAmount:     tax,
		Total:         total,
		Change:        change,
	}, nil
}

// LoyaltyPoints converts a sale total into earned points: one point per
// divisor currency units, floored. Never negative.
func LoyaltyPoints(total, divisor decimal.Decimal) int {
	if divisor.IsZero() || total.IsNegative() {
		return 0
	}
	return int(total.Div(divisor).IntPart())
}
