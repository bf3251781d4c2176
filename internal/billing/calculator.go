// Package billing contains the pure money arithmetic of the service:
// the bill calculator and the bill splitter.  Everything operates on
// fixed-point decimals so accumulating many small items never drifts
// the way binary floats do; rounding to two decimals happens once, at
// the point of persistence or display, never during accumulation.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-table-service/internal/apperr"
)

// Payment methods accepted at the till.
const (
	MethodCash = "CASH"
	MethodCard = "CARD"
	MethodQR   = "QR"
)

var hundred = decimal.NewFromInt(100)

// ExtraCharge is an additive fee applied before the discount, either a
// fixed amount or a percentage of the subtotal.
type ExtraCharge struct {
	Description  string
	Amount       decimal.Decimal
	IsPercentage bool
}

// Discount reduces the bill.  A bill carries at most one active
// discount, expressed as either a percentage or a fixed amount; the two
// forms are mutually exclusive.
type Discount struct {
	Amount       decimal.Decimal
	IsPercentage bool
}

// Totals is the output of Compute.  All values are kept at full
// precision; call Rounded before persisting or displaying.
type Totals struct {
	Subtotal      decimal.Decimal
	ExtraTotal    decimal.Decimal
	DiscountTotal decimal.Decimal
	FinalAmount   decimal.Decimal
}

// Rounded returns a copy of the totals with every value rounded to two
// decimal places.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:      t.Subtotal.Round(2),
		ExtraTotal:    t.ExtraTotal.Round(2),
		DiscountTotal: t.DiscountTotal.Round(2),
		FinalAmount:   t.FinalAmount.Round(2),
	}
}

// Compute derives the final bill from a subtotal, an ordered list of
// extra charges and an optional discount.  Percentage charges and
// discounts are taken against the subtotal.  The final amount is
// floored at zero: no charge/discount combination can produce a
// negative bill.
func Compute(subtotal decimal.Decimal, charges []ExtraCharge, discount *Discount) Totals {
	extra := decimal.Zero
	for _, ch := range charges {
		if ch.IsPercentage {
			extra = extra.Add(subtotal.Mul(ch.Amount).Div(hundred))
		} else {
			extra = extra.Add(ch.Amount)
		}
	}
	disc := decimal.Zero
	if discount != nil {
		if discount.IsPercentage {
			disc = subtotal.Mul(discount.Amount).Div(hundred)
		} else {
			disc = discount.Amount
		}
	}
	final := subtotal.Add(extra).Sub(disc)
	if final.IsNegative() {
		final = decimal.Zero
	}
	return Totals{
		Subtotal:      subtotal,
		ExtraTotal:    extra,
		DiscountTotal: disc,
		FinalAmount:   final,
	}
}

// ValidateCharges rejects charges with negative amounts or percentage
// charges above 100.
func ValidateCharges(charges []ExtraCharge) error {
	for _, ch := range charges {
		if ch.Amount.IsNegative() {
			return apperr.Validationf("extra charge %q has negative amount", ch.Description)
		}
		if ch.IsPercentage && ch.Amount.GreaterThan(hundred) {
			return apperr.Validationf("extra charge %q exceeds 100%%", ch.Description)
		}
	}
	return nil
}

// ValidateDiscount rejects a negative discount or a percentage above 100.
func ValidateDiscount(d *Discount) error {
	if d == nil {
		return nil
	}
	if d.Amount.IsNegative() {
		return apperr.Validationf("discount amount is negative")
	}
	if d.IsPercentage && d.Amount.GreaterThan(hundred) {
		return apperr.Validationf("discount exceeds 100%%")
	}
	return nil
}

// CheckPayment validates that a payment attempt can proceed and returns
// the change due for cash payments.  A final amount of zero or less
// means there is nothing to collect; cash payments must tender at least
// the final amount.  Monetary validation failures are fatal to the
// attempt, never retried.
func CheckPayment(final decimal.Decimal, method string, received *decimal.Decimal) (decimal.Decimal, error) {
	if !final.IsPositive() {
		return decimal.Zero, apperr.Validationf("final amount %s leaves nothing to collect", final.Round(2))
	}
	if method != MethodCash {
		return decimal.Zero, nil
	}
	if received == nil {
		return decimal.Zero, apperr.Validationf("cash payment requires received_amount")
	}
	if received.LessThan(final) {
		return decimal.Zero, apperr.Validationf("received %s is less than final amount %s",
			received.Round(2), final.Round(2))
	}
	return received.Sub(final), nil
}
