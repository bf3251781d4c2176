package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-table-service/internal/apperr"
)

// Split strategies.
const (
	SplitEqualStrategy    = "EQUAL"
	SplitByPersonStrategy = "BY_PERSON"
	SplitByItemStrategy   = "BY_ITEM"
)

// Share payment states.
const (
	ShareUnpaid  = "UNPAID"
	SharePartial = "PARTIAL"
	SharePaid    = "PAID"
)

// SplitShare is one payer's computed portion of a split.  Amounts are
// already rounded to cents; the splitter guarantees EQUAL splits sum to
// the total exactly.
type SplitShare struct {
	Label  string
	Amount decimal.Decimal
}

// PersonAmount is a caller-supplied (label, amount) pair for BY_PERSON
// splits.
type PersonAmount struct {
	Label  string
	Amount decimal.Decimal
}

// ItemAssignment maps one order item to a payer for BY_ITEM splits.  A
// negative payer index means the item was left unassigned and defaults
// to payer 0.
type ItemAssignment struct {
	UnitPrice decimal.Decimal
	Quantity  uint32
	Payer     int
}

// SplitEqual divides the total evenly among n people.  The division is
// done in integer cents; any remainder cents land on the first share so
// the shares always sum to the total exactly, never losing or gaining a
// cent.
func SplitEqual(total decimal.Decimal, people int) ([]SplitShare, error) {
	if people < 2 {
		return nil, apperr.Validationf("equal split needs at least 2 people, got %d", people)
	}
	if !total.IsPositive() {
		return nil, apperr.Validationf("cannot split non-positive total %s", total.Round(2))
	}
	cents := total.Round(2).Shift(2).IntPart()
	per := cents / int64(people)
	rem := cents % int64(people)
	shares := make([]SplitShare, people)
	for i := range shares {
		amount := per
		if i == 0 {
			amount += rem
		}
		shares[i] = SplitShare{
			Label:  fmt.Sprintf("Payer %d", i+1),
			Amount: decimal.New(amount, -2),
		}
	}
	return shares, nil
}

// SplitByPerson accepts explicit per-payer amounts.  The amounts are
// deliberately not required to sum to the total: staff may round or
// fold a tip into one share.  The signed difference total - Σamounts is
// returned as the variance so the caller can surface it instead of the
// splitter silently rejecting the split.
func SplitByPerson(total decimal.Decimal, people []PersonAmount) ([]SplitShare, decimal.Decimal, error) {
	if len(people) < 2 {
		return nil, decimal.Zero, apperr.Validationf("by-person split needs at least 2 entries, got %d", len(people))
	}
	shares := make([]SplitShare, len(people))
	sum := decimal.Zero
	for i, p := range people {
		if p.Amount.IsNegative() {
			return nil, decimal.Zero, apperr.Validationf("share for %q is negative", p.Label)
		}
		label := p.Label
		if label == "" {
			label = fmt.Sprintf("Payer %d", i+1)
		}
		amount := p.Amount.Round(2)
		shares[i] = SplitShare{Label: label, Amount: amount}
		sum = sum.Add(amount)
	}
	return shares, total.Round(2).Sub(sum), nil
}

// SplitByItem assigns each item's line total to its payer.  Items with
// a negative payer index default to payer 0.  Every payer up to the
// requested count appears in the result, so a payer with nothing
// assigned yet shows up as a zero share staff can assign to afterward.
func SplitByItem(items []ItemAssignment, payers int, labels []string) ([]SplitShare, error) {
	if payers < 2 {
		return nil, apperr.Validationf("by-item split needs at least 2 payers, got %d", payers)
	}
	if len(items) == 0 {
		return nil, apperr.Validationf("by-item split needs at least one item")
	}
	shares := make([]SplitShare, payers)
	for i := range shares {
		label := fmt.Sprintf("Payer %d", i+1)
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}
		shares[i] = SplitShare{Label: label, Amount: decimal.Zero}
	}
	for i, it := range items {
		payer := it.Payer
		if payer < 0 {
			payer = 0
		}
		if payer >= payers {
			return nil, apperr.Validationf("item %d assigned to unknown payer %d", i, it.Payer)
		}
		line := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		shares[payer].Amount = shares[payer].Amount.Add(line)
	}
	for i := range shares {
		shares[i].Amount = shares[i].Amount.Round(2)
	}
	return shares, nil
}

// ApplySharePayment accumulates a payment into a share and derives the
// resulting status.  The amount must be positive; overpayment is
// accepted and simply marks the share PAID.
func ApplySharePayment(owed, paidSoFar, amount decimal.Decimal) (decimal.Decimal, string, error) {
	if !amount.IsPositive() {
		return paidSoFar, "", apperr.Validationf("share payment must be positive, got %s", amount.Round(2))
	}
	paid := paidSoFar.Add(amount)
	switch {
	case paid.GreaterThanOrEqual(owed):
		return paid, SharePaid, nil
	case paid.IsPositive():
		return paid, SharePartial, nil
	default:
		return paid, ShareUnpaid, nil
	}
}
