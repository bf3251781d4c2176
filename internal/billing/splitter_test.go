package billing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-table-service/internal/apperr"
)

func sumShares(shares []SplitShare) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.Amount)
	}
	return sum
}

func TestSplitEqualExactSum(t *testing.T) {
	cases := []struct {
		total  string
		people int
	}{
		{"100.00", 2},
		{"100.00", 3},
		{"0.05", 4},
		{"33.33", 3},
		{"99.99", 7},
		{"1234.56", 11},
	}
	for _, tc := range cases {
		shares, err := SplitEqual(dec(tc.total), tc.people)
		if err != nil {
			t.Fatalf("SplitEqual(%s, %d) = %v", tc.total, tc.people, err)
		}
		if len(shares) != tc.people {
			t.Fatalf("got %d shares, want %d", len(shares), tc.people)
		}
		if !sumShares(shares).Equal(dec(tc.total)) {
			t.Errorf("SplitEqual(%s, %d): shares sum to %s", tc.total, tc.people, sumShares(shares))
		}
		// remainder cents always land on the first share
		for i := 1; i < len(shares); i++ {
			if shares[i].Amount.GreaterThan(shares[0].Amount) {
				t.Errorf("share %d (%s) exceeds first share (%s)", i, shares[i].Amount, shares[0].Amount)
			}
		}
	}
}

func TestSplitEqualRemainderOnFirstShare(t *testing.T) {
	shares, err := SplitEqual(dec("100.00"), 3)
	if err != nil {
		t.Fatal(err)
	}
	if !shares[0].Amount.Equal(dec("33.34")) {
		t.Errorf("first share = %s, want 33.34", shares[0].Amount)
	}
	if !shares[1].Amount.Equal(dec("33.33")) || !shares[2].Amount.Equal(dec("33.33")) {
		t.Errorf("tail shares = %s, %s, want 33.33 each", shares[1].Amount, shares[2].Amount)
	}
}

func TestSplitEqualValidation(t *testing.T) {
	if _, err := SplitEqual(dec("50"), 1); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("one person = %v, want ErrValidation", err)
	}
	if _, err := SplitEqual(decimal.Zero, 2); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("zero total = %v, want ErrValidation", err)
	}
}

func TestSplitByPersonVariance(t *testing.T) {
	people := []PersonAmount{
		{Label: "Alice", Amount: dec("40")},
		{Label: "Bob", Amount: dec("50")},
	}
	shares, variance, err := SplitByPerson(dec("100"), people)
	if err != nil {
		t.Fatal(err)
	}
	if !variance.Equal(dec("10")) {
		t.Errorf("variance = %s, want 10", variance)
	}
	if shares[0].Label != "Alice" || !shares[0].Amount.Equal(dec("40")) {
		t.Errorf("share 0 = %+v", shares[0])
	}

	// overshooting the total yields a negative variance, still accepted
	people[1].Amount = dec("70")
	_, variance, err = SplitByPerson(dec("100"), people)
	if err != nil {
		t.Fatal(err)
	}
	if !variance.Equal(dec("-10")) {
		t.Errorf("variance = %s, want -10", variance)
	}
}

func TestSplitByPersonValidation(t *testing.T) {
	if _, _, err := SplitByPerson(dec("100"), []PersonAmount{{Label: "solo", Amount: dec("100")}}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("single entry = %v, want ErrValidation", err)
	}
	bad := []PersonAmount{{Label: "a", Amount: dec("-1")}, {Label: "b", Amount: dec("2")}}
	if _, _, err := SplitByPerson(dec("1"), bad); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("negative amount = %v, want ErrValidation", err)
	}
}

func TestSplitByItem(t *testing.T) {
	items := []ItemAssignment{
		{UnitPrice: dec("12.50"), Quantity: 2, Payer: 0}, // 25.00
		{UnitPrice: dec("8.00"), Quantity: 1, Payer: 1},  // 8.00
		{UnitPrice: dec("3.00"), Quantity: 3, Payer: -1}, // unassigned -> payer 0
	}
	shares, err := SplitByItem(items, 3, []string{"Alice", "Bob"})
	if err != nil {
		t.Fatal(err)
	}
	if !shares[0].Amount.Equal(dec("34.00")) {
		t.Errorf("payer 0 = %s, want 34.00", shares[0].Amount)
	}
	if !shares[1].Amount.Equal(dec("8.00")) {
		t.Errorf("payer 1 = %s, want 8.00", shares[1].Amount)
	}
	// payer with no items still appears as a zero share
	if !shares[2].Amount.IsZero() {
		t.Errorf("payer 2 = %s, want 0", shares[2].Amount)
	}
	if shares[2].Label != "Payer 3" {
		t.Errorf("payer 2 label = %q, want default", shares[2].Label)
	}
	if !sumShares(shares).Equal(dec("42.00")) {
		t.Errorf("shares sum = %s, want 42.00", sumShares(shares))
	}
}

func TestSplitByItemReassignmentMovesExactlyThatItem(t *testing.T) {
	items := []ItemAssignment{
		{UnitPrice: dec("10.00"), Quantity: 1, Payer: 0},
		{UnitPrice: dec("6.00"), Quantity: 2, Payer: 0},
	}
	before, err := SplitByItem(items, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	items[1].Payer = 1
	after, err := SplitByItem(items, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	moved := before[0].Amount.Sub(after[0].Amount)
	if !moved.Equal(dec("12.00")) {
		t.Errorf("payer 0 lost %s, want 12.00", moved)
	}
	if !after[1].Amount.Sub(before[1].Amount).Equal(dec("12.00")) {
		t.Errorf("payer 1 gained %s, want 12.00", after[1].Amount.Sub(before[1].Amount))
	}
}

func TestSplitByItemValidation(t *testing.T) {
	items := []ItemAssignment{{UnitPrice: dec("1"), Quantity: 1, Payer: 5}}
	if _, err := SplitByItem(items, 2, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("out-of-range payer = %v, want ErrValidation", err)
	}
	if _, err := SplitByItem(nil, 2, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("no items = %v, want ErrValidation", err)
	}
	if _, err := SplitByItem(items, 1, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("single payer = %v, want ErrValidation", err)
	}
}

func TestApplySharePayment(t *testing.T) {
	owed := dec("50.00")

	paid, st, err := ApplySharePayment(owed, decimal.Zero, dec("20"))
	if err != nil || st != SharePartial || !paid.Equal(dec("20")) {
		t.Fatalf("partial payment: paid=%s status=%s err=%v", paid, st, err)
	}

	paid, st, err = ApplySharePayment(owed, paid, dec("30"))
	if err != nil || st != SharePaid || !paid.Equal(dec("50")) {
		t.Fatalf("completing payment: paid=%s status=%s err=%v", paid, st, err)
	}

	// overpayment stays PAID
	paid, st, err = ApplySharePayment(owed, dec("45"), dec("10"))
	if err != nil || st != SharePaid || !paid.Equal(dec("55")) {
		t.Fatalf("overpayment: paid=%s status=%s err=%v", paid, st, err)
	}

	if _, _, err := ApplySharePayment(owed, decimal.Zero, decimal.Zero); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("zero amount = %v, want ErrValidation", err)
	}
	if _, _, err := ApplySharePayment(owed, decimal.Zero, dec("-5")); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("negative amount = %v, want ErrValidation", err)
	}
}
