package billing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-table-service/internal/apperr"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeChargesAndDiscount(t *testing.T) {
	cases := []struct {
		name      string
		subtotal  string
		charges   []ExtraCharge
		discount  *Discount
		wantExtra string
		wantDisc  string
		wantFinal string
	}{
		{
			name:      "no charges no discount",
			subtotal:  "100",
			wantExtra: "0", wantDisc: "0", wantFinal: "100",
		},
		{
			name:     "percentage charge with fixed discount",
			subtotal: "100",
			charges:  []ExtraCharge{{Description: "service", Amount: dec("10"), IsPercentage: true}},
			discount: &Discount{Amount: dec("5")},
			wantExtra: "10", wantDisc: "5", wantFinal: "105",
		},
		{
			name:     "mixed charges accumulate",
			subtotal: "200",
			charges: []ExtraCharge{
				{Description: "service", Amount: dec("5"), IsPercentage: true},
				{Description: "delivery", Amount: dec("3.50")},
			},
			wantExtra: "13.5", wantDisc: "0", wantFinal: "213.5",
		},
		{
			name:     "percentage discount",
			subtotal: "80",
			discount: &Discount{Amount: dec("25"), IsPercentage: true},
			wantExtra: "0", wantDisc: "20", wantFinal: "60",
		},
		{
			name:     "final floored at zero",
			subtotal: "10",
			discount: &Discount{Amount: dec("50")},
			wantExtra: "0", wantDisc: "50", wantFinal: "0",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Compute(dec(tc.subtotal), tc.charges, tc.discount)
			if !got.ExtraTotal.Equal(dec(tc.wantExtra)) {
				t.Errorf("ExtraTotal = %s, want %s", got.ExtraTotal, tc.wantExtra)
			}
			if !got.DiscountTotal.Equal(dec(tc.wantDisc)) {
				t.Errorf("DiscountTotal = %s, want %s", got.DiscountTotal, tc.wantDisc)
			}
			if !got.FinalAmount.Equal(dec(tc.wantFinal)) {
				t.Errorf("FinalAmount = %s, want %s", got.FinalAmount, tc.wantFinal)
			}
		})
	}
}

func TestComputeNoAccumulationRounding(t *testing.T) {
	// Three 3.333% charges on 10.00: rounding during accumulation would
	// give 0.33*3 = 0.99, full precision gives 0.9999 which rounds to 1.00.
	charges := []ExtraCharge{
		{Amount: dec("3.333"), IsPercentage: true},
		{Amount: dec("3.333"), IsPercentage: true},
		{Amount: dec("3.333"), IsPercentage: true},
	}
	got := Compute(dec("10"), charges, nil).Rounded()
	if !got.ExtraTotal.Equal(dec("1.00")) {
		t.Fatalf("rounded ExtraTotal = %s, want 1.00", got.ExtraTotal)
	}
}

func TestCheckPaymentCash(t *testing.T) {
	received := dec("105.00")
	change, err := CheckPayment(dec("100.00"), MethodCash, &received)
	if err != nil {
		t.Fatalf("CheckPayment = %v, want nil", err)
	}
	if !change.Equal(dec("5.00")) {
		t.Fatalf("change = %s, want 5.00", change)
	}

	short := dec("90")
	if _, err := CheckPayment(dec("100"), MethodCash, &short); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("short cash = %v, want ErrValidation", err)
	}
	if _, err := CheckPayment(dec("100"), MethodCash, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("missing received = %v, want ErrValidation", err)
	}
}

func TestCheckPaymentNothingToCollect(t *testing.T) {
	if _, err := CheckPayment(decimal.Zero, MethodCard, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("zero final = %v, want ErrValidation", err)
	}
	if _, err := CheckPayment(dec("-1"), MethodCard, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("negative final = %v, want ErrValidation", err)
	}
}

func TestCheckPaymentCardIgnoresReceived(t *testing.T) {
	change, err := CheckPayment(dec("42.50"), MethodCard, nil)
	if err != nil {
		t.Fatalf("card payment = %v, want nil", err)
	}
	if !change.IsZero() {
		t.Fatalf("card change = %s, want 0", change)
	}
}

func TestValidateCharges(t *testing.T) {
	bad := []ExtraCharge{{Description: "oops", Amount: dec("-1")}}
	if err := ValidateCharges(bad); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("negative charge = %v, want ErrValidation", err)
	}
	over := []ExtraCharge{{Description: "fee", Amount: dec("150"), IsPercentage: true}}
	if err := ValidateCharges(over); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("over-100%% charge = %v, want ErrValidation", err)
	}
	ok := []ExtraCharge{{Description: "fee", Amount: dec("150")}}
	if err := ValidateCharges(ok); err != nil {
		t.Fatalf("fixed charge over 100 = %v, want nil", err)
	}
}

func TestValidateDiscount(t *testing.T) {
	if err := ValidateDiscount(nil); err != nil {
		t.Fatalf("nil discount = %v, want nil", err)
	}
	if err := ValidateDiscount(&Discount{Amount: dec("-5")}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("negative discount = %v, want ErrValidation", err)
	}
	if err := ValidateDiscount(&Discount{Amount: dec("101"), IsPercentage: true}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("over-100%% discount = %v, want ErrValidation", err)
	}
}
