package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/iliyamo/restaurant-table-service/internal/apperr"
	"github.com/iliyamo/restaurant-table-service/internal/status"
)

func TestAdvanceIsMonotonic(t *testing.T) {
	cases := []struct {
		name    string
		current string
		target  string
		want    string
	}{
		{"forward one step", Seated, Ordering, Ordering},
		{"forward with skip", Seated, Dining, Dining},
		{"no backwards move", Dining, Ordering, Dining},
		{"same state stays", Ordered, Ordered, Ordered},
		{"unknown target ignored", Seated, "PAUSED", Seated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Advance(tc.current, tc.target); got != tc.want {
				t.Fatalf("Advance(%s, %s) = %s, want %s", tc.current, tc.target, got, tc.want)
			}
		})
	}
}

func TestAfterOrderEvent(t *testing.T) {
	cases := []struct {
		orderStatus string
		want        string
	}{
		{status.Pending, Ordering},
		{status.Confirmed, Ordered},
		{status.Preparing, Ordered},
		{status.Ready, Dining},
		{status.Delivered, Dining},
		{status.Completed, ""},
		{status.Cancelled, ""},
	}
	for _, tc := range cases {
		if got := AfterOrderEvent(tc.orderStatus); got != tc.want {
			t.Errorf("AfterOrderEvent(%s) = %q, want %q", tc.orderStatus, got, tc.want)
		}
	}
}

func TestActiveSet(t *testing.T) {
	for _, s := range []string{Seated, Ordering, Ordered, Dining, Billing} {
		if !Active(s) {
			t.Errorf("Active(%s) = false, want true", s)
		}
	}
	for _, s := range []string{Waiting, Completed} {
		if Active(s) {
			t.Errorf("Active(%s) = true, want false", s)
		}
	}
}

func TestCheckSeat(t *testing.T) {
	if err := CheckSeat(Waiting); err != nil {
		t.Fatalf("CheckSeat(WAITING) = %v, want nil", err)
	}
	for _, s := range []string{Seated, Dining, Completed} {
		if err := CheckSeat(s); !errors.Is(err, apperr.ErrInvalidState) {
			t.Errorf("CheckSeat(%s) = %v, want ErrInvalidState", s, err)
		}
	}
}

func TestCheckCheckout(t *testing.T) {
	if err := CheckCheckout(Billing, false); err != nil {
		t.Fatalf("CheckCheckout(BILLING, unpaid) = %v, want nil", err)
	}
	if err := CheckCheckout(Dining, true); err != nil {
		t.Fatalf("CheckCheckout(DINING, paid) = %v, want nil", err)
	}
	if err := CheckCheckout(Dining, false); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("CheckCheckout(DINING, unpaid) = %v, want ErrInvalidState", err)
	}
	if err := CheckCheckout(Seated, true); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("CheckCheckout(SEATED, paid) = %v, want ErrInvalidState", err)
	}
}

func TestCheckRemoveWaiting(t *testing.T) {
	if err := CheckRemoveWaiting(Waiting); err != nil {
		t.Fatalf("CheckRemoveWaiting(WAITING) = %v, want nil", err)
	}
	if err := CheckRemoveWaiting(Seated); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("CheckRemoveWaiting(SEATED) = %v, want ErrInvalidState", err)
	}
}

func TestLockerSerializesSameSession(t *testing.T) {
	l := NewLocker(8)
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Lock(42)
			counter++
			l.Unlock(42)
		}()
	}
	wg.Wait()
	if counter != 100 {
		t.Fatalf("counter = %d, want 100", counter)
	}
}
