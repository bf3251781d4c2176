package status

import (
	"errors"
	"testing"

	"github.com/iliyamo/restaurant-table-service/internal/apperr"
)

func TestTransitionAdjacency(t *testing.T) {
	cases := []struct {
		name string
		from string
		to   string
		ok   bool
	}{
		{"pending to confirmed", Pending, Confirmed, true},
		{"pending skips to preparing", Pending, Preparing, true},
		{"pending cannot skip to ready", Pending, Ready, false},
		{"pending cannot skip to delivered", Pending, Delivered, false},
		{"confirmed to preparing", Confirmed, Preparing, true},
		{"preparing to ready", Preparing, Ready, true},
		{"ready to delivered", Ready, Delivered, true},
		{"delivered to completed", Delivered, Completed, true},
		{"cancel from pending", Pending, Cancelled, true},
		{"cancel from ready", Ready, Cancelled, true},
		{"completed is terminal", Completed, Cancelled, false},
		{"cancelled is terminal", Cancelled, Confirmed, false},
		{"no backwards move", Ready, Preparing, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Transition(tc.from, tc.to)
			if tc.ok && err != nil {
				t.Fatalf("Transition(%s, %s) = %v, want nil", tc.from, tc.to, err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatalf("Transition(%s, %s) = nil, want error", tc.from, tc.to)
				}
				if !errors.Is(err, apperr.ErrInvalidState) {
					t.Fatalf("Transition(%s, %s) = %v, want ErrInvalidState", tc.from, tc.to, err)
				}
			}
		})
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	if err := Transition(Pending, "SERVING"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("Transition to unknown status = %v, want ErrValidation", err)
	}
	if err := Transition("LIMBO", Confirmed); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("Transition from unknown status = %v, want ErrValidation", err)
	}
}

func TestDeletable(t *testing.T) {
	for _, s := range []string{Pending, Confirmed, Preparing, Ready, Delivered} {
		if !Deletable(s) {
			t.Errorf("Deletable(%s) = false, want true", s)
		}
	}
	for _, s := range []string{Completed, Cancelled, "SERVING"} {
		if Deletable(s) {
			t.Errorf("Deletable(%s) = true, want false", s)
		}
	}
}

func TestDepartmentPending(t *testing.T) {
	want := map[string]bool{
		Pending:   true,
		Confirmed: true,
		Preparing: true,
		Ready:     false,
		Delivered: false,
		Completed: false,
		Cancelled: false,
	}
	for s, expect := range want {
		if got := DepartmentPending(s); got != expect {
			t.Errorf("DepartmentPending(%s) = %v, want %v", s, got, expect)
		}
	}
}

func TestMostUrgent(t *testing.T) {
	cases := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"empty", nil, ""},
		{"single", []string{Ready}, Ready},
		{"pending wins over delivered", []string{Delivered, Pending}, Pending},
		{"confirmed wins over cancelled", []string{Cancelled, Confirmed}, Confirmed},
		{"completed wins over cancelled", []string{Cancelled, Completed}, Completed},
		{"mixed pipeline", []string{Ready, Preparing, Delivered}, Preparing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MostUrgent(tc.statuses); got != tc.want {
				t.Fatalf("MostUrgent(%v) = %q, want %q", tc.statuses, got, tc.want)
			}
		})
	}
}
