// Package session holds the table-session lifecycle rules: the status
// ladder from WAITING to COMPLETED, which statuses count as occupying a
// table, and how kitchen events pull a session forward.  Persistence
// lives in the repository package; everything here is pure.
package session

import (
	"github.com/iliyamo/restaurant-table-service/internal/apperr"
	"github.com/iliyamo/restaurant-table-service/internal/status"
)

// Session lifecycle states.  Only seat and checkout are invoked by staff
// directly; the states between them advance as side effects of order
// events.
const (
	Waiting   = "WAITING"
	Seated    = "SEATED"
	Ordering  = "ORDERING"
	Ordered   = "ORDERED"
	Dining    = "DINING"
	Billing   = "BILLING"
	Completed = "COMPLETED"
)

// ladder orders the lifecycle states.  Auto-advancement is monotonic
// along this slice: a session never moves backwards, and skipping
// intermediate states is fine (an order going straight to PREPARING
// moves the session from SEATED past ORDERING).
var ladder = []string{Waiting, Seated, Ordering, Ordered, Dining, Billing, Completed}

// rank maps each state to its ladder position.
var rank = func() map[string]int {
	m := make(map[string]int, len(ladder))
	for i, s := range ladder {
		m[s] = i
	}
	return m
}()

// Valid reports whether s is a known session status.
func Valid(s string) bool {
	_, ok := rank[s]
	return ok
}

// Active reports whether a session in status s occupies a table.  The
// one-active-session-per-table invariant is defined over this set.
func Active(s string) bool {
	switch s {
	case Seated, Ordering, Ordered, Dining, Billing:
		return true
	}
	return false
}

// Advance returns the status a session should hold after moving to
// target, never going backwards.  Unknown targets leave the current
// status untouched.
func Advance(current, target string) string {
	cr, cok := rank[current]
	tr, tok := rank[target]
	if !tok || !cok || tr <= cr {
		return current
	}
	return target
}

// AfterOrderEvent maps an order status change to the session state it
// implies: a submitted order means the party is ordering, a confirmed
// order means the round is in the kitchen, and anything ready or
// delivered means the party is dining.  Returns the empty string when
// the event carries no session-level meaning.
func AfterOrderEvent(orderStatus string) string {
	switch orderStatus {
	case status.Pending:
		return Ordering
	case status.Confirmed, status.Preparing:
		return Ordered
	case status.Ready, status.Delivered:
		return Dining
	}
	return ""
}

// CheckSeat validates the staff-invoked WAITING -> SEATED move.
func CheckSeat(current string) error {
	if current != Waiting {
		return apperr.InvalidStatef("session in status %s cannot be seated", current)
	}
	return nil
}

// CheckCheckout validates the staff-invoked move to COMPLETED.  A
// session may check out from BILLING, or from DINING once a payment has
// been taken (paid covers the post-payment dining lull before the party
// actually leaves).
func CheckCheckout(current string, paid bool) error {
	if current == Billing {
		return nil
	}
	if current == Dining && paid {
		return nil
	}
	return apperr.InvalidStatef("session in status %s cannot check out", current)
}

// CheckRemoveWaiting validates deleting a session whose party left
// before being seated.
func CheckRemoveWaiting(current string) error {
	if current != Waiting {
		return apperr.InvalidStatef("session in status %s is no longer waiting", current)
	}
	return nil
}
