// Package status is the single source of truth for order status
// semantics: which transitions are legal, which states still allow item
// mutation, which states a fulfillment department cares about, and how
// a group of orders collapses to one display status.  Kitchen views and
// billing views both read the tables here so they can never disagree.
package status

import "github.com/iliyamo/restaurant-table-service/internal/apperr"

// Order pipeline states.  CANCELLED is reachable from any non-terminal
// state; COMPLETED and CANCELLED are terminal.
const (
	Pending   = "PENDING"
	Confirmed = "CONFIRMED"
	Preparing = "PREPARING"
	Ready     = "READY"
	Delivered = "DELIVERED"
	Completed = "COMPLETED"
	Cancelled = "CANCELLED"
)

// transitions is the adjacency list of legal forward moves.  PENDING may
// skip straight to PREPARING because the kitchen often confirms and
// starts an order in one action; it may never skip to READY or beyond.
var transitions = map[string][]string{
	Pending:   {Confirmed, Preparing, Cancelled},
	Confirmed: {Preparing, Cancelled},
	Preparing: {Ready, Cancelled},
	Ready:     {Delivered, Cancelled},
	Delivered: {Completed, Cancelled},
	Completed: {},
	Cancelled: {},
}

// priority ranks statuses by urgency for display grouping.  A lower
// rank means the order still needs attention; the min-reduce over a
// group's members in MostUrgent lets staff see at a glance whether any
// part of a logical order is outstanding.
var priority = map[string]int{
	Pending:   0,
	Confirmed: 1,
	Preparing: 2,
	Ready:     3,
	Delivered: 4,
	Completed: 5,
	Cancelled: 6,
}

// Valid reports whether s is a known order status.
func Valid(s string) bool {
	_, ok := priority[s]
	return ok
}

// Terminal reports whether s permits no further mutation of status or
// items.
func Terminal(s string) bool {
	return s == Completed || s == Cancelled
}

// CanTransition reports whether moving from one status to another is
// allowed by the adjacency list.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a status move and returns a wrapped error kind
// suitable for the caller: validation for unknown statuses, invalid
// state for a move the adjacency list forbids.
func Transition(from, to string) error {
	if !Valid(to) {
		return apperr.Validationf("unknown order status %q", to)
	}
	if !Valid(from) {
		return apperr.Validationf("unknown order status %q", from)
	}
	if !CanTransition(from, to) {
		return apperr.InvalidStatef("order status %s cannot move to %s", from, to)
	}
	return nil
}

// Deletable reports whether an order in status s still allows items to
// be removed.  Everything short of the terminal states does.
func Deletable(s string) bool {
	return Valid(s) && !Terminal(s)
}

// DepartmentPending reports whether an order in status s belongs on a
// department's pending board.
func DepartmentPending(s string) bool {
	switch s {
	case Pending, Confirmed, Preparing:
		return true
	}
	return false
}

// Rank returns the urgency rank of s; unknown statuses sort last.
func Rank(s string) int {
	if r, ok := priority[s]; ok {
		return r
	}
	return len(priority)
}

// MostUrgent reduces a non-empty set of member statuses to the group's
// overall display status: the member with the lowest urgency rank wins.
// An empty input returns the empty string.
func MostUrgent(statuses []string) string {
	best := ""
	bestRank := len(priority) + 1
	for _, s := range statuses {
		if r := Rank(s); r < bestRank {
			best = s
			bestRank = r
		}
	}
	return best
}
