package session

import "sync"

// Locker serializes mutating operations per session.  All read-modify-
// write work on one session (submitting orders, removing items,
// recording share payments) must hold that session's lock so the
// derived order totals always match the current items; operations on
// different sessions proceed in parallel.  Locks are striped rather
// than allocated per id so the map never grows with session count.
type Locker struct {
	stripes []sync.Mutex
}

// NewLocker returns a Locker with the given number of stripes.  A
// non-positive count falls back to a single stripe, which degrades to a
// global lock but stays correct.
func NewLocker(stripes int) *Locker {
	if stripes < 1 {
		stripes = 1
	}
	return &Locker{stripes: make([]sync.Mutex, stripes)}
}

// Lock acquires the stripe owning the session id.
func (l *Locker) Lock(sessionID uint64) {
	l.stripes[sessionID%uint64(len(l.stripes))].Lock()
}

// Unlock releases the stripe owning the session id.
func (l *Locker) Unlock(sessionID uint64) {
	l.stripes[sessionID%uint64(len(l.stripes))].Unlock()
}
