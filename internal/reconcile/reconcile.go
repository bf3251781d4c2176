// Package reconcile implements the optimistic mutation queue used by
// clients of this API.  A user-initiated mutation is applied locally
// right away as a tentative record keyed by a client-generated
// correlation id; when the authoritative response arrives, the
// tentative record is replaced in place (or removed on failure).  The
// queue guarantees that tentative and confirmed versions of the same
// record are never visible together and that replaying a confirmation
// is a no-op.
package reconcile

import (
	"sync"

	"github.com/google/uuid"
)

// State tags a record as locally synthesized or server-confirmed.
type State int

const (
	// Tentative marks a locally synthesized record awaiting the
	// authoritative response.
	Tentative State = iota
	// Confirmed marks a record replaced with the server's version.
	Confirmed
)

// Record is one entry in the queue: the value plus its reconciliation
// state and correlation id.  The tagged union avoids storing tentative
// and confirmed copies separately.
type Record[T any] struct {
	CorrelationID string
	State         State
	Value         T
}

// Queue holds records in insertion order and reconciles them by
// correlation id.  All methods are safe for concurrent use.
type Queue[T any] struct {
	mu      sync.Mutex
	records []Record[T]
	index   map[string]int
}

// NewQueue returns an empty reconciliation queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{index: make(map[string]int)}
}

// Stage inserts a locally synthesized value and returns the generated
// correlation id the caller must echo when confirming or rejecting.
func (q *Queue[T]) Stage(value T) string {
	id := uuid.NewString()
	q.mu.Lock()
	defer q.mu.Unlock()
	q.index[id] = len(q.records)
	q.records = append(q.records, Record[T]{CorrelationID: id, State: Tentative, Value: value})
	return id
}

// Confirm replaces the record matching the correlation id with the
// server's version, in place, and marks it Confirmed.  Confirming an
// already confirmed record overwrites the value again but still leaves
// exactly one record, so duplicate replacement is harmless.  Returns
// false when the correlation id is unknown (e.g. the record was
// rejected first).
func (q *Queue[T]) Confirm(correlationID string, server T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	idx, ok := q.index[correlationID]
	if !ok {
		return false
	}
	q.records[idx].State = Confirmed
	q.records[idx].Value = server
	return true
}

// Reject removes the tentative record for the correlation id and
// returns its value so the caller can surface the failure alongside
// what the user attempted.  Rejecting a confirmed record is refused:
// the authoritative version already landed.
func (q *Queue[T]) Reject(correlationID string) (T, bool) {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()
	idx, ok := q.index[correlationID]
	if !ok || q.records[idx].State == Confirmed {
		return zero, false
	}
	value := q.records[idx].Value
	q.records = append(q.records[:idx], q.records[idx+1:]...)
	delete(q.index, correlationID)
	for i := idx; i < len(q.records); i++ {
		q.index[q.records[i].CorrelationID] = i
	}
	return value, true
}

// Get returns the record for a correlation id.
func (q *Queue[T]) Get(correlationID string) (Record[T], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	idx, ok := q.index[correlationID]
	if !ok {
		return Record[T]{}, false
	}
	return q.records[idx], true
}

// Snapshot returns the records in insertion order.  The UI renders this
// directly: tentative and confirmed entries interleave exactly as the
// user produced them.
func (q *Queue[T]) Snapshot() []Record[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Record[T], len(q.records))
	copy(out, q.records)
	return out
}

// Pending counts records still awaiting their authoritative response.
func (q *Queue[T]) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, r := range q.records {
		if r.State == Tentative {
			n++
		}
	}
	return n
}
