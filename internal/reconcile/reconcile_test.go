package reconcile

import (
	"sync"
	"testing"
)

type fakeOrder struct {
	ID    uint64
	Total string
}

func TestStageThenConfirmReplacesInPlace(t *testing.T) {
	q := NewQueue[fakeOrder]()
	id := q.Stage(fakeOrder{ID: 0, Total: "12.00"})

	if got := q.Pending(); got != 1 {
		t.Fatalf("Pending = %d, want 1", got)
	}
	if !q.Confirm(id, fakeOrder{ID: 42, Total: "12.00"}) {
		t.Fatal("Confirm returned false for staged record")
	}
	snap := q.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("snapshot has %d records, want 1", len(snap))
	}
	if snap[0].State != Confirmed || snap[0].Value.ID != 42 {
		t.Fatalf("record = %+v, want confirmed server version", snap[0])
	}
	if got := q.Pending(); got != 0 {
		t.Fatalf("Pending after confirm = %d, want 0", got)
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	q := NewQueue[fakeOrder]()
	id := q.Stage(fakeOrder{Total: "9.50"})
	server := fakeOrder{ID: 7, Total: "9.50"}

	q.Confirm(id, server)
	q.Confirm(id, server) // duplicate replacement

	snap := q.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("duplicate confirm left %d records, want 1", len(snap))
	}
	if snap[0].Value.ID != 7 {
		t.Fatalf("record value = %+v, want server version", snap[0].Value)
	}
}

func TestRejectRemovesTentative(t *testing.T) {
	q := NewQueue[fakeOrder]()
	keep := q.Stage(fakeOrder{ID: 1})
	drop := q.Stage(fakeOrder{ID: 2})

	value, ok := q.Reject(drop)
	if !ok || value.ID != 2 {
		t.Fatalf("Reject = (%+v, %v), want staged value", value, ok)
	}
	if _, ok := q.Get(drop); ok {
		t.Fatal("rejected record still visible")
	}
	// the surviving record is still reachable by its correlation id
	if !q.Confirm(keep, fakeOrder{ID: 10}) {
		t.Fatal("Confirm failed for surviving record after a removal")
	}
	if len(q.Snapshot()) != 1 {
		t.Fatalf("snapshot has %d records, want 1", len(q.Snapshot()))
	}
}

func TestRejectAfterConfirmRefused(t *testing.T) {
	q := NewQueue[fakeOrder]()
	id := q.Stage(fakeOrder{ID: 1})
	q.Confirm(id, fakeOrder{ID: 5})
	if _, ok := q.Reject(id); ok {
		t.Fatal("Reject succeeded on a confirmed record")
	}
	if len(q.Snapshot()) != 1 {
		t.Fatal("confirmed record vanished")
	}
}

func TestConfirmUnknownCorrelationID(t *testing.T) {
	q := NewQueue[fakeOrder]()
	if q.Confirm("nope", fakeOrder{}) {
		t.Fatal("Confirm returned true for unknown id")
	}
}

func TestConcurrentStageAndConfirm(t *testing.T) {
	q := NewQueue[fakeOrder]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n uint64) {
			defer wg.Done()
			id := q.Stage(fakeOrder{ID: n})
			q.Confirm(id, fakeOrder{ID: n + 1000})
		}(uint64(i))
	}
	wg.Wait()
	if got := len(q.Snapshot()); got != 50 {
		t.Fatalf("snapshot has %d records, want 50", got)
	}
	if got := q.Pending(); got != 0 {
		t.Fatalf("Pending = %d, want 0", got)
	}
}
