package download

import (
	"fmt"
	"sync"

	"github.com/entrhq/flow/pkg/engine"
	"github.com/google/uuid"
)

// State is the transport state of a download.
type State int

const (
	StateInProgress State = iota
	StateCompleted
	StateCancelled
	StateInterrupted
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in progress"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateInterrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Record is one download. Records are mutated in place as the transport
// reports progress; Snapshot hands out copies.
type Record struct {
	ID       string
	Filename string
	URL      string
	Path     string
	Received int64
	Total    int64
	State    State
	Done     bool
	Status   string

	// Reason is the interruption reason reported by the transport
	Reason string

	// transport is nil for saves delivered through the script bridge
	transport engine.Download
}

// HasTransport reports whether the record is backed by an engine download.
func (r *Record) HasTransport() bool {
	return r.transport != nil
}

// List holds the session's download records. Saves finish on their own
// goroutines, so every access is locked.
type List struct {
	mu      sync.Mutex
	records []*Record
	refresh func()
}

// NewList returns an empty list.
func NewList() *List {
	return &List{}
}

// Attach sets the function called after every change, typically the refresh
// of an open downloads view.
func (l *List) Attach(refresh func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refresh = refresh
}

// Detach removes the refresh target. Records are unaffected.
func (l *List) Detach() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refresh = nil
}

// add appends r and returns its id.
func (l *List) add(r *Record) string {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	l.mu.Lock()
	l.records = append(l.records, r)
	refresh := l.refresh
	l.mu.Unlock()

	if refresh != nil {
		refresh()
	}
	return r.ID
}

// update applies fn to the record with id, if it is still listed.
func (l *List) update(id string, fn func(*Record)) bool {
	l.mu.Lock()
	var found *Record
	for _, r := range l.records {
		if r.ID == id {
			found = r
			break
		}
	}
	if found != nil {
		fn(found)
	}
	refresh := l.refresh
	l.mu.Unlock()

	if found != nil && refresh != nil {
		refresh()
	}
	return found != nil
}

// Remove drops the record at index. An active transport is asked to cancel
// first; cancellation is best effort.
func (l *List) Remove(index int) error {
	l.mu.Lock()
	if index < 0 || index >= len(l.records) {
		l.mu.Unlock()
		return fmt.Errorf("no download at index %d", index)
	}

	r := l.records[index]
	if r.transport != nil && !r.Done {
		_ = r.transport.Cancel()
		r.State = StateCancelled
		r.Done = true
		r.Status = "Cancelled"
	}

	l.records = append(l.records[:index], l.records[index+1:]...)
	refresh := l.refresh
	l.mu.Unlock()

	if refresh != nil {
		refresh()
	}
	return nil
}

// CancelActive cancels every record whose transport is still running and
// returns how many were cancelled.
func (l *List) CancelActive() int {
	l.mu.Lock()
	n := 0
	for _, r := range l.records {
		if r.transport == nil || r.Done {
			continue
		}
		_ = r.transport.Cancel()
		r.State = StateCancelled
		r.Done = true
		r.Status = "Cancelled"
		n++
	}
	refresh := l.refresh
	l.mu.Unlock()

	if n > 0 && refresh != nil {
		refresh()
	}
	return n
}

// Get returns a copy of the record with id.
func (l *List) Get(id string) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.records {
		if r.ID == id {
			return *r, true
		}
	}
	return Record{}, false
}

// Snapshot returns copies of all records, oldest first.
func (l *List) Snapshot() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Record, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, *r)
	}
	return out
}

// Len returns the number of records.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
