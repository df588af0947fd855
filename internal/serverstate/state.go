package serverstate

import (
	"context"
	"sync/atomic"
	"time"
)

// State holds the service status and draining flag. All fields are updated
// together so callers always observe a consistent snapshot.
type State struct {
	Status   string
	Draining bool
}

// Store defines how the service state is kept.
type Store interface {
	Load() State
	Store(State)
}

// active is the currently configured Store.
var active Store = NewMemoryStore()

var inFlight atomic.Int64

// UseStore replaces the active Store.
func UseStore(s Store) {
	if s != nil {
		active = s
	}
}

// memoryStore implements Store using an atomic.Value.
type memoryStore struct {
	v atomic.Value
}

// NewMemoryStore returns a memory-backed Store initialized to "not_ready".
func NewMemoryStore() *memoryStore {
	ms := &memoryStore{}
	ms.v.Store(State{Status: "not_ready"})
	return ms
}

func (m *memoryStore) Load() State {
	if st, ok := m.v.Load().(State); ok {
		return st
	}
	return State{Status: "unknown"}
}

func (m *memoryStore) Store(s State) {
	m.v.Store(s)
}

// SetState updates the service status string.
func SetState(status string) {
	st := active.Load()
	st.Status = status
	active.Store(st)
}

// GetState returns the current service status.
func GetState() string {
	return active.Load().Status
}

// StartDrain marks the service as draining. New parse requests are refused
// from then on.
func StartDrain() {
	st := active.Load()
	st.Draining = true
	st.Status = "draining"
	active.Store(st)
}

// IsDraining reports whether the service is draining.
func IsDraining() bool {
	return active.Load().Draining
}

// Begin registers an in-flight request; the returned func releases it.
func Begin() func() {
	inFlight.Add(1)
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			inFlight.Add(-1)
		}
	}
}

// InFlight returns the number of requests between Begin and release.
func InFlight() int64 {
	return inFlight.Load()
}

// WaitIdle blocks until no request is in flight or ctx ends.
func WaitIdle(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for InFlight() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
