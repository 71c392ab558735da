package cellgraph

import "sync"

// Handle is the external contract any observable value must satisfy to
// appear as a parent: a way to read the current concrete value, and a way
// to subscribe/unsubscribe an observer invoked on each distinct change.
//
// Cells satisfy a richer internal contract (they also accept demand); a
// plain Handle never receives UpdateRequest and is always considered
// current the moment it is read.
type Handle interface {
	Read() (value any, ok bool)
	Subscribe(observer func(any)) (unsubscribe func())
}

// unwrap implements the §6 rule: if the observed payload is itself a cell
// snapshot, the recorded parent value is the snapshot's Computed value, not
// the snapshot struct.
func unwrap(v any) any {
	if snap, ok := v.(Outcome); ok && snap.Kind == Computed {
		return snap.Value
	}
	return v
}

// ValueHandle is a non-cell Handle: a plain mutable reference a caller can
// Set() from outside the graph. Distinct value changes are delivered to
// subscribers synchronously on the writer's goroutine, so a slow subscriber
// delays the Set call that notifies it.
type ValueHandle struct {
	mu        sync.Mutex
	value     any
	hasValue  bool
	observers map[int]func(any)
	nextID    int
}

// NewValueHandle creates a ValueHandle with the given initial value.
func NewValueHandle(initial any) *ValueHandle {
	return &ValueHandle{value: initial, hasValue: true}
}

// Read returns the current value.
func (h *ValueHandle) Read() (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value, h.hasValue
}

// Set stores a new value and notifies subscribers if it differs from the
// previously observed one.
func (h *ValueHandle) Set(v any) {
	h.mu.Lock()
	if h.hasValue && valuesEqual(h.value, v) {
		h.mu.Unlock()
		return
	}
	h.value = v
	h.hasValue = true
	observers := make([]func(any), 0, len(h.observers))
	for _, obs := range h.observers {
		observers = append(observers, obs)
	}
	h.mu.Unlock()

	for _, obs := range observers {
		obs(v)
	}
}

// Subscribe registers an observer invoked on each distinct value change. The
// returned function removes the subscription.
func (h *ValueHandle) Subscribe(observer func(any)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.observers == nil {
		h.observers = make(map[int]func(any))
	}
	h.observers[id] = observer
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.observers, id)
		h.mu.Unlock()
	}
}

// valuesEqual compares two values for equality, tolerating uncomparable
// dynamic types (slices, maps, funcs) by treating them as always-changed.
func valuesEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
