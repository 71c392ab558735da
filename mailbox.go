package cellgraph

import "sync"

// mailbox is a cell's private FIFO inbox. At most one goroutine drains a
// given mailbox at a time (the active flag below), which is what lets the
// handler mutate Cell's internal fields without locking them: ordering
// guarantee O1 (per-cell FIFO) and single-flight access fall out of the same
// mechanism.
type mailbox struct {
	cell *Cell

	mu     sync.Mutex
	queue  []message
	active bool
}

// enqueue appends msg to the queue. If no goroutine is currently draining
// this mailbox, it returns true and the caller must schedule a drain;
// otherwise the already-running drain will pick msg up.
func (m *mailbox) enqueue(msg message) (scheduleDrain bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, msg)
	if m.active {
		return false
	}
	m.active = true
	return true
}

// pop removes and returns the next queued message. If the queue is empty it
// clears active and returns ok=false; the caller must stop draining.
func (m *mailbox) pop() (msg message, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		m.active = false
		return nil, false
	}
	msg, m.queue = m.queue[0], m.queue[1:]
	return msg, true
}
