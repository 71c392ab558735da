package cellgraph

import "sync"

// PoolManager pools the slices allocated on the hot broadcast/compute path:
// the argument slice assembled for each fn call, and the child-list copy
// taken when fanning a new snapshot out to dependents. Both are allocated
// and discarded on every single message a busy graph processes, so reusing
// the backing array matters more here than it would for a one-shot
// resolution.
type PoolManager struct {
	argsPool   sync.Pool
	outboxPool sync.Pool

	metrics PoolMetrics
}

// PoolMetrics tracks pool hit/miss counts for diagnostics.
type PoolMetrics struct {
	mu          sync.RWMutex
	argsHits    uint64
	argsMisses  uint64
	outboxHits  uint64
	outboxMisses uint64
}

// NewPoolManager creates a pool manager with initialized pools.
func NewPoolManager() *PoolManager {
	return &PoolManager{
		argsPool: sync.Pool{
			New: func() any { return make([]any, 0, 8) },
		},
		outboxPool: sync.Pool{
			New: func() any { return make([]*Cell, 0, 8) },
		},
	}
}

// AcquireArgs gets an []any from the pool, reset to length 0.
func (pm *PoolManager) AcquireArgs() []any {
	s, ok := pm.argsPool.Get().([]any)
	pm.metrics.mu.Lock()
	if ok {
		pm.metrics.argsHits++
	} else {
		pm.metrics.argsMisses++
		s = make([]any, 0, 8)
	}
	pm.metrics.mu.Unlock()
	return s[:0]
}

// ReleaseArgs returns an []any to the pool.
func (pm *PoolManager) ReleaseArgs(s []any) {
	if s == nil {
		return
	}
	pm.argsPool.Put(s[:0])
}

// AcquireOutbox gets a []*Cell from the pool, reset to length 0.
func (pm *PoolManager) AcquireOutbox() []*Cell {
	s, ok := pm.outboxPool.Get().([]*Cell)
	pm.metrics.mu.Lock()
	if ok {
		pm.metrics.outboxHits++
	} else {
		pm.metrics.outboxMisses++
		s = make([]*Cell, 0, 8)
	}
	pm.metrics.mu.Unlock()
	return s[:0]
}

// ReleaseOutbox returns a []*Cell to the pool.
func (pm *PoolManager) ReleaseOutbox(s []*Cell) {
	if s == nil {
		return
	}
	pm.outboxPool.Put(s[:0])
}

// GetMetrics returns a copy of the current pool metrics.
func (pm *PoolManager) GetMetrics() PoolMetrics {
	pm.metrics.mu.RLock()
	defer pm.metrics.mu.RUnlock()
	return PoolMetrics{
		argsHits:     pm.metrics.argsHits,
		argsMisses:   pm.metrics.argsMisses,
		outboxHits:   pm.metrics.outboxHits,
		outboxMisses: pm.metrics.outboxMisses,
	}
}
