package cellgraph

import "sync"

type parentKind int

const (
	parentConstant parentKind = iota
	parentCell
	parentHandle
)

// Parent is one entry in a cell's ordered parent list: either a constant
// (passed through to fn verbatim) or a handle (cell or plain Handle) whose
// resolved value is substituted in argument order.
type Parent struct {
	kind   parentKind
	value  any
	cell   *Cell
	handle Handle
}

// Constant wraps a plain value as a non-observed argument to fn.
func Constant(v any) Parent {
	return Parent{kind: parentConstant, value: v}
}

// cellLike is satisfied by *Controller[T] for any T, letting P unwrap a
// typed controller back to the raw cell it wraps.
type cellLike interface {
	Cell() *Cell
}

// P adapts any value into a Parent: a *Cell, a *Controller[T], or a Handle
// becomes an observed dependency; anything else becomes a Constant.
func P(x any) Parent {
	if cl, ok := x.(cellLike); ok {
		return Parent{kind: parentCell, cell: cl.Cell()}
	}
	switch v := x.(type) {
	case *Cell:
		return Parent{kind: parentCell, cell: v}
	case Handle:
		return Parent{kind: parentHandle, handle: v}
	default:
		return Parent{kind: parentConstant, value: x}
	}
}

func (p Parent) isHandle() bool { return p.kind != parentConstant }
func (p Parent) isCell() bool   { return p.kind == parentCell }

// resolvedParent is the constructor-time expansion of a Parent into the
// bookkeeping a Cell needs: a stable key for handle parents (their CellID,
// synthesized for non-cell handles) plus whatever unsubscribe hook a watch
// installed.
type resolvedParent struct {
	Parent
	key CellID
}

// Cell is a unit of deferred computation: it caches the result of applying
// fn to the current values of parents, in order, and recomputes only on
// demand and only when a parent has actually changed (C1, spec §3/§4.1).
type Cell struct {
	id   CellID
	rt   *Runtime
	name string
	fn   func(args []any) (any, error)

	parents       []resolvedParent
	handleParents []resolvedParent // subset of parents that are handles
	laParents     []resolvedParent // subset of handleParents that are cells
	nHandle       int

	oblivious bool

	tagStore

	// snapshot fields: guarded by snapMu, read by Value()/Status() from any
	// goroutine. Never touched outside of publish().
	snapMu     sync.RWMutex
	snapValue  Outcome
	snapStatus Status

	// internal-only state: touched exclusively by the single goroutine
	// currently draining this cell's mailbox (see mailbox.go). No lock
	// needed; mailbox.active + the scheduler enforce single-flight access.
	parentValues map[CellID]any
	faults       map[CellID]error
	demanded     bool // UpdateRequest received while NeedsUpdate/Updating

	mbox mailbox

	unsubscribes []func()
	observers    observerList    // external Handle subscribers (non-cell consumers)
	termWatchers termWatcherList // one-shot terminal-status observers (C6)
}

// CellOption configures a cell at construction time.
type CellOption func(*Cell)

// Oblivious marks a cell as opting out of invalidation after its first
// successful compute.
func Oblivious(v bool) CellOption {
	return func(c *Cell) { c.oblivious = v }
}

// WithName attaches a debug name, equivalent to Name().Set(cell, name).
func WithName(name string) CellOption {
	return func(c *Cell) { c.name = name; nameTag.Set(c, name) }
}

// NewCell is the general constructor (C4): it partitions parents, pre-
// populates parentValues from any already-Computed parent, allocates the
// cell in NeedsUpdate, registers back-references, and installs watches on
// non-cell handle parents.
func NewCell(rt *Runtime, fn func(args []any) (any, error), parents []Parent, opts ...CellOption) *Cell {
	c := &Cell{
		id:           nextCellID(),
		rt:           rt,
		fn:           fn,
		parentValues: make(map[CellID]any),
		snapValue:    pendingOutcome(),
		snapStatus:   NeedsUpdate,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.mbox.cell = c

	c.parents = make([]resolvedParent, len(parents))
	for i, p := range parents {
		rp := resolvedParent{Parent: p}
		switch p.kind {
		case parentCell:
			rp.key = p.cell.id
		case parentHandle:
			rp.key = nextCellID()
		}
		c.parents[i] = rp

		if !p.isHandle() {
			continue
		}
		c.handleParents = append(c.handleParents, rp)
		c.nHandle++

		if p.isCell() {
			c.laParents = append(c.laParents, rp)
			rt.graph.addEdge(p.cell.id, c.id, c)
			if snap := p.cell.snapshot(); snap.value.Kind == Computed {
				c.parentValues[rp.key] = snap.value.Value
			}
			continue
		}

		// Non-cell handle: install a watch (§4.3) and pre-populate if a
		// value is already available.
		if v, ok := p.handle.Read(); ok {
			c.parentValues[rp.key] = unwrap(v)
		}
		key := rp.key
		unsub := p.handle.Subscribe(func(v any) {
			rt.dispatch(c, msgParentComputed{from: key, value: unwrap(v)})
		})
		c.unsubscribes = append(c.unsubscribes, unsub)
	}

	rt.registerCell(c)
	return c
}

// NewSource creates a leaf cell (no handle parents) pre-seeded with an
// initial value, usable as an externally-settable source (set(leaf, v)).
func NewSource(rt *Runtime, initial any, opts ...CellOption) *Cell {
	c := NewCell(rt, func([]any) (any, error) { return initial, nil }, nil, opts...)
	c.seed(initial)
	return c
}

// seed synchronously installs the cell's first value at construction time,
// before the cell is reachable by any other goroutine.
func (c *Cell) seed(v any) {
	status := UpToDate
	if c.oblivious {
		status = Oblivious
	}
	c.publish(computedOutcome(v), status)
}

func (c *Cell) getTag(key string) (any, bool) { return c.tagStore.get(key) }
func (c *Cell) setTag(key string, v any)      { c.tagStore.set(key, v) }

// Read implements Handle so a Cell can itself be used as a handle-parent by
// external code (e.g. a cell feeding a plain, non-graph-aware consumer).
func (c *Cell) Read() (any, bool) {
	snap := c.snapshot()
	if snap.value.Kind != Computed {
		return nil, false
	}
	return snap.value.Value, true
}

// Subscribe registers an external observer invoked whenever this cell
// publishes a new Computed value. This is distinct from the internal
// parent->child wiring used between cells, which bypasses Subscribe and
// dispatches messages directly through the runtime's registry.
func (c *Cell) Subscribe(observer func(any)) func() {
	return c.observers.add(observer)
}

// ID returns the cell's stable identity.
func (c *Cell) ID() CellID { return c.id }

// Name returns the cell's debug name, if set.
func (c *Cell) Name() string { return c.name }

// Status returns the cell's current status. Safe for concurrent use.
func (c *Cell) Status() Status {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.snapStatus
}

// Value returns the cell's current Outcome. Safe for concurrent use.
func (c *Cell) Value() Outcome {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.snapValue
}

type snapshot struct {
	value  Outcome
	status Status
}

func (c *Cell) snapshot() snapshot {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return snapshot{value: c.snapValue, status: c.snapStatus}
}

// publish atomically installs a new snapshot and, if it is Computed, fans it
// out to external (non-graph) subscribers.
func (c *Cell) publish(v Outcome, status Status) {
	c.snapMu.Lock()
	c.snapValue = v
	c.snapStatus = status
	c.snapMu.Unlock()

	if v.Kind == Computed {
		c.observers.notify(v.Value)
	}
	if status.terminal() {
		c.termWatchers.fire()
	}
}

// ready implements invariant I4: every handle-parent has contributed a
// value, and no parent is in an unrecovered error.
func (c *Cell) ready() bool {
	return len(c.parentValues) == c.nHandle && len(c.faults) == 0
}

// teardown removes this cell's back-reference from every cell-parent's
// children set and cancels watches on non-cell handle parents. Call when
// all external references to the cell are dropped.
func (c *Cell) teardown() {
	for _, p := range c.laParents {
		c.rt.graph.removeEdge(p.cell.id, c.id)
	}
	for _, unsub := range c.unsubscribes {
		unsub()
	}
	c.rt.unregisterCell(c)
}

// observerList is a minimal fan-out list for external subscribers.
type observerList struct {
	mu        sync.Mutex
	nextID    int
	observers map[int]func(any)
}

func (o *observerList) add(fn func(any)) func() {
	o.mu.Lock()
	if o.observers == nil {
		o.observers = make(map[int]func(any))
	}
	id := o.nextID
	o.nextID++
	o.observers[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.observers, id)
		o.mu.Unlock()
	}
}

func (o *observerList) notify(v any) {
	o.mu.Lock()
	fns := make([]func(any), 0, len(o.observers))
	for _, fn := range o.observers {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// termWatcherList holds the one-shot observers evaluate() installs while
// waiting for cells to reach a terminal status (C6). Each watcher fires at
// most once: it is removed from the list as part of firing.
type termWatcherList struct {
	mu       sync.Mutex
	nextID   int
	watchers map[int]func()
}

func (t *termWatcherList) add(fn func()) func() {
	t.mu.Lock()
	if t.watchers == nil {
		t.watchers = make(map[int]func())
	}
	id := t.nextID
	t.nextID++
	t.watchers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.watchers, id)
		t.mu.Unlock()
	}
}

func (t *termWatcherList) fire() {
	t.mu.Lock()
	fns := make([]func(), 0, len(t.watchers))
	for _, fn := range t.watchers {
		fns = append(fns, fn)
	}
	t.watchers = nil
	t.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
