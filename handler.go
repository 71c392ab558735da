package cellgraph

// handle applies one message to c's state, per the transition table: status
// x message -> status, plus whatever broadcast the transition performs.
// Called only from this cell's own drain loop (scheduler.go), so c's
// internal fields need no locking here.
func handle(rt *Runtime, c *Cell, msg message) {
	switch m := msg.(type) {
	case msgUpdateRequest:
		handleUpdateRequest(rt, c)
	case msgParentComputed:
		handleParentComputed(rt, c, m)
	case msgParentNeedsUpdate:
		handleParentNeedsUpdate(rt, c, m)
	case msgParentError:
		handleParentError(rt, c, m)
	case msgParentRecovered:
		handleParentRecovered(rt, c, m)
	case msgSetValue:
		rt.runOperation(&Operation{Kind: OpSet, Cell: c, Runtime: rt}, func() (any, error) {
			handleSetValue(rt, c, m)
			return m.value, nil
		})
	case msgForceNeedsUpdate:
		rt.runOperation(&Operation{Kind: OpForceNeedsUpdate, Cell: c, Runtime: rt}, func() (any, error) {
			handleForceNeedsUpdate(rt, c)
			return nil, nil
		})
	case msgForceError:
		rt.runOperation(&Operation{Kind: OpForceError, Cell: c, Runtime: rt}, func() (any, error) {
			handleForceError(rt, c, m)
			return nil, nil
		})
	}
}

func handleUpdateRequest(rt *Runtime, c *Cell) {
	switch c.Status() {
	case NeedsUpdate:
		if c.ready() {
			compute(rt, c)
			return
		}
		demandAllLaParents(rt, c)
		c.demanded = true
		c.publish(pendingOutcome(), Updating)
	case Updating, UpToDate, Oblivious, Error:
		// Already demanded, already current, opted out, or faulted: ignore.
	}
}

func handleParentComputed(rt *Runtime, c *Cell, m msgParentComputed) {
	switch c.Status() {
	case NeedsUpdate:
		c.parentValues[m.from] = m.value
		if c.ready() && c.demanded {
			compute(rt, c)
		}
	case Updating:
		c.parentValues[m.from] = m.value
		if c.ready() {
			compute(rt, c)
		}
	case UpToDate:
		c.parentValues[m.from] = m.value
		c.demanded = false
		c.publish(pendingOutcome(), NeedsUpdate)
		broadcast(rt, c, msgParentNeedsUpdate{from: c.id})
	case Oblivious:
		// Absorbs parent traffic entirely; parentValues is intentionally
		// not updated.
	case Error:
		// The new value clears m.from's fault, and a :self fault too when it
		// is the only one left, so fn is retried on the new input.
		c.parentValues[m.from] = m.value
		delete(c.faults, m.from)
		if _, self := c.faults[SelfSource]; self && len(c.faults) == 1 {
			delete(c.faults, SelfSource)
		}
		if len(c.faults) == 0 {
			c.demanded = false
			c.publish(pendingOutcome(), NeedsUpdate)
			broadcast(rt, c, msgParentRecovered{from: c.id})
		}
	}
}

func handleParentNeedsUpdate(rt *Runtime, c *Cell, m msgParentNeedsUpdate) {
	switch c.Status() {
	case NeedsUpdate, Updating:
		delete(c.parentValues, m.from)
	case UpToDate:
		delete(c.parentValues, m.from)
		c.demanded = false
		c.publish(pendingOutcome(), NeedsUpdate)
		broadcast(rt, c, msgParentNeedsUpdate{from: c.id})
	case Oblivious:
		// ignore
	case Error:
		delete(c.parentValues, m.from)
	}
}

func handleParentError(rt *Runtime, c *Cell, m msgParentError) {
	switch c.Status() {
	case NeedsUpdate, Updating, UpToDate:
		c.demanded = false
		c.faults = map[CellID]error{m.from: m.err}
		c.publish(faultedOutcome(c.faults), Error)
		broadcast(rt, c, msgParentError{from: c.id, err: m.err})
	case Oblivious:
		// ignore
	case Error:
		_, wasKnown := c.faults[m.from]
		c.faults[m.from] = m.err
		if !wasKnown {
			c.publish(faultedOutcome(c.faults), Error)
			broadcast(rt, c, msgParentError{from: c.id, err: m.err})
		}
	}
}

func handleParentRecovered(rt *Runtime, c *Cell, m msgParentRecovered) {
	switch c.Status() {
	case NeedsUpdate, Updating, UpToDate, Oblivious:
		// No tracked error to clear.
	case Error:
		delete(c.faults, m.from)
		if len(c.faults) == 0 {
			c.demanded = false
			c.publish(pendingOutcome(), NeedsUpdate)
			broadcast(rt, c, msgParentRecovered{from: c.id})
		}
	}
}

// handleSetValue applies an external write to a leaf cell. Validity (no
// handle-parents) is checked synchronously by the public Set API before this
// is ever enqueued, so it always succeeds here.
func handleSetValue(rt *Runtime, c *Cell, m msgSetValue) {
	c.demanded = false
	c.faults = nil
	status := UpToDate
	if c.oblivious {
		status = Oblivious
	}
	c.publish(computedOutcome(m.value), status)
	broadcast(rt, c, msgParentComputed{from: c.id, value: m.value})
}

// handleForceNeedsUpdate re-reads every handle-parent's current value, since
// an oblivious cell stopped recording them, then resets to NeedsUpdate.
func handleForceNeedsUpdate(rt *Runtime, c *Cell) {
	for _, p := range c.handleParents {
		var v any
		var ok bool
		if p.isCell() {
			v, ok = p.cell.Read()
		} else if v, ok = p.handle.Read(); ok {
			v = unwrap(v)
		}
		if ok {
			c.parentValues[p.key] = v
		} else {
			delete(c.parentValues, p.key)
		}
	}
	c.demanded = false
	c.faults = nil
	c.publish(pendingOutcome(), NeedsUpdate)
	broadcast(rt, c, msgParentNeedsUpdate{from: c.id})
}

func handleForceError(rt *Runtime, c *Cell, m msgForceError) {
	c.demanded = false
	c.faults = map[CellID]error{SelfSource: m.err}
	c.publish(faultedOutcome(c.faults), Error)
	broadcast(rt, c, msgParentError{from: c.id, err: m.err})
}

// compute assembles fn's argument list in parent order, runs it through the
// extension chain, and publishes the outcome.
func compute(rt *Runtime, c *Cell) {
	args := rt.pool.AcquireArgs()
	for _, p := range c.parents {
		if p.isHandle() {
			args = append(args, c.parentValues[p.key])
		} else {
			args = append(args, p.value)
		}
	}

	op := &Operation{Kind: OpCompute, Cell: c, Runtime: rt}
	result, err := rt.runOperation(op, func() (any, error) {
		return safeCall(c.fn, args)
	})
	rt.pool.ReleaseArgs(args)

	c.demanded = false
	if err != nil {
		cerr := newComputeError(c, err)
		c.faults = map[CellID]error{SelfSource: cerr}
		c.publish(faultedOutcome(c.faults), Error)
		broadcast(rt, c, msgParentError{from: c.id, err: cerr})
		return
	}

	status := UpToDate
	if c.oblivious {
		status = Oblivious
	}
	c.publish(computedOutcome(result), status)
	broadcast(rt, c, msgParentComputed{from: c.id, value: result})
}

// safeCall recovers a panic in fn and turns it into an E1 :self error rather
// than crashing the worker goroutine draining this cell's mailbox.
func safeCall(fn func([]any) (any, error), args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredPanic(r)
		}
	}()
	return fn(args)
}

// demandAllLaParents sends UpdateRequest to every cell-valued handle-parent.
// Duplicate demands are idempotent: a parent already Updating ignores a
// second UpdateRequest.
func demandAllLaParents(rt *Runtime, c *Cell) {
	for _, p := range c.laParents {
		rt.dispatch(p.cell, msgUpdateRequest{})
	}
}

// broadcast fans msg out to every current child of c.
func broadcast(rt *Runtime, c *Cell, msg message) {
	children := rt.graph.childrenOf(c.id)
	if len(children) == 0 {
		return
	}
	outbox := rt.pool.AcquireOutbox()
	outbox = append(outbox, children...)
	for _, child := range outbox {
		rt.dispatch(child, msg)
	}
	rt.pool.ReleaseOutbox(outbox)
}
