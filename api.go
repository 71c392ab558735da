package cellgraph

// Set enqueues an external write to a leaf cell (one with no handle-
// parents). Returns a *ConfigError synchronously (E3) without touching the
// state machine if c has handle-parents.
func Set(c *Cell, v any) error {
	if c.nHandle != 0 {
		return newConfigError(c, "set: cell has handle-parents, not a leaf")
	}
	c.rt.dispatch(c, msgSetValue{value: v})
	return nil
}

// Update enqueues UpdateRequest to each cell and returns immediately.
func Update(cells ...*Cell) {
	for _, c := range cells {
		c.rt.dispatch(c, msgUpdateRequest{})
	}
}

// ForceNeedsUpdate enqueues an unconditional transition to NeedsUpdate,
// recovering from any error, and broadcasts ParentNeedsUpdate to children.
func ForceNeedsUpdate(cells ...*Cell) {
	for _, c := range cells {
		c.rt.dispatch(c, msgForceNeedsUpdate{})
	}
}

// ForceError injects a synthetic :self error into each cell, as if its fn
// had failed.
func ForceError(err error, cells ...*Cell) {
	for _, c := range cells {
		c.rt.dispatch(c, msgForceError{err: err})
	}
}
