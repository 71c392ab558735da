package cellgraph

import "sync"

// cellRegistry is the Runtime's table of live cells, keyed by CellID. It is
// a thin, domain-typed wrapper over sync.Map rather than a generic cache:
// a Runtime only ever registers *Cell, and Range backs ExportGraph's node
// enumeration directly (see graph.go), so there is no value in carrying a
// type parameter or cache-shaped operations (Size/Clear/Capacity) nothing
// in this module calls.
type cellRegistry struct {
	data sync.Map
}

func newCellRegistry() *cellRegistry {
	return &cellRegistry{}
}

func (r *cellRegistry) Load(id CellID) (*Cell, bool) {
	v, ok := r.data.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Cell), true
}

func (r *cellRegistry) Store(id CellID, c *Cell) {
	r.data.Store(id, c)
}

func (r *cellRegistry) Delete(id CellID) {
	r.data.Delete(id)
}

// Range calls fn for every registered cell, in no particular order, until
// fn returns false.
func (r *cellRegistry) Range(fn func(id CellID, c *Cell) bool) {
	r.data.Range(func(key, value any) bool {
		return fn(key.(CellID), value.(*Cell))
	})
}
