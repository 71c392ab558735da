package cellgraph

import "sync/atomic"

// CellID is a cell's stable identity, also used as the fault-map key for
// ancestral errors. The zero value is reserved as SelfSource.
type CellID uint64

var idCounter atomic.Uint64

func nextCellID() CellID {
	return CellID(idCounter.Add(1))
}
