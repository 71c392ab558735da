package cellgraph

import "sync"

// cellGraph is the central registry of parent -> children back-references
// (§9 design note: a parent cell keeps no list of its children; the runtime
// is the one place a parent's dependents are recorded). Broadcasting a message to a
// cell's children means looking them up here, never walking a pointer a
// child stored on construction.
type cellGraph struct {
	mu       sync.RWMutex
	children map[CellID][]*Cell
}

func newCellGraph() *cellGraph {
	return &cellGraph{
		children: make(map[CellID][]*Cell),
	}
}

// addEdge registers child as a dependent of parent.
func (g *cellGraph) addEdge(parent CellID, _ CellID, child *Cell) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.children[parent] = appendUniqueCell(g.children[parent], child)
}

// removeEdge un-registers child as a dependent of parent.
func (g *cellGraph) removeEdge(parent CellID, childID CellID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.children[parent] = removeCellByID(g.children[parent], childID)
	if len(g.children[parent]) == 0 {
		delete(g.children, parent)
	}
}

// childrenOf returns the direct dependents of parent. The returned slice is
// a defensive copy; callers may range over it without holding any lock.
func (g *cellGraph) childrenOf(parent CellID) []*Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	deps := g.children[parent]
	if len(deps) == 0 {
		return nil
	}
	out := make([]*Cell, len(deps))
	copy(out, deps)
	return out
}

func (g *cellGraph) forget(id CellID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.children, id)
}

// GraphNode is one cell's position in an ExportGraph snapshot.
type GraphNode struct {
	ID       CellID
	Name     string
	Status   Status
	Children []CellID
}

// ExportGraph renders a point-in-time snapshot of the dependency graph, used
// by diagnostics (e.g. extensions/graph_debug.go). Nodes are enumerated by
// ranging the runtime's own cell registry rather than a second name/identity
// table kept in the graph itself; the graph only needs to track edges.
func (g *cellGraph) ExportGraph(rt *Runtime) []GraphNode {
	var nodes []GraphNode
	rt.cells.Range(func(id CellID, c *Cell) bool {
		node := GraphNode{ID: id, Name: c.Name(), Status: c.Status()}
		for _, child := range g.childrenOf(id) {
			node.Children = append(node.Children, child.id)
		}
		nodes = append(nodes, node)
		return true
	})
	return nodes
}

func appendUniqueCell(slice []*Cell, item *Cell) []*Cell {
	for _, existing := range slice {
		if existing == item {
			return slice
		}
	}
	return append(slice, item)
}

func removeCellByID(slice []*Cell, id CellID) []*Cell {
	for i, existing := range slice {
		if existing.id == id {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}
