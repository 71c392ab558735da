package extensions

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"log/slog"

	"github.com/cellgraph/cellgraph"
	"github.com/m1gwings/treedrawer/tree"
)

// GraphDebugExtension renders the cell dependency DAG as an ASCII tree
// whenever a cell enters Error, annotating which cell faulted and which
// ancestors have already settled.
//
// Usage:
//
//	handler := extensions.NewHumanHandler(os.Stdout, slog.LevelError)
//	ext := extensions.NewGraphDebugExtension(handler)
//
//	handler := extensions.NewSilentHandler() // for tests
//	ext := extensions.NewGraphDebugExtension(handler)
type GraphDebugExtension struct {
	cellgraph.BaseExtension

	settled map[cellgraph.CellID]bool
	faulted map[cellgraph.CellID]error
	logger  *slog.Logger
}

// NewGraphDebugExtension creates a graph debug extension logging through
// logHandler.
func NewGraphDebugExtension(logHandler slog.Handler) *GraphDebugExtension {
	return &GraphDebugExtension{
		BaseExtension: cellgraph.NewBaseExtension("graph-debug"),
		settled:       make(map[cellgraph.CellID]bool),
		faulted:       make(map[cellgraph.CellID]error),
		logger:        slog.New(logHandler),
	}
}

// Wrap tracks each cell's most recent compute outcome for use in the tree
// rendered by OnError.
func (e *GraphDebugExtension) Wrap(ctx context.Context, next func() (any, error), op *cellgraph.Operation) (any, error) {
	result, err := next()

	if op.Kind == cellgraph.OpCompute {
		if err != nil {
			e.faulted[op.Cell.ID()] = err
			delete(e.settled, op.Cell.ID())
		} else {
			e.settled[op.Cell.ID()] = true
			delete(e.faulted, op.Cell.ID())
		}
	}

	return result, err
}

// OnError logs the whole dependency graph, drawn from its parentless cells,
// with the faulted cell marked and named in the error details.
func (e *GraphDebugExtension) OnError(err error, op *cellgraph.Operation, rt *cellgraph.Runtime) {
	graph := rt.ExportGraph()
	e.logger.Error("cell compute error",
		"cell", op.Cell.ID(),
		cellgraph.Name().Key(), op.Cell.Name(),
		"error", err.Error(),
		"operation", string(op.Kind),
		"dependency_graph", e.formatGraph(graph, op.Cell.ID(), err),
	)
}

func (e *GraphDebugExtension) formatGraph(nodes []cellgraph.GraphNode, failed cellgraph.CellID, failedErr error) string {
	var sb strings.Builder
	if len(nodes) == 0 {
		return "\n(empty - no cells registered)"
	}

	byID := make(map[cellgraph.CellID]cellgraph.GraphNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	if horizontal := e.tryHorizontalTree(byID, failed); horizontal != "" {
		sb.WriteString("\n")
		sb.WriteString(horizontal)
		sb.WriteString("\n")
	}

	sb.WriteString("\nDetailed view:\n")
	sorted := make([]cellgraph.GraphNode, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool {
		return e.label(sorted[i]) < e.label(sorted[j])
	})

	for _, n := range sorted {
		sb.WriteString(fmt.Sprintf("  %s%s\n", e.label(n), e.statusMark(n.ID)))
		children := make([]cellgraph.GraphNode, 0, len(n.Children))
		for _, cid := range n.Children {
			if child, ok := byID[cid]; ok {
				children = append(children, child)
			}
		}
		sort.Slice(children, func(i, j int) bool { return e.label(children[i]) < e.label(children[j]) })
		for i, child := range children {
			branch := "├─>"
			if i == len(children)-1 {
				branch = "└─>"
			}
			sb.WriteString(fmt.Sprintf("    %s %s%s\n", branch, e.label(child), e.statusMark(child.ID)))
		}
	}

	if failedErr != nil {
		sb.WriteString("\nError details:\n")
		sb.WriteString(fmt.Sprintf("  cell: %s\n  error: %v\n", e.label(byID[failed]), failedErr))
	}
	return sb.String()
}

func (e *GraphDebugExtension) tryHorizontalTree(byID map[cellgraph.CellID]cellgraph.GraphNode, failed cellgraph.CellID) string {
	hasParent := make(map[cellgraph.CellID]bool)
	for _, n := range byID {
		for _, c := range n.Children {
			hasParent[c] = true
		}
	}

	var roots []cellgraph.CellID
	for id := range byID {
		if !hasParent[id] {
			roots = append(roots, id)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return e.label(byID[roots[i]]) < e.label(byID[roots[j]]) })
	if len(roots) == 0 {
		return ""
	}

	var root *tree.Tree
	if len(roots) == 1 {
		root = e.buildTree(roots[0], byID, failed, make(map[cellgraph.CellID]bool))
	} else {
		root = tree.NewTree(tree.NodeString("cells"))
		for _, r := range roots {
			if sub := e.buildTree(r, byID, failed, make(map[cellgraph.CellID]bool)); sub != nil {
				copyInto(root, sub)
			}
		}
	}
	if root == nil {
		return ""
	}
	return root.String()
}

func (e *GraphDebugExtension) buildTree(id cellgraph.CellID, byID map[cellgraph.CellID]cellgraph.GraphNode, failed cellgraph.CellID, visited map[cellgraph.CellID]bool) *tree.Tree {
	if visited[id] {
		return nil
	}
	visited[id] = true

	n, ok := byID[id]
	if !ok {
		return nil
	}
	label := e.label(n) + e.statusMark(id)
	node := tree.NewTree(tree.NodeString(label))

	children := make([]cellgraph.CellID, len(n.Children))
	copy(children, n.Children)
	sort.Slice(children, func(i, j int) bool { return e.label(byID[children[i]]) < e.label(byID[children[j]]) })

	for _, c := range children {
		if sub := e.buildTree(c, byID, failed, visited); sub != nil {
			copyInto(node, sub)
		}
	}
	return node
}

func copyInto(parent *tree.Tree, child *tree.Tree) {
	newChild := parent.AddChild(child.Val())
	for _, grandchild := range child.Children() {
		copyInto(newChild, grandchild)
	}
}

func (e *GraphDebugExtension) label(n cellgraph.GraphNode) string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("cell_%d", n.ID)
}

func (e *GraphDebugExtension) statusMark(id cellgraph.CellID) string {
	if _, faulted := e.faulted[id]; faulted {
		return " ❌"
	}
	if e.settled[id] {
		return " ✓"
	}
	return ""
}

// SilentHandler discards all log output; useful for tests.
type SilentHandler struct{}

func NewSilentHandler() *SilentHandler { return &SilentHandler{} }

func (h *SilentHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (h *SilentHandler) Handle(context.Context, slog.Record) error { return nil }
func (h *SilentHandler) WithAttrs(attrs []slog.Attr) slog.Handler  { return h }
func (h *SilentHandler) WithGroup(name string) slog.Handler        { return h }

// HumanHandler formats log records for a terminal, with dedicated layouts
// for the graph-debug error report.
type HumanHandler struct {
	writer io.Writer
	level  slog.Level
}

// NewHumanHandler creates a human-readable log handler.
func NewHumanHandler(writer io.Writer, level slog.Level) *HumanHandler {
	return &HumanHandler{writer: writer, level: level}
}

func (h *HumanHandler) Enabled(_ context.Context, level slog.Level) bool { return level >= h.level }

func (h *HumanHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Message == "cell compute error" {
		return h.handleGraphError(record)
	}
	if _, err := fmt.Fprintf(h.writer, "[%s] %s\n", record.Level, record.Message); err != nil {
		return err
	}
	var writeErr error
	record.Attrs(func(a slog.Attr) bool {
		if _, err := fmt.Fprintf(h.writer, "  %s: %v\n", a.Key, a.Value); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	return writeErr
}

func (h *HumanHandler) handleGraphError(record slog.Record) error {
	var cell, errorMsg, operation, graph string
	record.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "cell":
			cell = a.Value.String()
		case "error":
			errorMsg = a.Value.String()
		case "operation":
			operation = a.Value.String()
		case "dependency_graph":
			graph = a.Value.String()
		}
		return true
	})

	lines := []string{
		"",
		strings.Repeat("=", 70),
		"[GraphDebug] cell compute error",
		strings.Repeat("=", 70),
		fmt.Sprintf("\nFailed cell: %s", cell),
		fmt.Sprintf("Error: %s", errorMsg),
		fmt.Sprintf("Operation: %s", operation),
		fmt.Sprintf("\nDependency graph:%s", graph),
		strings.Repeat("=", 70),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(h.writer, line); err != nil {
			return err
		}
	}
	return nil
}

func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *HumanHandler) WithGroup(name string) slog.Handler      { return h }
