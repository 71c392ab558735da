package cellgraph

import (
	"context"
	"fmt"
	"sort"

	"github.com/elastic/go-concert/unison"
)

// Runtime owns the cell registry, the dependency graph, the scheduler, and
// the extension chain every compute/set/force-* operation runs through. A
// program typically creates one Runtime and builds its whole cell graph
// against it.
type Runtime struct {
	cells      *cellRegistry
	graph      *cellGraph
	extensions []Extension
	scheduler  *scheduler
	pool       *PoolManager

	tagStore
}

// RuntimeOption configures a Runtime at construction time.
type RuntimeOption func(*Runtime)

// WithExtension registers an extension, ordered by Extension.Order.
func WithExtension(ext Extension) RuntimeOption {
	return func(rt *Runtime) {
		if err := rt.use(ext); err != nil {
			panic(err)
		}
	}
}

// WithWorkers bounds how many cells may be mid-compute concurrently.
func WithWorkers(n int) RuntimeOption {
	return func(rt *Runtime) { rt.scheduler = newScheduler(n) }
}

// WithRuntimeName attaches a debug name to the Runtime, picked up by
// LoggingExtension.Init to label every log line it emits.
func WithRuntimeName(name string) RuntimeOption {
	return func(rt *Runtime) { RuntimeName().SetOnRuntime(rt, name) }
}

// NewRuntime creates a Runtime ready to host cells.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		cells: newCellRegistry(),
		graph: newCellGraph(),
		pool:  NewPoolManager(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.scheduler == nil {
		rt.scheduler = newScheduler(0)
	}
	return rt
}

func (rt *Runtime) use(ext Extension) error {
	rt.extensions = append(rt.extensions, ext)
	sort.SliceStable(rt.extensions, func(i, j int) bool {
		return rt.extensions[i].Order() < rt.extensions[j].Order()
	})
	return ext.Init(rt)
}

func (rt *Runtime) registerCell(c *Cell) {
	rt.cells.Store(c.id, c)
}

func (rt *Runtime) unregisterCell(c *Cell) {
	rt.cells.Delete(c.id)
	rt.graph.forget(c.id)
}

// runOperation wraps fn in the registered extension chain (middleware
// pattern: extensions run in Order, the lowest Order wraps outermost) and
// notifies OnError if the chain returns an error.
func (rt *Runtime) runOperation(op *Operation, fn func() (any, error)) (any, error) {
	next := fn
	for i := len(rt.extensions) - 1; i >= 0; i-- {
		ext := rt.extensions[i]
		currentNext := next
		next = func() (any, error) {
			return ext.Wrap(context.Background(), currentNext, op)
		}
	}

	result, err := next()
	if err != nil {
		for _, ext := range rt.extensions {
			ext.OnError(err, op, rt)
		}
	}
	return result, err
}

// ExportGraph returns a point-in-time snapshot of the dependency graph.
func (rt *Runtime) ExportGraph() []GraphNode {
	return rt.graph.ExportGraph(rt)
}

// Dispose shuts down the scheduler (waiting for in-flight drains) and
// disposes every registered extension concurrently, returning the first
// error any of them reported.
func (rt *Runtime) Dispose() error {
	rt.scheduler.shutdown()

	var group unison.MultiErrGroup
	for _, ext := range rt.extensions {
		ext := ext
		group.Go(func() error {
			if err := ext.Dispose(rt); err != nil {
				return fmt.Errorf("disposing extension %s: %w", ext.Name(), err)
			}
			return nil
		})
	}
	if errs := group.Wait(); len(errs) > 0 {
		return errs[0]
	}
	return nil
}
