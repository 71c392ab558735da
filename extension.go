package cellgraph

import "context"

// Extension provides hooks into a cell's compute lifecycle, mirroring how a
// resolution pipeline can be intercepted: logging, metrics, and graph
// diagnostics are all built as extensions rather than special-cased in the
// handler.
type Extension interface {
	// Name returns the extension's name.
	Name() string

	// Order determines extension execution order (lower runs first, and
	// wraps outermost).
	Order() int

	// Init is called once when the extension is registered on a Runtime.
	Init(rt *Runtime) error

	// Wrap intercepts a cell operation (compute, set, force-*). next
	// performs the operation; Wrap may run code before/after, or decline to
	// call next at all.
	Wrap(ctx context.Context, next func() (any, error), op *Operation) (any, error)

	// OnError observes an error produced by an operation. It cannot
	// suppress the error; use Wrap for that.
	OnError(err error, op *Operation, rt *Runtime)

	// Dispose is called when the Runtime is disposed.
	Dispose(rt *Runtime) error
}

// BaseExtension provides no-op defaults for every Extension method; embed it
// and override only the hooks an extension cares about.
type BaseExtension struct {
	name string
}

// NewBaseExtension creates a base extension with the given name.
func NewBaseExtension(name string) BaseExtension {
	return BaseExtension{name: name}
}

func (e *BaseExtension) Name() string { return e.name }

func (e *BaseExtension) Order() int { return 100 }

func (e *BaseExtension) Init(rt *Runtime) error { return nil }

func (e *BaseExtension) Wrap(ctx context.Context, next func() (any, error), op *Operation) (any, error) {
	return next()
}

func (e *BaseExtension) OnError(err error, op *Operation, rt *Runtime) {}

func (e *BaseExtension) Dispose(rt *Runtime) error { return nil }

// Operation describes the cell operation an extension is wrapping or
// observing.
type Operation struct {
	Kind    OperationKind
	Cell    *Cell
	Runtime *Runtime
}

// OperationKind identifies which cell operation is in flight.
type OperationKind string

const (
	// OpCompute indicates a cell is running its fn against resolved parent
	// values.
	OpCompute OperationKind = "compute"
	// OpSet indicates an external write to a leaf cell.
	OpSet OperationKind = "set"
	// OpForceNeedsUpdate indicates an administrative reset.
	OpForceNeedsUpdate OperationKind = "force-needs-update"
	// OpForceError indicates an administrative error injection.
	OpForceError OperationKind = "force-error"
)
