package cellgraph

// Source creates a type-safe leaf cell pre-seeded with initial, settable
// later via Controller.Set/Set.
func Source[T any](rt *Runtime, initial T, opts ...CellOption) *Controller[T] {
	return &Controller[T]{cell: NewSource(rt, initial, opts...)}
}

// Derive1 builds a cell depending on one parent (cell, Handle, or constant),
// typed so fn never has to unpack args itself.
func Derive1[T, D1 any](rt *Runtime, p1 any, fn func(D1) (T, error), opts ...CellOption) *Controller[T] {
	parents := []Parent{P(p1)}
	c := NewCell(rt, func(args []any) (any, error) {
		return fn(args[0].(D1))
	}, parents, opts...)
	return &Controller[T]{cell: c}
}

// Derive2 builds a cell depending on two parents.
func Derive2[T, D1, D2 any](rt *Runtime, p1, p2 any, fn func(D1, D2) (T, error), opts ...CellOption) *Controller[T] {
	parents := []Parent{P(p1), P(p2)}
	c := NewCell(rt, func(args []any) (any, error) {
		return fn(args[0].(D1), args[1].(D2))
	}, parents, opts...)
	return &Controller[T]{cell: c}
}

// Derive3 builds a cell depending on three parents.
func Derive3[T, D1, D2, D3 any](rt *Runtime, p1, p2, p3 any, fn func(D1, D2, D3) (T, error), opts ...CellOption) *Controller[T] {
	parents := []Parent{P(p1), P(p2), P(p3)}
	c := NewCell(rt, func(args []any) (any, error) {
		return fn(args[0].(D1), args[1].(D2), args[2].(D3))
	}, parents, opts...)
	return &Controller[T]{cell: c}
}

// Derive4 builds a cell depending on four parents.
func Derive4[T, D1, D2, D3, D4 any](rt *Runtime, p1, p2, p3, p4 any, fn func(D1, D2, D3, D4) (T, error), opts ...CellOption) *Controller[T] {
	parents := []Parent{P(p1), P(p2), P(p3), P(p4)}
	c := NewCell(rt, func(args []any) (any, error) {
		return fn(args[0].(D1), args[1].(D2), args[2].(D3), args[3].(D4))
	}, parents, opts...)
	return &Controller[T]{cell: c}
}
