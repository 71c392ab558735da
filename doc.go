// Package cellgraph implements a concurrent, demand-driven dataflow engine
// built from cells: units of deferred computation arranged into a DAG of
// parent-to-child dependencies.
//
// # Overview
//
// A Cell caches the result of applying a pure function to the current
// values of its parents, and only recomputes when asked to and only when a
// parent has actually changed:
//
//	rt := cellgraph.NewRuntime()
//
//	x := cellgraph.Source(rt, 10)
//
//	a := cellgraph.Derive1(rt, x, func(xv int) (float64, error) {
//	    return 1.0 / float64(xv), nil
//	})
//
// Cells update concurrently: independent branches of the graph are resolved
// in parallel, and a cell referenced through multiple paths updates at most
// once per evaluation.
//
// # Reading values
//
// Evaluate drives demand up the graph and blocks until every requested cell
// reaches a terminal status (UpToDate, Oblivious, or Error):
//
//	outcomes := cellgraph.Evaluate(a.Cell())
//
// Evaluate itself never fails on a faulted cell; inspect the returned
// Outcome's Kind/Value/Errors to tell success from failure, or use a typed
// Controller's Get, which returns the combined fault error instead.
//
// # Oblivious cells
//
// A cell built with Oblivious(true) behaves like a memoized snapshot: once
// it first computes, it ignores all further parent traffic until explicitly
// reset with ForceNeedsUpdate.
//
// # Error propagation
//
// When a user function panics or returns an error, the cell enters Error
// with a fault map keyed by source (the sentinel SelfSource, or an
// ancestor's CellID). Faults propagate down to non-oblivious children and
// clear per-source as ancestors recover.
//
// # Extensions
//
// Cross-cutting concerns, such as logging, graph visualization, and metrics,
// hook in through the Extension interface, wrapping every compute, set, and
// force-* operation the same way the cell state machine would perform it unobserved:
//
//	rt := cellgraph.NewRuntime(
//	    cellgraph.WithExtension(extensions.NewLoggingExtension(nil)),
//	)
//
// # Non-cell handles
//
// Any value implementing Handle can appear as a parent alongside cells. A
// plain mutable reference is wrapped with NewValueHandle and delivers
// ParentComputed on each distinct change; it never receives demand.
//
// # Thread safety
//
// All operations are safe for concurrent use: cells may be set, updated, or
// evaluated from multiple goroutines, and the runtime's worker pool
// dispatches independent cells' handlers in parallel while preserving
// per-cell FIFO ordering.
package cellgraph
