package cellgraph

import (
	"fmt"
	"runtime/debug"
)

// ComputeError wraps a panic or returned error from a cell's fn (E1/E2),
// tagging it with the cell that produced it and the stack at the point of
// capture.
type ComputeError struct {
	CellID     CellID
	CellName   string
	Cause      error
	StackTrace []byte
}

func (e *ComputeError) Error() string {
	if e.CellName != "" {
		return fmt.Sprintf("cell %q (#%d): %v", e.CellName, e.CellID, e.Cause)
	}
	return fmt.Sprintf("cell #%d: %v", e.CellID, e.Cause)
}

func (e *ComputeError) Unwrap() error { return e.Cause }

func newComputeError(c *Cell, cause error) *ComputeError {
	return &ComputeError{
		CellID:     c.id,
		CellName:   c.name,
		Cause:      cause,
		StackTrace: debug.Stack(),
	}
}

// ConfigError reports a misuse of the construction or administrative API
// (E3): a precondition violated by the caller rather than by a cell's fn.
type ConfigError struct {
	CellID  CellID
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cell #%d: %s", e.CellID, e.Message)
}

func newConfigError(c *Cell, msg string) *ConfigError {
	return &ConfigError{CellID: c.id, Message: msg}
}

// recoveredPanic converts a recovered panic value into an error, preserving
// the original value's message if it already was one.
func recoveredPanic(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
