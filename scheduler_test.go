package cellgraph

import (
	"sync/atomic"
	"testing"
)

func TestMailboxSerializesMessagesPerCell(t *testing.T) {
	rt := NewRuntime(WithWorkers(8))
	x := NewSource(rt, 0)

	var order []int
	a := NewCell(rt, func(args []any) (any, error) {
		order = append(order, args[0].(int))
		return args[0], nil
	}, []Parent{P(x)})

	for i := 1; i <= 20; i++ {
		if err := Set(x, i); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	Evaluate(a)

	for i := 1; i < len(order); i++ {
		if order[i] < order[i-1] {
			t.Fatalf("expected non-decreasing compute order (single drain goroutine per cell), got %v", order)
		}
	}
}

func TestRuntimeDisposeCallsEveryExtension(t *testing.T) {
	var disposed int32
	ext := &countingDisposeExtension{count: &disposed}

	rt := NewRuntime(WithExtension(ext))
	NewSource(rt, 1)

	if err := rt.Dispose(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(&disposed) != 1 {
		t.Fatalf("expected Dispose called once, got %d", disposed)
	}
}

type countingDisposeExtension struct {
	BaseExtension
	count *int32
}

func (e *countingDisposeExtension) Dispose(rt *Runtime) error {
	atomic.AddInt32(e.count, 1)
	return nil
}
