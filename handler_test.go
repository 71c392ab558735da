package cellgraph

import (
	"errors"
	"testing"
)

func TestComputeAndPropagate(t *testing.T) {
	rt := NewRuntime()
	x := NewSource(rt, 10)
	a := NewCell(rt, func(args []any) (any, error) {
		return args[0].(int) * 2, nil
	}, []Parent{P(x)})
	b := NewCell(rt, func(args []any) (any, error) {
		return args[0].(int) + 1, nil
	}, []Parent{P(a)})

	out := Evaluate(b)[0]
	if out.Kind != Computed || out.Value != 21 {
		t.Fatalf("expected Computed(21), got %+v", out)
	}
}

func TestSetRegressesDownstreamToNeedsUpdate(t *testing.T) {
	rt := NewRuntime()
	x := NewSource(rt, 10)
	a := NewCell(rt, func(args []any) (any, error) {
		return args[0].(int) * 2, nil
	}, []Parent{P(x)})

	Evaluate(a)
	if a.Status() != UpToDate {
		t.Fatalf("expected UpToDate, got %v", a.Status())
	}

	if err := Set(x, 11); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// a's compute-triggering ParentComputed message is async; give the
	// handler a chance to land by re-demanding and evaluating.
	out := Evaluate(a)[0]
	if out.Kind != Computed || out.Value != 22 {
		t.Fatalf("expected Computed(22) after regression+recompute, got %+v", out)
	}
}

func TestSetOnNonLeafIsConfigError(t *testing.T) {
	rt := NewRuntime()
	x := NewSource(rt, 10)
	a := NewCell(rt, func(args []any) (any, error) {
		return args[0].(int), nil
	}, []Parent{P(x)})

	err := Set(a, 5)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
}

func TestComputeErrorPropagatesAsFault(t *testing.T) {
	rt := NewRuntime()
	boom := errors.New("boom")
	x := NewSource(rt, 10)
	a := NewCell(rt, func(args []any) (any, error) {
		return nil, boom
	}, []Parent{P(x)})
	b := NewCell(rt, func(args []any) (any, error) {
		return args[0], nil
	}, []Parent{P(a)})

	outs := Evaluate(a, b)
	if outs[0].Kind != Faulted {
		t.Fatalf("expected a Faulted, got %+v", outs[0])
	}
	if outs[1].Kind != Faulted {
		t.Fatalf("expected b Faulted (propagated), got %+v", outs[1])
	}
	if _, ok := outs[1].Errors[a.ID()]; !ok {
		t.Fatalf("expected b's fault map keyed by a's CellID, got %+v", outs[1].Errors)
	}
}

func TestErrorRecoversWhenSourceRecovers(t *testing.T) {
	rt := NewRuntime()
	x := NewSource(rt, 0)
	a := NewCell(rt, func(args []any) (any, error) {
		xv := args[0].(int)
		if xv == 0 {
			return nil, errors.New("division by zero")
		}
		return 100 / xv, nil
	}, []Parent{P(x)})

	out := Evaluate(a)[0]
	if out.Kind != Faulted {
		t.Fatalf("expected Faulted, got %+v", out)
	}

	if err := Set(x, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out = Evaluate(a)[0]
	if out.Kind != Computed || out.Value != 10 {
		t.Fatalf("expected Computed(10) after recovery, got %+v", out)
	}
	if a.Status() != UpToDate {
		t.Fatalf("expected UpToDate after recovery, got %v", a.Status())
	}
}

func TestObliviousAbsorbsParentTraffic(t *testing.T) {
	rt := NewRuntime()
	x := NewSource(rt, 1)
	var calls int
	a := NewCell(rt, func(args []any) (any, error) {
		calls++
		return args[0].(int) + 1, nil
	}, []Parent{P(x)}, Oblivious(true))

	Evaluate(a)
	if calls != 1 {
		t.Fatalf("expected 1 compute, got %d", calls)
	}
	if a.Status() != Oblivious {
		t.Fatalf("expected Oblivious, got %v", a.Status())
	}

	if err := Set(x, 99); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Evaluate(a)
	if calls != 1 {
		t.Fatalf("expected oblivious cell to ignore further parent traffic, got %d calls", calls)
	}
	if v, _ := a.Read(); v != 2 {
		t.Fatalf("expected stale memoized value 2, got %v", v)
	}
}

func TestForceNeedsUpdateResetsOblivious(t *testing.T) {
	rt := NewRuntime()
	x := NewSource(rt, 1)
	var calls int
	a := NewCell(rt, func(args []any) (any, error) {
		calls++
		return args[0].(int) + 1, nil
	}, []Parent{P(x)}, Oblivious(true))

	Evaluate(a)
	if err := Set(x, 99); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ForceNeedsUpdate(a)
	out := Evaluate(a)[0]
	if out.Kind != Computed || out.Value != 100 {
		t.Fatalf("expected Computed(100) after ForceNeedsUpdate, got %+v", out)
	}
	if calls != 2 {
		t.Fatalf("expected 2 computes total, got %d", calls)
	}
}

func TestForceErrorInjectsSelfFault(t *testing.T) {
	rt := NewRuntime()
	x := NewSource(rt, 1)
	a := NewCell(rt, func(args []any) (any, error) {
		return args[0], nil
	}, []Parent{P(x)})

	Evaluate(a)
	injected := errors.New("injected")
	ForceError(injected, a)

	out := Evaluate(a)[0]
	if out.Kind != Faulted {
		t.Fatalf("expected Faulted, got %+v", out)
	}
	if out.Errors[SelfSource] != injected {
		t.Fatalf("expected SelfSource fault == injected error, got %+v", out.Errors)
	}
}

func TestMultipleFaultSourcesPersistUntilAllClear(t *testing.T) {
	rt := NewRuntime()
	xErr := errors.New("x failed")
	yErr := errors.New("y failed")
	x := NewCell(rt, func([]any) (any, error) { return nil, xErr }, nil)
	y := NewCell(rt, func([]any) (any, error) { return nil, yErr }, nil)
	both := NewCell(rt, func(args []any) (any, error) {
		return args[0].(int) + args[1].(int), nil
	}, []Parent{P(x), P(y)})

	Evaluate(x, y, both)
	if both.Status() != Error {
		t.Fatalf("expected Error, got %v", both.Status())
	}
	if len(both.Value().Errors) != 2 {
		t.Fatalf("expected 2 fault sources, got %+v", both.Value().Errors)
	}

	ForceNeedsUpdate(x)
	Evaluate(x)
	Evaluate(both)
	if both.Status() != Error {
		t.Fatalf("expected still Error with y unrecovered, got %v", both.Status())
	}

	ForceNeedsUpdate(y)
	Evaluate(y)
	out := Evaluate(both)[0]
	if out.Kind != Faulted {
		t.Fatalf("expected still Faulted after y recomputes to the same error, got %+v", out)
	}
}
