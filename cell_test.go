package cellgraph

import "testing"

func TestSourceSeedsUpToDate(t *testing.T) {
	rt := NewRuntime()
	x := NewSource(rt, 10)

	if got := x.Status(); got != UpToDate {
		t.Fatalf("expected UpToDate, got %v", got)
	}
	v, ok := x.Read()
	if !ok || v != 10 {
		t.Fatalf("expected (10, true), got (%v, %v)", v, ok)
	}
}

func TestSourceOblivious(t *testing.T) {
	rt := NewRuntime()
	x := NewSource(rt, 10, Oblivious(true))

	if got := x.Status(); got != Oblivious {
		t.Fatalf("expected Oblivious, got %v", got)
	}
}

func TestNewCellPrepopulatesFromComputedParent(t *testing.T) {
	rt := NewRuntime()
	x := NewSource(rt, 10)

	var calls int
	a := NewCell(rt, func(args []any) (any, error) {
		calls++
		return args[0].(int) * 2, nil
	}, []Parent{P(x)})

	if got := a.Status(); got != NeedsUpdate {
		t.Fatalf("expected NeedsUpdate before first demand, got %v", got)
	}
	if !a.ready() {
		t.Fatalf("expected a to be ready: parentValues should be pre-populated from x's Computed snapshot")
	}

	Update(a)
	Evaluate(a)
	if calls != 1 {
		t.Fatalf("expected fn called once, got %d", calls)
	}
	if v, ok := a.Read(); !ok || v != 20 {
		t.Fatalf("expected (20, true), got (%v, %v)", v, ok)
	}
}

func TestWithNameSetsTagAndGraphLabel(t *testing.T) {
	rt := NewRuntime()
	x := NewSource(rt, 1, WithName("x"))

	if got := x.Name(); got != "x" {
		t.Fatalf("expected name %q, got %q", "x", got)
	}
	name, ok := Name().Get(x)
	if !ok || name != "x" {
		t.Fatalf("expected tag lookup (x, true), got (%v, %v)", name, ok)
	}

	for _, n := range rt.ExportGraph() {
		if n.ID == x.ID() && n.Name != "x" {
			t.Fatalf("expected graph node name %q, got %q", "x", n.Name)
		}
	}
}

func TestRuntimeNameTag(t *testing.T) {
	rt := NewRuntime(WithRuntimeName("checkout"))

	name, ok := RuntimeName().GetFromRuntime(rt)
	if !ok || name != "checkout" {
		t.Fatalf("expected tag lookup (checkout, true), got (%v, %v)", name, ok)
	}
	if got := RuntimeName().Key(); got != "runtime.name" {
		t.Fatalf("expected key %q, got %q", "runtime.name", got)
	}

	rt2 := NewRuntime()
	if _, ok := RuntimeName().GetFromRuntime(rt2); ok {
		t.Fatal("expected no runtime name set on a runtime without WithRuntimeName")
	}
}

func TestCellSubscribeNotifiesOnCompute(t *testing.T) {
	rt := NewRuntime()
	x := NewSource(rt, 1)
	a := NewCell(rt, func(args []any) (any, error) {
		return args[0].(int) + 1, nil
	}, []Parent{P(x)})

	var got any
	unsub := a.Subscribe(func(v any) { got = v })
	defer unsub()

	Evaluate(a)
	if got != 2 {
		t.Fatalf("expected subscriber notified with 2, got %v", got)
	}
}
