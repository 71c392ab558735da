package cellgraph

import (
	"errors"
	"testing"
)

func TestControllerGetReturnsValue(t *testing.T) {
	rt := NewRuntime()
	x := Source(rt, 10)
	a := Derive1(rt, x, func(xv int) (int, error) {
		return xv * 2, nil
	})

	v, err := a.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 20 {
		t.Fatalf("expected 20, got %d", v)
	}
}

func TestControllerGetReturnsCombinedFault(t *testing.T) {
	rt := NewRuntime()
	x := Source(rt, 0)
	a := Derive1(rt, x, func(xv int) (int, error) {
		if xv == 0 {
			return 0, errors.New("division by zero")
		}
		return 100 / xv, nil
	})

	_, err := a.Get()
	if err == nil {
		t.Fatal("expected non-nil error")
	}
}

func TestControllerPeekDoesNotDemand(t *testing.T) {
	rt := NewRuntime()
	x := Source(rt, 10)
	var calls int
	a := Derive1(rt, x, func(xv int) (int, error) {
		calls++
		return xv * 2, nil
	})

	if _, ok := a.Peek(); ok {
		t.Fatal("expected Peek to report not-ready before any demand")
	}
	if calls != 0 {
		t.Fatalf("expected Peek not to trigger a compute, got %d calls", calls)
	}

	a.Get()
	v, ok := a.Peek()
	if !ok || v != 20 {
		t.Fatalf("expected Peek (20, true) after Get, got (%v, %v)", v, ok)
	}
}

func TestControllerComposesAsParent(t *testing.T) {
	rt := NewRuntime()
	x := Source(rt, 2)
	a := Derive1(rt, x, func(xv int) (int, error) { return xv * 3, nil })
	b := Derive1(rt, a, func(av int) (int, error) { return av + 1, nil })

	v, err := b.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 7 {
		t.Fatalf("expected 7, got %d", v)
	}
}

func TestControllerSetOnNonLeafReturnsConfigError(t *testing.T) {
	rt := NewRuntime()
	x := Source(rt, 1)
	a := Derive1(rt, x, func(xv int) (int, error) { return xv, nil })

	var cfgErr *ConfigError
	if err := a.Set(5); !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
}

func TestDerive234Arities(t *testing.T) {
	rt := NewRuntime()
	b := Derive2(rt, 2, 3, func(p, q int) (int, error) { return p + q, nil })
	if v, err := b.Get(); err != nil || v != 5 {
		t.Fatalf("Derive2: expected (5, nil), got (%v, %v)", v, err)
	}

	three := Derive3(rt, 1, 2, 3, func(p, q, r int) (int, error) { return p + q + r, nil })
	if v, err := three.Get(); err != nil || v != 6 {
		t.Fatalf("Derive3: expected (6, nil), got (%v, %v)", v, err)
	}

	four := Derive4(rt, 1, 2, 3, 4, func(p, q, r, s int) (int, error) { return p + q + r + s, nil })
	if v, err := four.Get(); err != nil || v != 10 {
		t.Fatalf("Derive4: expected (10, nil), got (%v, %v)", v, err)
	}
}
