package extensions

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/cellgraph/cellgraph"
)

func TestLoggingExtensionLogsErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rt := cellgraph.NewRuntime(cellgraph.WithExtension(NewLoggingExtension(logger)))
	a := cellgraph.NewCell(rt, func([]any) (any, error) {
		return nil, errors.New("boom")
	}, nil, cellgraph.WithName("a"))

	cellgraph.Evaluate(a)

	out := buf.String()
	if !strings.Contains(out, "cell operation failed") {
		t.Fatalf("expected a failure log line, got: %s", out)
	}
	if !strings.Contains(out, "cell entered error state") {
		t.Fatalf("expected an OnError log line, got: %s", out)
	}
}

func TestLoggingExtensionPicksUpRuntimeName(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rt := cellgraph.NewRuntime(
		cellgraph.WithRuntimeName("checkout"),
		cellgraph.WithExtension(NewLoggingExtension(logger)),
	)
	a := cellgraph.NewCell(rt, func([]any) (any, error) { return 1, nil }, nil)
	cellgraph.Evaluate(a)

	if !strings.Contains(buf.String(), "runtime=checkout") {
		t.Fatalf("expected every log line to carry the runtime name, got: %s", buf.String())
	}
}

func TestGraphDebugExtensionRendersFailedCell(t *testing.T) {
	var buf bytes.Buffer
	ext := NewGraphDebugExtension(NewHumanHandler(&buf, slog.LevelError))

	rt := cellgraph.NewRuntime(cellgraph.WithExtension(ext))
	x := cellgraph.NewSource(rt, 0, cellgraph.WithName("x"))
	a := cellgraph.NewCell(rt, func(args []any) (any, error) {
		if args[0].(int) == 0 {
			return nil, errors.New("division by zero")
		}
		return 1, nil
	}, []cellgraph.Parent{cellgraph.P(x)}, cellgraph.WithName("a"))

	cellgraph.Evaluate(a)

	out := buf.String()
	if !strings.Contains(out, "Failed cell") {
		t.Fatalf("expected rendered failure report, got: %s", out)
	}
	if !strings.Contains(out, "a") {
		t.Fatalf("expected the faulted cell's name in the report, got: %s", out)
	}
}

func TestSilentHandlerDiscardsEverything(t *testing.T) {
	h := NewSilentHandler()
	if h.Enabled(nil, slog.LevelError) {
		t.Fatal("expected SilentHandler to report disabled for every level")
	}
}
