// Package extensions holds cross-cutting cellgraph.Extension
// implementations: structured logging and dependency-graph diagnostics.
package extensions

import (
	"context"
	"log/slog"
	"time"

	"github.com/cellgraph/cellgraph"
)

// LoggingExtension logs every compute/set/force-* operation at Debug level,
// and errors at Error level, using log/slog.
type LoggingExtension struct {
	cellgraph.BaseExtension
	log *slog.Logger
}

// NewLoggingExtension creates a logging extension. A nil logger falls back
// to slog.Default().
func NewLoggingExtension(log *slog.Logger) *LoggingExtension {
	if log == nil {
		log = slog.Default()
	}
	return &LoggingExtension{
		BaseExtension: cellgraph.NewBaseExtension("logging"),
		log:           log,
	}
}

// Init attaches the Runtime's name, if one was set via
// cellgraph.WithRuntimeName, as a persistent attribute on every line this
// extension logs.
func (e *LoggingExtension) Init(rt *cellgraph.Runtime) error {
	if name, ok := cellgraph.RuntimeName().GetFromRuntime(rt); ok {
		e.log = e.log.With(slog.String("runtime", name))
	}
	return nil
}

func (e *LoggingExtension) Wrap(ctx context.Context, next func() (any, error), op *cellgraph.Operation) (any, error) {
	start := time.Now()
	attrs := []slog.Attr{
		slog.String("op", string(op.Kind)),
		slog.Uint64("cell", uint64(op.Cell.ID())),
	}
	if name := op.Cell.Name(); name != "" {
		attrs = append(attrs, slog.String(cellgraph.Name().Key(), name))
	}
	e.log.LogAttrs(ctx, slog.LevelDebug, "cell operation starting", attrs...)

	result, err := next()

	duration := time.Since(start)
	attrs = append(attrs, slog.Duration("duration", duration))
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
		e.log.LogAttrs(ctx, slog.LevelError, "cell operation failed", attrs...)
	} else {
		e.log.LogAttrs(ctx, slog.LevelDebug, "cell operation completed", attrs...)
	}

	return result, err
}

func (e *LoggingExtension) OnError(err error, op *cellgraph.Operation, rt *cellgraph.Runtime) {
	e.log.Error("cell entered error state",
		"op", string(op.Kind),
		"cell", op.Cell.ID(),
		"error", err,
	)
}
