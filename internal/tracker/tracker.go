// Package tracker holds the process-wide tracer handle used by the telegen
// span helpers. It exists so the root package can expose free functions
// without a global variable race.
package tracker

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
)

// Namer determines how operation names become span names.
type Namer interface {
	Name(string) string
}

type identityNamer struct{}

func (identityNamer) Name(s string) string { return s }

type state struct {
	tracer trace.Tracer
	namer  Namer
}

var global atomic.Pointer[state]

func init() {
	global.Store(&state{namer: identityNamer{}})
}

// Set updates the global tracing state. A nil namer falls back to the
// identity namer.
func Set(t trace.Tracer, n Namer) {
	if n == nil {
		n = identityNamer{}
	}
	global.Store(&state{tracer: t, namer: n})
}

// Start begins a span using the global tracer and namer. With no tracer
// configured it returns the current span from context, making the helpers
// no-ops before initialization.
func Start(ctx context.Context, operation string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	s := global.Load()
	if s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	return s.tracer.Start(ctx, s.namer.Name(operation), opts...)
}

// Tracer returns the configured global tracer, or nil if not set.
func Tracer() trace.Tracer {
	return global.Load().tracer
}
