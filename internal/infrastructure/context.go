package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// traceIDKey is the context key carrying the per-run trace ID.
const traceIDKey contextKey = "trace_id"

// NewRunContext returns a context tagged with a fresh trace ID for one
// tool invocation. Every log record emitted under it carries the ID, so
// a rerun after a vendor failure is distinguishable in the logs.
func NewRunContext(parent context.Context) (context.Context, string) {
	id := uuid.NewString()
	return WithTraceID(parent, id), id
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID retrieves the trace ID from the context, or "".
func TraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}
