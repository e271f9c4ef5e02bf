package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	// TraceIDKey is the log field and context key carrying the trace id.
	TraceIDKey = "trace_id"
	// PaginatorKey is the log field and context key carrying the paginator id.
	PaginatorKey = "paginator"

	traceIDKey   contextKey = TraceIDKey
	paginatorKey contextKey = PaginatorKey
)

// GetTraceID gets trace id from context.Context.
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// SetTraceID sets trace id to context.Context.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// EnsureTraceID ensures that a trace ID exists in the context.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if traceID := GetTraceID(ctx); traceID != "" {
		return ctx, traceID
	}
	traceID := uuid.NewString()
	return SetTraceID(ctx, traceID), traceID
}

// GetPaginatorID gets the id of the paginator that issued the current call.
func GetPaginatorID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(paginatorKey).(string); ok {
		return id
	}
	return ""
}

// SetPaginatorID sets the paginator id on the context.
func SetPaginatorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, paginatorKey, id)
}
