package common

import "context"

type contextKey string

const (
	RequestIDContextKey contextKey = "request_id"
	LatencyContextKey   contextKey = "__execution_time"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDContextKey, id)
}

// RequestID returns the id set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string) //nolint:errcheck
	return id
}
