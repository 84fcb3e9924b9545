package logger

import "context"

type requestIDKey struct{}

// WithRequestID attaches an HTTP request ID so downstream logs (query log
// included) can be correlated with the access log.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the ID set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
