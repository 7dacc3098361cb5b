package logger

import (
	"context"

	"github.com/sirupsen/logrus"
)

type requestIDKey struct{}

// ContextWithRequestID stores the request ID for downstream logging
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID or an empty string
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// FromContext returns an entry carrying the request ID when present
func FromContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(Logger)
	if id := RequestIDFromContext(ctx); id != "" {
		entry = entry.WithField("request_id", id)
	}
	return entry
}
