package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// AdminKey is the context key for the authenticated admin subject
	AdminKey contextKey = "admin"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if not found
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return zap.NewNop()
	}
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds request ID to context and returns enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithAdmin records the admin subject on the context and its logger
func WithAdmin(ctx context.Context, subject string) context.Context {
	ctx = context.WithValue(ctx, AdminKey, subject)
	return WithContext(ctx, FromContext(ctx).With(zap.String("admin", subject)))
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetAdmin retrieves the admin subject from context
func GetAdmin(ctx context.Context) string {
	if subject, ok := ctx.Value(AdminKey).(string); ok {
		return subject
	}
	return ""
}

// GetTraceID extracts the trace ID from the context's span.
// Returns an empty string if no valid span exists.
func GetTraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// TraceFields returns trace_id and span_id fields for the active span, if any
func TraceFields(ctx context.Context) []zap.Field {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	}
}

// L returns the context logger enriched with trace correlation fields.
// Usage: logger.L(ctx).Info("message", zap.String("key", "value"))
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	if ctx == nil {
		return l
	}
	if fields := TraceFields(ctx); len(fields) > 0 {
		l = l.With(fields...)
	}
	return l
}

// Or returns the context logger when one is attached, otherwise fallback
// enriched with any trace fields.
func Or(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if ctx != nil {
		if _, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
			return L(ctx)
		}
	}
	if fallback == nil {
		return zap.NewNop()
	}
	if ctx != nil {
		if fields := TraceFields(ctx); len(fields) > 0 {
			return fallback.With(fields...)
		}
	}
	return fallback
}
