package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
)

// Scope identifies who a request runs for. It is attached once the caller is authenticated.
type Scope struct {
	RequestID string
	TenantID  string
	UserID    string
}

// WithContext returns a new context carrying logger
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the request logger, or a no-op logger when none was attached
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID and returns the enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	l := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, l), l
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithScope enriches the context logger with tenant and user fields
func WithScope(ctx context.Context, scope Scope) context.Context {
	l := FromContext(ctx)
	fields := make([]zap.Field, 0, 3)
	if scope.RequestID != "" && GetRequestID(ctx) == "" {
		ctx = context.WithValue(ctx, requestIDKey, scope.RequestID)
		fields = append(fields, zap.String("request_id", scope.RequestID))
	}
	if scope.TenantID != "" {
		fields = append(fields, zap.String("tenant_id", scope.TenantID))
	}
	if scope.UserID != "" {
		fields = append(fields, zap.String("user_id", scope.UserID))
	}
	return WithContext(ctx, l.With(fields...))
}

// L returns the context logger with trace_id and span_id added when a span is active.
// Usage: logger.L(ctx).Info("message", zap.String("key", "value"))
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}

// WithTraceContext adds trace_id and span_id from the active span
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}
