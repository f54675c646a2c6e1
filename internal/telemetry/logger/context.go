package logger

import "context"

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	sessionIDKey
)

func stringValue(ctx context.Context, key ctxKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or Default().
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRequestID tags ctx with the HTTP request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request id, or "".
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithSessionID tags ctx with a tracking session id.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext returns the tracking session id, or "".
func SessionIDFromContext(ctx context.Context) string {
	return stringValue(ctx, sessionIDKey)
}

// L returns FromContext(ctx) with request_id and session_id attached when
// ctx carries them.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	var attrs []any
	if id := RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	if id := SessionIDFromContext(ctx); id != "" {
		attrs = append(attrs, "session_id", id)
	}
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}
