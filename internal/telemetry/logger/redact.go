package logger

import (
	"log/slog"
	"strings"
)

// Key fragments whose values are never logged. Audit logging records
// request headers, and these are the ones that carry credentials.
var sensitiveKeyPatterns = []string{
	"authorization",
	"cookie",
	"password",
	"secret",
	"token",
	"api_key",
}

const redactedValue = "***REDACTED***"

// MaxValueLength caps logged string values. Snapshot uploads and sample
// batches can reach the log through error details.
const MaxValueLength = 1024

// redact masks sensitive attributes and truncates long strings.
func redact(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if s != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if len(s) > MaxValueLength {
			return slog.String(a.Key, Truncate(s, MaxValueLength))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redact(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// IsSensitiveKey reports whether a key name suggests credential content.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, p := range sensitiveKeyPatterns {
		if strings.Contains(k, p) {
			return true
		}
	}
	return false
}

// Truncate shortens s to at most n bytes, marking the cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	const marker = "...(truncated)"
	if n <= len(marker) {
		return s[:n]
	}
	return s[:n-len(marker)] + marker
}
