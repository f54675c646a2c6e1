// Package logger provides structured logging for TouchMap.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, JSON/text handlers, dynamic level
//   - context.go: request-id propagation through context.Context
//   - redact.go: masking of credentials and oversized values
//
// Packages below the server layer accept a plain *slog.Logger; use
// Logger.Slog to hand one down.
package logger
