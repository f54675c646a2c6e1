// Package domain defines the core domain models for TouchMap.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Codes have the form TH-<AREA>-<NNNN>; the trailing four digits follow the
// HTTP status they map to (4040 -> 404, 4001 -> 400).
type DomainError struct {
	Code    string // Error code (e.g., "TH-SESS-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError with the same code, so derived copies still
// compare equal to their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of e carrying details. e is left untouched, so
// package-level sentinels stay reusable.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy of e wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	return code == "" || de.Code == code
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Tracking Session Errors (SESS)
// ============================================================================

var (
	// ErrSessionNotFound indicates the requested tracking session was not found.
	ErrSessionNotFound = NewDomainError("TH-SESS-4040", "session not found")

	// ErrSessionClosed indicates the session was closed while the call was in flight.
	ErrSessionClosed = NewDomainError("TH-SESS-4100", "session closed")
)

// ============================================================================
// Screen Errors (SCRN)
// ============================================================================

var (
	// ErrScreenNotTracked indicates no record exists for the screen.
	ErrScreenNotTracked = NewDomainError("TH-SCRN-4040", "screen not tracked")

	// ErrNoActiveScreen indicates a sample arrived before any navigation.
	ErrNoActiveScreen = NewDomainError("TH-SCRN-4041", "no active screen")

	// ErrSnapshotMissing indicates a screen has no snapshot to render onto.
	ErrSnapshotMissing = NewDomainError("TH-SCRN-4042", "snapshot not attached")

	// ErrSnapshotDecode indicates an uploaded snapshot could not be decoded.
	ErrSnapshotDecode = NewDomainError("TH-SCRN-4001", "snapshot decode failed")
)

// ============================================================================
// Render Errors (RNDR)
// ============================================================================

var (
	// ErrInvalidRenderConfig indicates a radius or image size that cannot be rendered.
	ErrInvalidRenderConfig = NewDomainError("TH-RNDR-4001", "invalid render configuration")
)

// ============================================================================
// Export Errors (EXPT)
// ============================================================================

var (
	// ErrArtifactNotFound indicates no exported artifact matches the lookup.
	ErrArtifactNotFound = NewDomainError("TH-EXPT-4040", "artifact not found")

	// ErrArtifactCorrupt indicates stored artifact bytes failed verification.
	ErrArtifactCorrupt = NewDomainError("TH-EXPT-5002", "artifact corrupt")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("TH-SYS-5000", "internal server error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("TH-SYS-5001", "storage error")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("TH-SYS-4000", "bad request")

	// ErrPayloadTooLarge indicates a request body over the configured limit.
	ErrPayloadTooLarge = NewDomainError("TH-SYS-4130", "payload too large")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("TH-SYS-4290", "too many requests")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("TH-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("TH-ARG-1002", "missing required argument")
)
