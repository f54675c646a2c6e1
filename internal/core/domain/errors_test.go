package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *DomainError
		want string
	}{
		{"plain", ErrScreenNotTracked, "[TH-SCRN-4040] screen not tracked"},
		{"details", ErrScreenNotTracked.WithDetails("checkout"), "[TH-SCRN-4040] screen not tracked: checkout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDomainError_IsComparesCodes(t *testing.T) {
	derived := ErrSessionNotFound.WithDetails("ths-1").WithCause(errors.New("gone"))
	wrapped := fmt.Errorf("close session: %w", derived)

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"derived", derived, ErrSessionNotFound, true},
		{"wrapped", wrapped, ErrSessionNotFound, true},
		{"same code new value", NewDomainError("TH-SESS-4040", "other text"), ErrSessionNotFound, true},
		{"other code", ErrSessionClosed, ErrSessionNotFound, false},
		{"plain error", errors.New("session not found"), ErrSessionNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDomainError_WithLeavesOriginal(t *testing.T) {
	cause := errors.New("decode: unexpected EOF")
	err := ErrSnapshotDecode.WithDetails("home").WithCause(cause)

	if ErrSnapshotDecode.Details != "" || ErrSnapshotDecode.Cause != nil {
		t.Fatalf("sentinel modified: %+v", ErrSnapshotDecode)
	}
	if err.Code != ErrSnapshotDecode.Code || err.Details != "home" {
		t.Errorf("err = %+v", err)
	}
	if !errors.Is(err, cause) || errors.Unwrap(err) != cause {
		t.Error("cause not reachable through Unwrap")
	}
	if errors.Unwrap(ErrSnapshotDecode) != nil {
		t.Error("sentinel has a cause")
	}
}

func TestErrorCodeHelpers(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"domain", ErrArtifactNotFound, "TH-EXPT-4040"},
		{"wrapped", fmt.Errorf("render: %w", ErrInvalidRenderConfig), "TH-RNDR-4001"},
		{"plain", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.code {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !IsDomainError(tt.err, tt.code) {
				t.Errorf("IsDomainError(%q) = false", tt.code)
			}
			if IsDomainError(tt.err, "TH-SYS-9999") {
				t.Error("IsDomainError matched an unknown code")
			}
		})
	}
}

func TestPredefinedErrors(t *testing.T) {
	all := []*DomainError{
		ErrSessionNotFound, ErrSessionClosed,
		ErrScreenNotTracked, ErrNoActiveScreen, ErrSnapshotMissing, ErrSnapshotDecode,
		ErrInvalidRenderConfig,
		ErrArtifactNotFound, ErrArtifactCorrupt,
		ErrInternalServer, ErrStorageError, ErrBadRequest, ErrPayloadTooLarge, ErrRateLimited,
		ErrInvalidArgument, ErrMissingArgument,
	}

	seen := make(map[string]bool)
	for _, e := range all {
		if e.Message == "" {
			t.Errorf("%s has no message", e.Code)
		}
		if len(e.Code) < len("TH-X-0000") || e.Code[:3] != "TH-" {
			t.Errorf("malformed code %q", e.Code)
		}
		if seen[e.Code] {
			t.Errorf("duplicate code %q", e.Code)
		}
		seen[e.Code] = true
	}
}
