package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// SessionIDPrefix is the prefix for tracking session IDs.
	SessionIDPrefix = "ths-"

	// ArtifactIDPrefix is the prefix for exported artifact IDs.
	ArtifactIDPrefix = "tha-"

	// MaxScreenIDLength bounds caller supplied screen identifiers.
	MaxScreenIDLength = 256
)

// GenerateSessionID generates a new tracking session ID using ULID.
// Format: ths-{ulid_lowercase}, 30 characters total.
func GenerateSessionID() (string, error) {
	return generateID(SessionIDPrefix)
}

// GenerateArtifactID generates a new export artifact ID.
func GenerateArtifactID() (string, error) {
	return generateID(ArtifactIDPrefix)
}

func generateID(prefix string) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return prefix + strings.ToLower(id.String()), nil
}

// IsValidSessionID checks the ths-{ulid} format.
func IsValidSessionID(id string) bool {
	if !strings.HasPrefix(id, SessionIDPrefix) {
		return false
	}
	_, err := ulid.ParseStrict(strings.ToUpper(strings.TrimPrefix(id, SessionIDPrefix)))
	return err == nil
}

// ValidateScreenID checks a caller supplied screen identifier.
func ValidateScreenID(id string) error {
	if id == "" {
		return ErrMissingArgument.WithDetails("screen_id is required")
	}
	if len(id) > MaxScreenIDLength {
		return ErrInvalidArgument.WithDetails("screen_id exceeds 256 characters")
	}
	return nil
}
