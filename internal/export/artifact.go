package export

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"image"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/yndnr/touchmap-go/internal/core/domain"
	"github.com/yndnr/touchmap-go/internal/core/render"
)

// Artifact is one screen's exported heatmap.
type Artifact struct {
	ID          string
	SessionID   string
	ScreenID    string
	Rendered    bool
	Image       image.Image
	Provenance  domain.Provenance
	SampleCount int
	CreatedAt   time.Time
}

// Metadata describes a stored artifact.
type Metadata struct {
	ID          string            `json:"id"`
	SessionID   string            `json:"session_id"`
	ScreenID    string            `json:"screen_id"`
	Rendered    bool              `json:"rendered"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	SampleCount int               `json:"sample_count"`
	Provenance  domain.Provenance `json:"provenance"`
	Checksum    string            `json:"checksum"`
	Size        int               `json:"size"`
	Sealed      bool              `json:"sealed"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Exporter receives artifacts at flush time. Implementations must be safe
// for concurrent use; a flush exports screens in parallel.
type Exporter interface {
	Export(ctx context.Context, a Artifact) error
}

// Catalog reads stored artifacts back.
type Catalog interface {
	// List returns metadata for a session, or for every session when
	// sessionID is empty, ordered by session then screen.
	List(ctx context.Context, sessionID string) ([]Metadata, error)

	// Get returns an artifact's metadata and verified PNG bytes.
	Get(ctx context.Context, sessionID, screenID string) (Metadata, []byte, error)

	// Delete removes every artifact of a session.
	Delete(ctx context.Context, sessionID string) error
}

// Backend is an exporter with a catalog that holds resources.
type Backend interface {
	Exporter
	Catalog
	Close() error
}

// Encode validates a and returns its metadata and PNG encoding.
func Encode(a Artifact) (Metadata, []byte, error) {
	if a.SessionID == "" {
		return Metadata{}, nil, domain.ErrMissingArgument.WithDetails("session_id is required")
	}
	if err := domain.ValidateScreenID(a.ScreenID); err != nil {
		return Metadata{}, nil, err
	}
	if a.Image == nil {
		return Metadata{}, nil, domain.ErrSnapshotMissing.WithDetails("screen_id: " + a.ScreenID)
	}

	data, err := render.PNGBytes(a.Image)
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("encode png: %w", err)
	}

	if a.ID == "" {
		if a.ID, err = domain.GenerateArtifactID(); err != nil {
			return Metadata{}, nil, err
		}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	b := a.Image.Bounds()
	return Metadata{
		ID:          a.ID,
		SessionID:   a.SessionID,
		ScreenID:    a.ScreenID,
		Rendered:    a.Rendered,
		Width:       b.Dx(),
		Height:      b.Dy(),
		SampleCount: a.SampleCount,
		Provenance:  a.Provenance.Clone(),
		Checksum:    Checksum(data),
		Size:        len(data),
		CreatedAt:   a.CreatedAt.UTC(),
	}, data, nil
}

// Checksum returns the hex BLAKE2b-256 digest of data.
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Verify checks data against the recorded checksum and size.
func (m Metadata) Verify(data []byte) error {
	if len(data) != m.Size || Checksum(data) != m.Checksum {
		return domain.ErrArtifactCorrupt.WithDetails(fmt.Sprintf("%s/%s: checksum mismatch", m.SessionID, m.ScreenID))
	}
	return nil
}

// DecodeImage decodes verified artifact bytes.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := render.DecodeImage(bytes.NewReader(data))
	return img, err
}

// escapeName maps a screen or session id onto a single path segment or
// key component. A leading dot is escaped too, so no id can become "." or
// ".." or collide with hidden temp files.
func escapeName(id string) string {
	name := url.PathEscape(id)
	if strings.HasPrefix(name, ".") {
		name = "%2E" + name[1:]
	}
	return name
}

func unescapeName(name string) (string, error) {
	return url.PathUnescape(name)
}
