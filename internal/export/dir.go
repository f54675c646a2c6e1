package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yndnr/touchmap-go/internal/core/domain"
	"github.com/yndnr/touchmap-go/pkg/crypto/adaptive"
)

const (
	metaExt   = ".json"
	pngExt    = ".png"
	sealedExt = ".png.sealed"
)

// DirExporter writes artifacts into a directory tree:
//
//	<root>/<session>/<screen>.png
//	<root>/<session>/<screen>.json
//
// Sealed images use the .png.sealed extension. Screen ids are
// path-escaped so any id maps to a single file name.
type DirExporter struct {
	root   string
	sealer *adaptive.Sealer
	logger *slog.Logger
}

// DirOption configures a DirExporter.
type DirOption func(*DirExporter)

// WithDirSealer seals image bytes at rest.
func WithDirSealer(s *adaptive.Sealer) DirOption {
	return func(d *DirExporter) {
		d.sealer = s
	}
}

// WithDirLogger sets the logger.
func WithDirLogger(l *slog.Logger) DirOption {
	return func(d *DirExporter) {
		d.logger = l
	}
}

// NewDirExporter creates the root directory if needed.
func NewDirExporter(root string, opts ...DirOption) (*DirExporter, error) {
	if root == "" {
		return nil, domain.ErrMissingArgument.WithDetails("export dir is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	d := &DirExporter{root: root, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Export writes the image and its sidecar. The sidecar is written last,
// so a listed artifact always has its image in place.
func (d *DirExporter) Export(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	meta, data, err := Encode(a)
	if err != nil {
		return err
	}

	dir := filepath.Join(d.root, escapeName(meta.SessionID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}

	base := filepath.Join(dir, escapeName(meta.ScreenID))
	imgPath := base + pngExt
	if d.sealer != nil {
		meta.Sealed = true
		imgPath = base + sealedExt
		if data, err = d.sealer.Seal(data, sealAD(meta)); err != nil {
			return domain.ErrStorageError.WithCause(err)
		}
	}

	if err := writeFileAtomic(imgPath, data); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}

	sidecar, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(base+metaExt, sidecar); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}

	d.logger.Debug("artifact exported",
		"session_id", meta.SessionID,
		"screen_id", meta.ScreenID,
		"path", imgPath,
		"rendered", meta.Rendered)
	return nil
}

// List implements Catalog.
func (d *DirExporter) List(ctx context.Context, sessionID string) ([]Metadata, error) {
	sessions := []string{sessionID}
	if sessionID == "" {
		entries, err := os.ReadDir(d.root)
		if err != nil {
			return nil, domain.ErrStorageError.WithCause(err)
		}
		sessions = sessions[:0]
		for _, e := range entries {
			if e.IsDir() {
				if id, err := unescapeName(e.Name()); err == nil {
					sessions = append(sessions, id)
				}
			}
		}
	}

	var out []Metadata
	for _, sess := range sessions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		metas, err := d.listSession(sess)
		if err != nil {
			return nil, err
		}
		out = append(out, metas...)
	}

	sortMetadata(out)
	return out, nil
}

func (d *DirExporter) listSession(sessionID string) ([]Metadata, error) {
	dir := filepath.Join(d.root, escapeName(sessionID))
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}

	var out []Metadata
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), metaExt) {
			continue
		}
		meta, err := readMetadata(filepath.Join(dir, e.Name()))
		if err != nil {
			d.logger.Warn("skipping unreadable sidecar", "path", e.Name(), "error", err)
			continue
		}
		out = append(out, meta)
	}
	return out, nil
}

// Get implements Catalog.
func (d *DirExporter) Get(ctx context.Context, sessionID, screenID string) (Metadata, []byte, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, nil, err
	}

	base := filepath.Join(d.root, escapeName(sessionID), escapeName(screenID))
	meta, err := readMetadata(base + metaExt)
	if errors.Is(err, fs.ErrNotExist) {
		return Metadata{}, nil, domain.ErrArtifactNotFound.WithDetails(sessionID + "/" + screenID)
	}
	if err != nil {
		return Metadata{}, nil, domain.ErrStorageError.WithCause(err)
	}

	imgPath := base + pngExt
	if meta.Sealed {
		imgPath = base + sealedExt
	}
	data, err := os.ReadFile(imgPath)
	if err != nil {
		return Metadata{}, nil, domain.ErrArtifactCorrupt.WithCause(err)
	}

	if data, err = openSealed(d.sealer, meta, data); err != nil {
		return Metadata{}, nil, err
	}
	if err := meta.Verify(data); err != nil {
		return Metadata{}, nil, err
	}
	return meta, data, nil
}

// Delete implements Catalog.
func (d *DirExporter) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sessionID == "" {
		return domain.ErrMissingArgument.WithDetails("session_id is required")
	}
	if err := os.RemoveAll(filepath.Join(d.root, escapeName(sessionID))); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// Close implements Backend.
func (d *DirExporter) Close() error {
	return nil
}

func readMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// writeFileAtomic writes data to a temporary file in the same directory
// and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// sealAD binds sealed bytes to the artifact they belong to.
func sealAD(m Metadata) []byte {
	return []byte("export/" + m.SessionID + "/" + m.ScreenID + "/" + m.Checksum)
}

func openSealed(s *adaptive.Sealer, m Metadata, data []byte) ([]byte, error) {
	if !m.Sealed {
		return data, nil
	}
	if s == nil {
		return nil, domain.ErrArtifactCorrupt.WithDetails("artifact is sealed and no key is configured")
	}
	pt, err := s.Open(data, sealAD(m))
	if err != nil {
		return nil, domain.ErrArtifactCorrupt.WithCause(err)
	}
	return pt, nil
}

func sortMetadata(ms []Metadata) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].SessionID != ms[j].SessionID {
			return ms[i].SessionID < ms[j].SessionID
		}
		return ms[i].ScreenID < ms[j].ScreenID
	})
}
