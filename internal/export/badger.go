package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/yndnr/touchmap-go/internal/core/domain"
	"github.com/yndnr/touchmap-go/internal/storage"
	"github.com/yndnr/touchmap-go/pkg/crypto/adaptive"
)

const keyPrefix = "export/"

// BadgerExporter stores artifacts in a KV engine under
//
//	export/<session>/<screen>/png
//	export/<session>/<screen>/meta
//
// Both keys are written in one transaction.
type BadgerExporter struct {
	kv     storage.KVEngine
	sealer *adaptive.Sealer
	logger *slog.Logger
	owned  bool
}

// BadgerOption configures a BadgerExporter.
type BadgerOption func(*BadgerExporter)

// WithBadgerSealer seals image bytes at rest.
func WithBadgerSealer(s *adaptive.Sealer) BadgerOption {
	return func(b *BadgerExporter) {
		b.sealer = s
	}
}

// WithBadgerLogger sets the logger.
func WithBadgerLogger(l *slog.Logger) BadgerOption {
	return func(b *BadgerExporter) {
		b.logger = l
	}
}

// WithOwnedEngine makes Close close the engine.
func WithOwnedEngine() BadgerOption {
	return func(b *BadgerExporter) {
		b.owned = true
	}
}

// NewBadgerExporter creates an exporter over kv.
func NewBadgerExporter(kv storage.KVEngine, opts ...BadgerOption) *BadgerExporter {
	b := &BadgerExporter{kv: kv, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Export implements Exporter.
func (b *BadgerExporter) Export(ctx context.Context, a Artifact) error {
	meta, data, err := Encode(a)
	if err != nil {
		return err
	}

	if b.sealer != nil {
		meta.Sealed = true
		if data, err = b.sealer.Seal(data, sealAD(meta)); err != nil {
			return domain.ErrStorageError.WithCause(err)
		}
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	base := artifactKey(meta.SessionID, meta.ScreenID)
	err = b.kv.SetMany(ctx, []storage.Entry{
		{Key: []byte(base + "png"), Value: data},
		{Key: []byte(base + "meta"), Value: raw},
	})
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}

	b.logger.Debug("artifact exported",
		"session_id", meta.SessionID,
		"screen_id", meta.ScreenID,
		"bytes", len(data),
		"rendered", meta.Rendered)
	return nil
}

// List implements Catalog.
func (b *BadgerExporter) List(ctx context.Context, sessionID string) ([]Metadata, error) {
	prefix := keyPrefix
	if sessionID != "" {
		prefix = sessionPrefix(sessionID)
	}

	var (
		out     []Metadata
		scanErr error
	)
	err := b.kv.Scan(ctx, []byte(prefix), func(key, value []byte) bool {
		if !strings.HasSuffix(string(key), "/meta") {
			return true
		}
		var meta Metadata
		if err := json.Unmarshal(value, &meta); err != nil {
			scanErr = domain.ErrArtifactCorrupt.WithDetails(string(key)).WithCause(err)
			return false
		}
		out = append(out, meta)
		return true
	})
	if err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}
	if scanErr != nil {
		return nil, scanErr
	}

	sortMetadata(out)
	return out, nil
}

// Get implements Catalog.
func (b *BadgerExporter) Get(ctx context.Context, sessionID, screenID string) (Metadata, []byte, error) {
	base := artifactKey(sessionID, screenID)

	raw, err := b.kv.Get(ctx, []byte(base+"meta"))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return Metadata{}, nil, domain.ErrArtifactNotFound.WithDetails(sessionID + "/" + screenID)
	}
	if err != nil {
		return Metadata{}, nil, domain.ErrStorageError.WithCause(err)
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, nil, domain.ErrArtifactCorrupt.WithCause(err)
	}

	data, err := b.kv.Get(ctx, []byte(base+"png"))
	if err != nil {
		return Metadata{}, nil, domain.ErrArtifactCorrupt.WithCause(err)
	}

	if data, err = openSealed(b.sealer, meta, data); err != nil {
		return Metadata{}, nil, err
	}
	if err := meta.Verify(data); err != nil {
		return Metadata{}, nil, err
	}
	return meta, data, nil
}

// Delete implements Catalog.
func (b *BadgerExporter) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrMissingArgument.WithDetails("session_id is required")
	}
	if err := b.kv.DeletePrefix(ctx, []byte(sessionPrefix(sessionID))); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// Backup writes a full backup of the artifact store to w.
func (b *BadgerExporter) Backup(ctx context.Context, w io.Writer) error {
	if err := b.kv.Backup(ctx, w); err != nil {
		return fmt.Errorf("backup exports: %w", err)
	}
	return nil
}

// Restore loads a stream written by Backup. Existing artifacts with the
// same keys are overwritten.
func (b *BadgerExporter) Restore(ctx context.Context, r io.Reader) error {
	if err := b.kv.Restore(ctx, r); err != nil {
		return fmt.Errorf("restore exports: %w", err)
	}
	return nil
}

// Close closes the engine when it is owned by the exporter.
func (b *BadgerExporter) Close() error {
	if b.owned {
		return b.kv.Close()
	}
	return nil
}

func sessionPrefix(sessionID string) string {
	return keyPrefix + escapeName(sessionID) + "/"
}

func artifactKey(sessionID, screenID string) string {
	return sessionPrefix(sessionID) + escapeName(screenID) + "/"
}
