package export

import (
	"context"

	"github.com/yndnr/touchmap-go/internal/core/domain"
)

// Nop discards artifacts. Its catalog is always empty.
type Nop struct{}

// Export implements Exporter.
func (Nop) Export(ctx context.Context, _ Artifact) error {
	return ctx.Err()
}

// List implements Catalog.
func (Nop) List(context.Context, string) ([]Metadata, error) {
	return nil, nil
}

// Get implements Catalog.
func (Nop) Get(_ context.Context, sessionID, screenID string) (Metadata, []byte, error) {
	return Metadata{}, nil, domain.ErrArtifactNotFound.WithDetails(sessionID + "/" + screenID)
}

// Delete implements Catalog.
func (Nop) Delete(context.Context, string) error {
	return nil
}

// Close implements Backend.
func (Nop) Close() error {
	return nil
}
