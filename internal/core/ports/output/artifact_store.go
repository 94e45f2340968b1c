package ports

import (
	"context"

	"model-serving-adapters/internal/core/domain"
)

// ArtifactStore reads and writes artifact directories
type ArtifactStore interface {
	// Load deserializes the artifact under dir. Failures wrap domain.ErrArtifactLoad.
	Load(ctx context.Context, dir string) (*domain.ModelArtifact, error)
	// Save writes the artifact files under dir, manifest last.
	Save(ctx context.Context, dir string, artifact *domain.ModelArtifact) error
}
