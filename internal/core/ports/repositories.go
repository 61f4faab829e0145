package ports

import (
	"context"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
)

// ArtifactRepository persists the catalog of published animations.
type ArtifactRepository interface {
	Insert(ctx context.Context, artifact *domain.Artifact) error
	ListRecent(ctx context.Context, limit int) ([]domain.Artifact, error)
	GetByJobID(ctx context.Context, jobID string) (*domain.Artifact, error)
}
