package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/core/ports"
)

// ArtifactService reads the catalog of published animations.
type ArtifactService struct {
	artifacts ports.ArtifactRepository
}

// NewArtifactService creates a new ArtifactService.
func NewArtifactService(artifacts ports.ArtifactRepository) *ArtifactService {
	return &ArtifactService{artifacts: artifacts}
}

// Recent returns the newest artifacts first.
func (s *ArtifactService) Recent(ctx context.Context, limit int) ([]domain.Artifact, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.artifacts.ListRecent(ctx, limit)
}

// ByJob returns the artifact published by a job, or ErrNotFound.
func (s *ArtifactService) ByJob(ctx context.Context, jobID string) (*domain.Artifact, error) {
	if jobID == "" {
		return nil, fmt.Errorf("%w: job id is required", domain.ErrInvalidRequest)
	}
	return s.artifacts.GetByJobID(ctx, jobID)
}

// Record adds or replaces the catalog entry for a job.
func (s *ArtifactService) Record(ctx context.Context, a *domain.Artifact) error {
	if a == nil || a.JobID == "" || a.Key == "" {
		return fmt.Errorf("%w: artifact needs a job id and a key", domain.ErrInvalidRequest)
	}
	return s.artifacts.Insert(ctx, a)
}
