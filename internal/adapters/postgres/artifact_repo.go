package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
)

const artifactColumns = `id, job_id, key, element, description, center_lon, center_lat, extent_km, frames, bytes, published_at`

// ArtifactRepo implements ports.ArtifactRepository.
type ArtifactRepo struct {
	db Querier
}

func NewArtifactRepo(db Querier) *ArtifactRepo {
	return &ArtifactRepo{db: db}
}

// Insert records a published artifact. Re-publishing a job replaces its row.
func (r *ArtifactRepo) Insert(ctx context.Context, a *domain.Artifact) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO forecast_artifacts (`+artifactColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (job_id) DO UPDATE SET
			key = EXCLUDED.key, frames = EXCLUDED.frames,
			bytes = EXCLUDED.bytes, published_at = EXCLUDED.published_at
	`, a.ID, a.JobID, a.Key, a.Element, a.Description, a.CenterLon, a.CenterLat,
		a.ExtentKm, a.Frames, a.Bytes, a.PublishedAt)
	if err != nil {
		return fmt.Errorf("insert artifact %s: %w", a.JobID, err)
	}
	return nil
}

func (r *ArtifactRepo) ListRecent(ctx context.Context, limit int) ([]domain.Artifact, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+artifactColumns+`
		FROM forecast_artifacts ORDER BY published_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Artifact
	for rows.Next() {
		var a domain.Artifact
		if err := scanArtifact(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ArtifactRepo) GetByJobID(ctx context.Context, jobID string) (*domain.Artifact, error) {
	a := &domain.Artifact{}
	err := scanArtifact(r.db.QueryRow(ctx, `
		SELECT `+artifactColumns+`
		FROM forecast_artifacts WHERE job_id = $1
	`, jobID), a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("artifact for job %s: %w", jobID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func scanArtifact(row pgx.Row, a *domain.Artifact) error {
	return row.Scan(&a.ID, &a.JobID, &a.Key, &a.Element, &a.Description,
		&a.CenterLon, &a.CenterLat, &a.ExtentKm, &a.Frames, &a.Bytes, &a.PublishedAt)
}
