package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/core/usecases"
)

func TestArtifactService_RecentClampsLimit(t *testing.T) {
	var got []int
	repo := &mockArtifacts{listFn: func(ctx context.Context, limit int) ([]domain.Artifact, error) {
		got = append(got, limit)
		return []domain.Artifact{{ID: "a1"}}, nil
	}}
	svc := usecases.NewArtifactService(repo)

	for _, limit := range []int{0, 5, 1000} {
		if _, err := svc.Recent(context.Background(), limit); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	want := []int{20, 5, 100}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: expected limit %d, got %d", i, want[i], got[i])
		}
	}
}

func TestArtifactService_ByJob(t *testing.T) {
	repo := &mockArtifacts{getFn: func(ctx context.Context, jobID string) (*domain.Artifact, error) {
		if jobID == "q-1" {
			return &domain.Artifact{ID: "a1", JobID: "q-1"}, nil
		}
		return nil, domain.ErrNotFound
	}}
	svc := usecases.NewArtifactService(repo)

	a, err := svc.ByJob(context.Background(), "q-1")
	if err != nil || a.ID != "a1" {
		t.Fatalf("expected a1, got %+v %v", a, err)
	}
	if _, err := svc.ByJob(context.Background(), "q-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.ByJob(context.Background(), ""); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestArtifactService_Record(t *testing.T) {
	repo := &mockArtifacts{}
	svc := usecases.NewArtifactService(repo)

	if err := svc.Record(context.Background(), &domain.Artifact{JobID: "q-1", Key: usecases.ArtifactKey}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(repo.inserted))
	}
	for _, a := range []*domain.Artifact{nil, {Key: "forecast.gif"}, {JobID: "q-1"}} {
		if err := svc.Record(context.Background(), a); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("expected ErrInvalidRequest for %+v, got %v", a, err)
		}
	}
	if len(repo.inserted) != 1 {
		t.Errorf("invalid artifacts reached the repository")
	}
}
