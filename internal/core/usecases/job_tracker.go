package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/core/ports"
	"github.com/samirrijal/ndfdanim/internal/pkg/metrics"
)

// jobTTLSeconds keeps a job's view for the lifetime of one workflow run.
const jobTTLSeconds = 24 * 60 * 60

// JobTracker materialises the latest state of each job from job events.
type JobTracker struct {
	cache ports.CacheService
}

// NewJobTracker creates a new JobTracker.
func NewJobTracker(cache ports.CacheService) *JobTracker {
	return &JobTracker{cache: cache}
}

// JobView is what the tracker stores per job.
type JobView struct {
	Invocation domain.Invocation `json:"invocation"`
	Stage      domain.JobStage   `json:"stage"`
	Error      string            `json:"error,omitempty"`
	UpdatedAt  string            `json:"updated_at"`
}

func jobKey(id string) string {
	return "forecast:job:" + id
}

// Apply stores the event's payload as the job's latest view.
func (t *JobTracker) Apply(ctx context.Context, ev *domain.JobEvent) error {
	if ev.JobID == "" {
		return fmt.Errorf("%w: job event without job_id", domain.ErrInvalidRequest)
	}
	view := JobView{
		Invocation: ev.Invocation,
		Stage:      ev.Stage,
		Error:      ev.Error,
		UpdatedAt:  ev.OccurredAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal job view: %w", err)
	}
	if err := t.cache.Set(ctx, jobKey(ev.JobID), data, jobTTLSeconds); err != nil {
		return fmt.Errorf("store job %s: %w", ev.JobID, err)
	}
	metrics.JobEventsApplied.WithLabelValues(string(ev.Stage)).Inc()
	return nil
}

// Get returns the latest view of a job, or ErrNotFound.
func (t *JobTracker) Get(ctx context.Context, id string) (*JobView, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: job id is required", domain.ErrInvalidRequest)
	}
	data, err := t.cache.Get(ctx, jobKey(id))
	if errors.Is(err, domain.ErrNotFound) || (err == nil && len(data) == 0) {
		return nil, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", id, err)
	}
	var view JobView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &view, nil
}
