package ports

import (
	"context"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
)

// QueryEngine is the external analytical query engine.
type QueryEngine interface {
	// Submit starts a query. Repeating a call with the same non-empty
	// requestToken returns the original job instead of starting another.
	Submit(ctx context.Context, query, database, outputLocation, requestToken string) (string, error)
	Status(ctx context.Context, jobID string) (domain.JobStatus, error)
	// Results returns one page of rows. An empty token requests the first page.
	Results(ctx context.Context, jobID, token string) (domain.ResultPage, error)
}

// QueryBuilder renders query text for a region and element.
type QueryBuilder interface {
	Build(params domain.QueryParams) (string, error)
}

// AccessPolicy is the visibility applied to an uploaded blob.
type AccessPolicy string

// Access policies understood by blob stores.
const (
	AccessPrivate    AccessPolicy = "private"
	AccessPublicRead AccessPolicy = "public-read"
)

// BlobStore publishes artifacts.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, policy AccessPolicy, body []byte) error
}

// RenderSpec is everything shared by all frames of one dataset.
type RenderSpec struct {
	Description string
	Levels      []float64
	Extent      domain.Extent
	LargeRegion bool
}

// FrameRenderer draws one timestep.
type FrameRenderer interface {
	RenderFrame(ctx context.Context, frame domain.Frame, spec RenderSpec) (domain.RenderedFrame, error)
}

// FrameRendererFactory builds a renderer bound to one dataset's scale so the
// legend is drawn once and reused for every frame.
type FrameRendererFactory interface {
	NewRenderer(spec RenderSpec) (FrameRenderer, error)
}

// AnimationComposer collects rendered frames in order.
type AnimationComposer interface {
	Add(frame domain.RenderedFrame) error
	Compose() (*domain.Animation, error)
}

// AnimationEncoder serialises an animation.
type AnimationEncoder interface {
	NewComposer() AnimationComposer
	Encode(anim *domain.Animation) ([]byte, error)
	ContentType() string
}

// EventPublisher publishes job events to a message broker.
type EventPublisher interface {
	PublishJobEvent(ctx context.Context, event *domain.JobEvent) error
}

// EventSubscriber subscribes to job events from a message broker.
type EventSubscriber interface {
	SubscribeJobEvents(ctx context.Context, handler func(ctx context.Context, event *domain.JobEvent) error) error
}

// CacheService provides key/value storage with expiry.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// WorkflowRun identifies a started forecast workflow.
type WorkflowRun struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

// ForecastStarter starts the long-running forecast workflow.
type ForecastStarter interface {
	Start(ctx context.Context, inv domain.Invocation) (WorkflowRun, error)
}
