package usecases

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/core/ports"
	"github.com/samirrijal/ndfdanim/internal/pkg/contour"
	"github.com/samirrijal/ndfdanim/internal/pkg/geospatial"
	"github.com/samirrijal/ndfdanim/internal/pkg/logging"
	"github.com/samirrijal/ndfdanim/internal/pkg/metrics"
	"github.com/samirrijal/ndfdanim/internal/pkg/telemetry"
)

const (
	// ArtifactKey is the well-known key the animation is published under.
	ArtifactKey = "forecast.gif"

	// LargeRegionKm is the extent above which labels use the small font tier.
	LargeRegionKm = 75.0

	// MaxExtentKm bounds the square extent a caller may request.
	MaxExtentKm = 1000.0
)

var (
	tracer = otel.Tracer("github.com/samirrijal/ndfdanim/usecases")

	// Tokens end up in the result object key.
	requestTokenRe = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)
)

// ForecastDeps are the collaborators of one activation.
type ForecastDeps struct {
	Engine    ports.QueryEngine
	Builder   ports.QueryBuilder
	Store     ports.BlobStore
	Renderers ports.FrameRendererFactory
	Encoder   ports.AnimationEncoder
	// Events and Artifacts are optional.
	Events    ports.EventPublisher
	Artifacts ports.ArtifactRepository
}

// ForecastConfig holds the deployment-specific settings of an activation.
type ForecastConfig struct {
	Database     string
	OutputBucket string
}

// ForecastService runs one activation of the forecast pipeline.
type ForecastService struct {
	deps ForecastDeps
	cfg  ForecastConfig
	now  func() time.Time
}

// NewForecastService creates a new ForecastService.
func NewForecastService(deps ForecastDeps, cfg ForecastConfig) *ForecastService {
	return &ForecastService{deps: deps, cfg: cfg, now: time.Now}
}

// SetClock replaces the clock used for result locations and timestamps.
func (s *ForecastService) SetClock(now func() time.Time) {
	s.now = now
}

// Invoke runs one activation: it submits the query, reports that it is still
// running, reports a terminal failure, or renders and publishes the
// animation. The returned payload is what the caller passes to the next
// activation, and is returned alongside ErrQueryIncomplete as well.
func (s *ForecastService) Invoke(ctx context.Context, inv domain.Invocation) (domain.Invocation, error) {
	ctx, span := tracer.Start(ctx, telemetry.SpanInvoke)
	defer span.End()

	step := Next(inv.Job())
	span.SetAttributes(attribute.String("forecast.step", step.String()), attribute.String("forecast.job_id", inv.JobID))

	if err := Validate(inv); err != nil {
		metrics.Activations.WithLabelValues("invalid").Inc()
		span.SetStatus(codes.Error, err.Error())
		return inv, err
	}

	var (
		out domain.Invocation
		err error
	)
	if step == StepSubmit {
		out, err = s.submit(ctx, inv)
	} else {
		out, err = s.poll(ctx, inv)
	}

	metrics.Activations.WithLabelValues(outcome(err)).Inc()
	if err != nil && !errors.Is(err, domain.ErrQueryIncomplete) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

// Validate checks a payload before any external call is made.
func Validate(inv domain.Invocation) error {
	switch {
	case math.IsNaN(inv.CenterLongitude) || inv.CenterLongitude < -180 || inv.CenterLongitude >= 360:
		return fmt.Errorf("%w: center_longitude %v out of range", domain.ErrInvalidRequest, inv.CenterLongitude)
	case math.IsNaN(inv.CenterLatitude) || inv.CenterLatitude < -90 || inv.CenterLatitude > 90:
		return fmt.Errorf("%w: center_latitude %v out of range", domain.ErrInvalidRequest, inv.CenterLatitude)
	case !(inv.ExtentKm > 0) || inv.ExtentKm > MaxExtentKm:
		return fmt.Errorf("%w: extent_km must be in (0, %v], got %v", domain.ErrInvalidRequest, MaxExtentKm, inv.ExtentKm)
	case inv.ElementIdentifier == "":
		return fmt.Errorf("%w: element_identifier is required", domain.ErrInvalidRequest)
	case inv.Timezone == "":
		return fmt.Errorf("%w: timezone is required", domain.ErrInvalidRequest)
	case inv.RequestToken != "" && !requestTokenRe.MatchString(inv.RequestToken):
		return fmt.Errorf("%w: request_token %q", domain.ErrInvalidRequest, inv.RequestToken)
	}
	if _, err := time.LoadLocation(inv.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", domain.ErrInvalidRequest, inv.Timezone, err)
	}
	return nil
}

func (s *ForecastService) submit(ctx context.Context, inv domain.Invocation) (domain.Invocation, error) {
	logger := logging.FromContext(ctx)

	bounds := geospatial.NDFD.RegionToGridBounds(inv.Region(), geospatial.NDFDCellSize)
	query, err := s.deps.Builder.Build(domain.QueryParams{
		Bounds:   bounds,
		Timezone: inv.Timezone,
		Element:  inv.ElementIdentifier,
	})
	if err != nil {
		return inv, fmt.Errorf("build query: %w", err)
	}

	// A retried submission must repeat its parameters exactly, so a run with
	// a request token writes its results under the token.
	run := s.now().UTC().Format("2006-01-02-15-04-05")
	if inv.RequestToken != "" {
		run = inv.RequestToken
	}
	output := fmt.Sprintf("s3://%s/results/%s", s.cfg.OutputBucket, run)
	jobID, err := s.deps.Engine.Submit(ctx, query, s.cfg.Database, output, inv.RequestToken)
	if err != nil {
		return inv, fmt.Errorf("submit query: %w", err)
	}

	inv.JobID = jobID
	inv.Status = domain.JobStatusQueued
	logger.Info("query submitted", "job_id", jobID, "element", inv.ElementIdentifier,
		"min_x", bounds.MinX, "max_x", bounds.MaxX, "min_y", bounds.MinY, "max_y", bounds.MaxY)

	s.publish(ctx, inv, domain.StageSubmitted, nil)
	return inv, nil
}

func (s *ForecastService) poll(ctx context.Context, inv domain.Invocation) (domain.Invocation, error) {
	status, err := s.deps.Engine.Status(ctx, inv.JobID)
	if err != nil {
		return inv, fmt.Errorf("poll job %s: %w", inv.JobID, err)
	}
	inv.Status = status

	step, err := Classify(status)
	switch step {
	case StepWait:
		s.publish(ctx, inv, domain.StageWaiting, nil)
		return inv, fmt.Errorf("job %s is %s: %w", inv.JobID, status, err)
	case StepFail:
		s.publish(ctx, inv, domain.StageFailed, err)
		return inv, fmt.Errorf("job %s: %w", inv.JobID, err)
	}

	out, err := s.render(ctx, inv)
	if err != nil {
		s.publish(ctx, inv, domain.StageFailed, err)
	}
	return out, err
}

func (s *ForecastService) render(ctx context.Context, inv domain.Invocation) (domain.Invocation, error) {
	logger := logging.FromContext(ctx).With("job_id", inv.JobID)

	aggCtx, span := tracer.Start(ctx, telemetry.SpanAggregate)
	ds, err := Aggregate(Pages(aggCtx, s.deps.Engine, inv.JobID))
	span.End()
	if err != nil {
		return inv, fmt.Errorf("aggregate job %s: %w", inv.JobID, err)
	}
	metrics.SamplesAggregated.Add(float64(ds.SampleCount))

	lo, hi := ds.ScaleRange()
	spec := ports.RenderSpec{
		Description: ds.Description,
		Levels:      contour.Levels(lo, hi, contour.DefaultLevelCount),
		Extent:      ds.Extent,
		LargeRegion: inv.ExtentKm > LargeRegionKm,
	}
	logger.Info("dataset aggregated", "frames", len(ds.Frames), "samples", ds.SampleCount,
		"min_value", ds.MinValue, "max_value", ds.MaxValue)

	renderer, err := s.deps.Renderers.NewRenderer(spec)
	if err != nil {
		return inv, fmt.Errorf("prepare renderer: %w", err)
	}

	composer := s.deps.Encoder.NewComposer()
	for _, frame := range ds.Frames {
		start := time.Now()
		frameCtx, frameSpan := tracer.Start(ctx, telemetry.SpanRender,
			trace.WithAttributes(attribute.String("forecast.timestep", frame.Timestep)))
		rf, err := renderer.RenderFrame(frameCtx, frame, spec)
		frameSpan.End()
		if err != nil {
			return inv, fmt.Errorf("render timestep %q: %w", frame.Timestep, err)
		}
		metrics.FrameRenderDuration.Observe(time.Since(start).Seconds())
		metrics.FramesRendered.Inc()
		if rf.ContourOmitted {
			metrics.ContourFallbacks.Inc()
			logger.Warn("contour omitted", "timestep", frame.Timestep, "samples", len(frame.Samples))
		}
		if err := composer.Add(rf); err != nil {
			return inv, fmt.Errorf("compose timestep %q: %w", frame.Timestep, err)
		}
	}

	anim, err := composer.Compose()
	if err != nil {
		return inv, fmt.Errorf("compose animation: %w", err)
	}
	data, err := s.deps.Encoder.Encode(anim)
	if err != nil {
		return inv, fmt.Errorf("encode animation: %w", err)
	}

	uploadCtx, uploadSpan := tracer.Start(ctx, telemetry.SpanUpload)
	err = s.deps.Store.Upload(uploadCtx, ArtifactKey, s.deps.Encoder.ContentType(), ports.AccessPublicRead, data)
	uploadSpan.End()
	if err != nil {
		return inv, fmt.Errorf("upload %s: %w", ArtifactKey, err)
	}
	metrics.ArtifactBytes.Observe(float64(len(data)))

	inv.ArtifactKey = ArtifactKey
	inv.Frames = len(anim.Frames)
	logger.Info("animation published", "key", ArtifactKey, "frames", inv.Frames, "bytes", len(data))

	s.record(ctx, inv, ds, len(data))
	s.publish(ctx, inv, domain.StagePublished, nil)
	return inv, nil
}

func (s *ForecastService) record(ctx context.Context, inv domain.Invocation, ds *domain.Dataset, size int) {
	if s.deps.Artifacts == nil {
		return
	}
	a := &domain.Artifact{
		ID:          uuid.NewString(),
		JobID:       inv.JobID,
		Key:         inv.ArtifactKey,
		Element:     inv.ElementIdentifier,
		Description: ds.Description,
		CenterLon:   inv.CenterLongitude,
		CenterLat:   inv.CenterLatitude,
		ExtentKm:    inv.ExtentKm,
		Frames:      inv.Frames,
		Bytes:       size,
		PublishedAt: s.now().UTC(),
	}
	if err := NewArtifactService(s.deps.Artifacts).Record(ctx, a); err != nil {
		logging.FromContext(ctx).Warn("artifact catalog insert failed", "job_id", inv.JobID, "error", err)
	}
}

func (s *ForecastService) publish(ctx context.Context, inv domain.Invocation, stage domain.JobStage, cause error) {
	if s.deps.Events == nil {
		return
	}
	ev := &domain.JobEvent{
		JobID:      inv.JobID,
		Status:     inv.Status,
		Stage:      stage,
		Invocation: inv,
		OccurredAt: s.now().UTC(),
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	if err := s.deps.Events.PublishJobEvent(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("job event publish failed", "job_id", inv.JobID, "stage", string(stage), "error", err)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrQueryIncomplete):
		return "incomplete"
	case errors.Is(err, domain.ErrQueryFailed):
		return "failed"
	case errors.Is(err, domain.ErrEmptyResultSet):
		return "empty"
	default:
		return "error"
	}
}
