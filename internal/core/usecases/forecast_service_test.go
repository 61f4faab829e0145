package usecases_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/gif"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/ndfdanim/internal/adapters/animation"
	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/core/ports"
	"github.com/samirrijal/ndfdanim/internal/core/usecases"
)

// --- Mock QueryEngine ---

type mockEngine struct {
	submitFn  func(ctx context.Context, query, database, output, token string) (string, error)
	statusFn  func(ctx context.Context, jobID string) (domain.JobStatus, error)
	resultsFn func(ctx context.Context, jobID, token string) (domain.ResultPage, error)

	submits int
}

func (m *mockEngine) Submit(ctx context.Context, query, database, output, token string) (string, error) {
	m.submits++
	if m.submitFn != nil {
		return m.submitFn(ctx, query, database, output, token)
	}
	return "q-1", nil
}

func (m *mockEngine) Status(ctx context.Context, jobID string) (domain.JobStatus, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, jobID)
	}
	return domain.JobStatusSucceeded, nil
}

func (m *mockEngine) Results(ctx context.Context, jobID, token string) (domain.ResultPage, error) {
	if m.resultsFn != nil {
		return m.resultsFn(ctx, jobID, token)
	}
	return domain.ResultPage{}, nil
}

// --- Mock QueryBuilder ---

type mockBuilder struct {
	params []domain.QueryParams
}

func (m *mockBuilder) Build(p domain.QueryParams) (string, error) {
	m.params = append(m.params, p)
	return "SELECT 1", nil
}

// --- Mock BlobStore ---

type upload struct {
	key, contentType string
	policy           ports.AccessPolicy
	body             []byte
}

type mockStore struct {
	uploads []upload
	err     error
}

func (m *mockStore) Upload(ctx context.Context, key, contentType string, policy ports.AccessPolicy, body []byte) error {
	if m.err != nil {
		return m.err
	}
	m.uploads = append(m.uploads, upload{key, contentType, policy, body})
	return nil
}

// --- Fake renderer ---

type fakeRenderers struct {
	specs  []ports.RenderSpec
	frames []domain.Frame
}

func (f *fakeRenderers) NewRenderer(spec ports.RenderSpec) (ports.FrameRenderer, error) {
	f.specs = append(f.specs, spec)
	return f, nil
}

func (f *fakeRenderers) RenderFrame(ctx context.Context, frame domain.Frame, spec ports.RenderSpec) (domain.RenderedFrame, error) {
	f.frames = append(f.frames, frame)
	f.specs = append(f.specs, spec)
	return domain.RenderedFrame{
		Timestep: frame.Timestep,
		Image:    image.NewRGBA(image.Rect(0, 0, 8, 6)),
		Levels:   spec.Levels,
	}, nil
}

// --- Mock EventPublisher / ArtifactRepository ---

type mockEvents struct {
	events []*domain.JobEvent
}

func (m *mockEvents) PublishJobEvent(ctx context.Context, ev *domain.JobEvent) error {
	m.events = append(m.events, ev)
	return nil
}

type mockArtifacts struct {
	inserted []*domain.Artifact
	listFn   func(ctx context.Context, limit int) ([]domain.Artifact, error)
	getFn    func(ctx context.Context, jobID string) (*domain.Artifact, error)
}

func (m *mockArtifacts) Insert(ctx context.Context, a *domain.Artifact) error {
	m.inserted = append(m.inserted, a)
	return nil
}

func (m *mockArtifacts) ListRecent(ctx context.Context, limit int) ([]domain.Artifact, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockArtifacts) GetByJobID(ctx context.Context, jobID string) (*domain.Artifact, error) {
	if m.getFn != nil {
		return m.getFn(ctx, jobID)
	}
	return nil, domain.ErrNotFound
}

// --- Harness ---

type harness struct {
	engine    *mockEngine
	builder   *mockBuilder
	store     *mockStore
	renderers *fakeRenderers
	events    *mockEvents
	artifacts *mockArtifacts
	svc       *usecases.ForecastService
}

func newHarness(engine *mockEngine) *harness {
	h := &harness{
		engine:    engine,
		builder:   &mockBuilder{},
		store:     &mockStore{},
		renderers: &fakeRenderers{},
		events:    &mockEvents{},
		artifacts: &mockArtifacts{},
	}
	h.svc = usecases.NewForecastService(usecases.ForecastDeps{
		Engine:    h.engine,
		Builder:   h.builder,
		Store:     h.store,
		Renderers: h.renderers,
		Encoder:   animation.NewGIF(),
		Events:    h.events,
		Artifacts: h.artifacts,
	}, usecases.ForecastConfig{Database: "ndfd", OutputBucket: "forecast-results"})
	h.svc.SetClock(func() time.Time { return time.Date(2024, 3, 1, 12, 30, 5, 0, time.UTC) })
	return h
}

func freshInvocation() domain.Invocation {
	return domain.Invocation{
		CenterLongitude:   -75,
		CenterLatitude:    42,
		ExtentKm:          50,
		Timezone:          "America/New_York",
		ElementIdentifier: "temp",
	}
}

func twoFramePage() domain.ResultPage {
	return domain.ResultPage{Rows: []domain.ResultRow{
		row("2024-03-01 08:00:00 Fri", []float64{42, 42.1, 41.9}, []float64{-75, -75.1, -74.9}, []float64{30, 32, 34}),
		row("2024-03-01 11:00:00 Fri", []float64{42, 42.1, 41.9}, []float64{-75, -75.1, -74.9}, []float64{36, 38, 40}),
	}}
}

// --- Tests ---

func TestForecastService_FirstActivationSubmits(t *testing.T) {
	var gotDB, gotOutput string
	var gotToken string
	h := newHarness(&mockEngine{submitFn: func(ctx context.Context, query, database, output, token string) (string, error) {
		gotDB, gotOutput, gotToken = database, output, token
		return "q-42", nil
	}})

	out, err := h.svc.Invoke(context.Background(), freshInvocation())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.JobID != "q-42" || out.Status != domain.JobStatusQueued {
		t.Errorf("expected q-42/QUEUED, got %s/%s", out.JobID, out.Status)
	}
	if out.ElementIdentifier != "temp" || out.ExtentKm != 50 {
		t.Errorf("expected request fields to be carried, got %+v", out)
	}
	if gotDB != "ndfd" || gotOutput != "s3://forecast-results/results/2024-03-01-12-30-05" {
		t.Errorf("unexpected submission target %s %s", gotDB, gotOutput)
	}
	if gotToken != "" {
		t.Errorf("expected no request token, got %q", gotToken)
	}
	want := domain.GridBounds{MinX: 1758, MaxX: 1778, MinY: 900, MaxY: 920}
	if len(h.builder.params) != 1 || h.builder.params[0].Bounds != want {
		t.Errorf("expected bounds %+v, got %+v", want, h.builder.params)
	}
	if len(h.renderers.frames) != 0 || len(h.store.uploads) != 0 {
		t.Error("first activation must not render or upload")
	}
	if len(h.events.events) != 1 || h.events.events[0].Stage != domain.StageSubmitted {
		t.Errorf("expected one submitted event, got %+v", h.events.events)
	}
}

func TestForecastService_RunningIsIncomplete(t *testing.T) {
	for _, status := range []domain.JobStatus{domain.JobStatusQueued, domain.JobStatusRunning} {
		h := newHarness(&mockEngine{statusFn: func(ctx context.Context, jobID string) (domain.JobStatus, error) {
			return status, nil
		}})
		inv := freshInvocation()
		inv.JobID, inv.Status = "q-1", domain.JobStatusQueued

		out, err := h.svc.Invoke(context.Background(), inv)
		if !errors.Is(err, domain.ErrQueryIncomplete) {
			t.Fatalf("%s: expected ErrQueryIncomplete, got %v", status, err)
		}
		if out.JobID != "q-1" || out.Status != status {
			t.Errorf("%s: expected payload to carry job and status, got %+v", status, out)
		}
		if h.engine.submits != 0 || len(h.store.uploads) != 0 {
			t.Errorf("%s: expected no submission and no upload", status)
		}
	}
}

func TestForecastService_FailedIsTerminal(t *testing.T) {
	h := newHarness(&mockEngine{statusFn: func(ctx context.Context, jobID string) (domain.JobStatus, error) {
		return domain.JobStatusFailed, nil
	}})
	inv := freshInvocation()
	inv.JobID = "q-1"

	_, err := h.svc.Invoke(context.Background(), inv)
	if !errors.Is(err, domain.ErrQueryFailed) {
		t.Fatalf("expected ErrQueryFailed, got %v", err)
	}
	if h.engine.submits != 0 || len(h.store.uploads) != 0 {
		t.Error("failed job must not resubmit or upload")
	}
	last := h.events.events[len(h.events.events)-1]
	if last.Stage != domain.StageFailed || last.Error == "" {
		t.Errorf("expected failed event with error, got %+v", last)
	}
}

func TestForecastService_UnknownStatus(t *testing.T) {
	h := newHarness(&mockEngine{statusFn: func(ctx context.Context, jobID string) (domain.JobStatus, error) {
		return domain.JobStatus("PAUSED"), nil
	}})
	inv := freshInvocation()
	inv.JobID = "q-1"
	if _, err := h.svc.Invoke(context.Background(), inv); !errors.Is(err, domain.ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestForecastService_SucceededPublishesOneAnimation(t *testing.T) {
	h := newHarness(&mockEngine{resultsFn: func(ctx context.Context, jobID, token string) (domain.ResultPage, error) {
		return twoFramePage(), nil
	}})
	inv := freshInvocation()
	inv.JobID, inv.Status = "q-1", domain.JobStatusRunning

	out, err := h.svc.Invoke(context.Background(), inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ArtifactKey != "forecast.gif" || out.Frames != 2 || out.Status != domain.JobStatusSucceeded {
		t.Errorf("unexpected result payload %+v", out)
	}

	if len(h.store.uploads) != 1 {
		t.Fatalf("expected exactly one upload, got %d", len(h.store.uploads))
	}
	up := h.store.uploads[0]
	if up.key != "forecast.gif" || up.contentType != "image/gif" || up.policy != ports.AccessPublicRead {
		t.Errorf("unexpected upload %s %s %s", up.key, up.contentType, up.policy)
	}
	g, err := gif.DecodeAll(bytes.NewReader(up.body))
	if err != nil {
		t.Fatalf("uploaded body is not a gif: %v", err)
	}
	if len(g.Image) != 2 {
		t.Errorf("expected 2 frames in the animation, got %d", len(g.Image))
	}

	if len(h.renderers.frames) != 2 ||
		h.renderers.frames[0].Timestep != "2024-03-01 08:00:00 Fri" ||
		h.renderers.frames[1].Timestep != "2024-03-01 11:00:00 Fri" {
		t.Errorf("frames rendered out of order: %+v", h.renderers.frames)
	}

	// Every spec handed to the renderer shares one set of levels spanning the
	// global range of the dataset.
	first := h.renderers.specs[0].Levels
	if len(first) != 25 || first[0] != 30 || first[len(first)-1] != 40 {
		t.Fatalf("expected 25 levels over 30..40, got %v", first)
	}
	for _, s := range h.renderers.specs[1:] {
		if len(s.Levels) != len(first) {
			t.Fatalf("level count differs between frames")
		}
		for i := range first {
			if s.Levels[i] != first[i] {
				t.Fatalf("level %d differs between frames", i)
			}
		}
		if s.LargeRegion {
			t.Error("50 km region must use the large font tier")
		}
	}

	if len(h.artifacts.inserted) != 1 || h.artifacts.inserted[0].JobID != "q-1" || h.artifacts.inserted[0].Frames != 2 {
		t.Errorf("expected catalog entry for q-1, got %+v", h.artifacts.inserted)
	}
	last := h.events.events[len(h.events.events)-1]
	if last.Stage != domain.StagePublished {
		t.Errorf("expected published event, got %s", last.Stage)
	}
}

func TestForecastService_EmptyResultSet(t *testing.T) {
	h := newHarness(&mockEngine{resultsFn: func(ctx context.Context, jobID, token string) (domain.ResultPage, error) {
		return domain.ResultPage{Rows: []domain.ResultRow{row("t", nil, nil, nil)}}, nil
	}})
	inv := freshInvocation()
	inv.JobID = "q-1"

	if _, err := h.svc.Invoke(context.Background(), inv); !errors.Is(err, domain.ErrEmptyResultSet) {
		t.Fatalf("expected ErrEmptyResultSet, got %v", err)
	}
	if len(h.store.uploads) != 0 {
		t.Error("empty result set must not upload")
	}
}

func TestForecastService_UploadFailure(t *testing.T) {
	h := newHarness(&mockEngine{resultsFn: func(ctx context.Context, jobID, token string) (domain.ResultPage, error) {
		return twoFramePage(), nil
	}})
	h.store.err = errors.New("access denied")
	inv := freshInvocation()
	inv.JobID = "q-1"

	_, err := h.svc.Invoke(context.Background(), inv)
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Fatalf("expected upload error, got %v", err)
	}
	if len(h.artifacts.inserted) != 0 {
		t.Error("failed upload must not be recorded")
	}
}

func TestForecastService_PollingNeverResubmits(t *testing.T) {
	statuses := []domain.JobStatus{domain.JobStatusQueued, domain.JobStatusRunning, domain.JobStatusRunning}
	i := 0
	h := newHarness(&mockEngine{statusFn: func(ctx context.Context, jobID string) (domain.JobStatus, error) {
		s := statuses[i]
		i++
		return s, nil
	}})

	inv, err := h.svc.Invoke(context.Background(), freshInvocation())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	for range statuses {
		inv, err = h.svc.Invoke(context.Background(), inv)
		if !errors.Is(err, domain.ErrQueryIncomplete) {
			t.Fatalf("expected ErrQueryIncomplete, got %v", err)
		}
	}
	if h.engine.submits != 1 {
		t.Errorf("expected exactly one submission, got %d", h.engine.submits)
	}
}

func TestForecastService_RetriedSubmissionRepeatsParameters(t *testing.T) {
	type call struct{ query, output, token string }
	var calls []call
	h := newHarness(&mockEngine{submitFn: func(ctx context.Context, query, database, output, token string) (string, error) {
		calls = append(calls, call{query, output, token})
		return "q-7", nil
	}})
	inv := freshInvocation()
	inv.RequestToken = "forecast-run-1"

	clock := time.Date(2024, 3, 1, 12, 30, 5, 0, time.UTC)
	for i := 0; i < 2; i++ {
		h.svc.SetClock(func() time.Time { return clock })
		if _, err := h.svc.Invoke(context.Background(), inv); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		clock = clock.Add(time.Minute)
	}

	if len(calls) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(calls))
	}
	if calls[0] != calls[1] {
		t.Errorf("retried submission changed parameters: %+v vs %+v", calls[0], calls[1])
	}
	if calls[0].token != "forecast-run-1" || calls[0].output != "s3://forecast-results/results/forecast-run-1" {
		t.Errorf("unexpected submission %+v", calls[0])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Invocation)
	}{
		{"zero extent", func(i *domain.Invocation) { i.ExtentKm = 0 }},
		{"negative extent", func(i *domain.Invocation) { i.ExtentKm = -5 }},
		{"huge extent", func(i *domain.Invocation) { i.ExtentKm = 5000 }},
		{"latitude", func(i *domain.Invocation) { i.CenterLatitude = 91 }},
		{"longitude", func(i *domain.Invocation) { i.CenterLongitude = 400 }},
		{"element", func(i *domain.Invocation) { i.ElementIdentifier = "" }},
		{"timezone", func(i *domain.Invocation) { i.Timezone = "Mars/Olympus" }},
		{"request token", func(i *domain.Invocation) { i.RequestToken = "../other" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := freshInvocation()
			tt.mutate(&inv)
			if err := usecases.Validate(inv); !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}

	if err := usecases.Validate(freshInvocation()); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
	east := freshInvocation()
	east.CenterLongitude = 285
	if err := usecases.Validate(east); err != nil {
		t.Fatalf("0..360 longitude rejected: %v", err)
	}
}

func TestForecastService_InvalidMakesNoCalls(t *testing.T) {
	h := newHarness(&mockEngine{})
	inv := freshInvocation()
	inv.ExtentKm = 0
	if _, err := h.svc.Invoke(context.Background(), inv); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if h.engine.submits != 0 {
		t.Error("invalid payload must not be submitted")
	}
}
