package domain

import (
	"image"
	"time"
)

// Sample is a single forecast value at a point and timestep.
type Sample struct {
	Point    GeoPoint `json:"point"`
	Value    float64  `json:"value"`
	Timestep string   `json:"timestep"`
}

// Frame groups the samples that share one timestep label.
type Frame struct {
	Timestep string   `json:"timestep"`
	Samples  []Sample `json:"samples"`
}

// Dataset is every frame of one finished query plus the global aggregates
// computed over all of them. The aggregates are set once by the aggregator
// and must not change afterwards, so every frame shares one color scale and
// one basemap extent.
type Dataset struct {
	Description string  `json:"description"`
	Frames      []Frame `json:"frames"`
	MinValue    float64 `json:"min_value"`
	MaxValue    float64 `json:"max_value"`
	Extent      Extent  `json:"extent"`
	SampleCount int     `json:"sample_count"`
}

// ScaleRange returns the value range used for the shared color scale. A
// zero-width range is widened by half a unit on each side.
func (d *Dataset) ScaleRange() (lo, hi float64) {
	lo, hi = d.MinValue, d.MaxValue
	if hi <= lo {
		lo, hi = lo-0.5, lo+0.5
	}
	return lo, hi
}

// JobStatus is the lifecycle state of an external query.
type JobStatus string

// Query job lifecycle statuses.
const (
	JobStatusNotSubmitted JobStatus = "NOT_SUBMITTED"
	JobStatusQueued       JobStatus = "QUEUED"
	JobStatusRunning      JobStatus = "RUNNING"
	JobStatusSucceeded    JobStatus = "SUCCEEDED"
	JobStatusFailed       JobStatus = "FAILED"
)

// Terminal reports whether no further transition can occur from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// QueryJob is an external query as observed by polling.
type QueryJob struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
}

// Invocation is the payload passed into and returned from one activation.
// The caller persists it between activations. RequestToken makes repeated
// submissions of one run idempotent.
type Invocation struct {
	CenterLongitude   float64   `json:"center_longitude"`
	CenterLatitude    float64   `json:"center_latitude"`
	ExtentKm          float64   `json:"extent_km"`
	Timezone          string    `json:"timezone"`
	ElementIdentifier string    `json:"element_identifier"`
	RequestToken      string    `json:"request_token,omitempty"`
	JobID             string    `json:"job_id,omitempty"`
	Status            JobStatus `json:"status,omitempty"`
	ArtifactKey       string    `json:"artifact_key,omitempty"`
	Frames            int       `json:"frames,omitempty"`
}

// Region returns the query region described by the payload.
func (inv Invocation) Region() QueryRegion {
	return QueryRegion{
		Center:   GeoPoint{Lon: inv.CenterLongitude, Lat: inv.CenterLatitude},
		ExtentKm: inv.ExtentKm,
	}
}

// Job returns the query job carried by the payload.
func (inv Invocation) Job() QueryJob {
	status := inv.Status
	if inv.JobID == "" {
		status = JobStatusNotSubmitted
	}
	return QueryJob{ID: inv.JobID, Status: status}
}

// QueryParams are the inputs to query text construction.
type QueryParams struct {
	Bounds   GridBounds
	Timezone string
	Element  string
}

// ResultRow is one row of a finished query: a description, a timestep label
// and three parallel lists, one entry per sample.
type ResultRow struct {
	Description string
	Timestep    string
	Latitudes   []float64
	Longitudes  []float64
	Values      []float64
}

// ResultPage is one page of query results. An empty NextToken marks the
// last page.
type ResultPage struct {
	Rows      []ResultRow
	NextToken string
}

// RenderedFrame is the raster for one timestep.
type RenderedFrame struct {
	Timestep       string
	Image          image.Image
	Levels         []float64
	ContourOmitted bool
}

// Animation is an ordered, looping sequence of frames.
type Animation struct {
	Frames    []*image.Paletted
	Timesteps []string
	Delay     time.Duration
	// LoopCount 0 loops forever.
	LoopCount int
}

// Artifact is a catalog entry for a published animation.
type Artifact struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	Key         string    `json:"key"`
	Element     string    `json:"element"`
	Description string    `json:"description"`
	CenterLon   float64   `json:"center_lon"`
	CenterLat   float64   `json:"center_lat"`
	ExtentKm    float64   `json:"extent_km"`
	Frames      int       `json:"frames"`
	Bytes       int       `json:"bytes"`
	PublishedAt time.Time `json:"published_at"`
}

// JobStage names what an activation did.
type JobStage string

// Activation stages reported in job events.
const (
	StageSubmitted JobStage = "submitted"
	StageWaiting   JobStage = "waiting"
	StageFailed    JobStage = "failed"
	StagePublished JobStage = "published"
)

// JobEvent is published after each activation that touched a job.
type JobEvent struct {
	JobID      string     `json:"job_id"`
	Status     JobStatus  `json:"status"`
	Stage      JobStage   `json:"stage"`
	Invocation Invocation `json:"invocation"`
	Error      string     `json:"error,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}
