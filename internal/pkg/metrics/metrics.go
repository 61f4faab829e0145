package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ndfdanim",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ndfdanim",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10, 30},
	}, []string{"method", "path"})

	// Pipeline metrics
	Activations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ndfdanim",
		Subsystem: "forecast",
		Name:      "activations_total",
		Help:      "Pipeline activations by outcome",
	}, []string{"outcome"})

	SamplesAggregated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ndfdanim",
		Subsystem: "forecast",
		Name:      "samples_aggregated_total",
		Help:      "Samples read from finished queries",
	})

	FramesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ndfdanim",
		Subsystem: "render",
		Name:      "frames_total",
		Help:      "Animation frames rendered",
	})

	ContourFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ndfdanim",
		Subsystem: "render",
		Name:      "contour_fallbacks_total",
		Help:      "Frames rendered without a contour layer",
	})

	FrameRenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ndfdanim",
		Subsystem: "render",
		Name:      "frame_duration_seconds",
		Help:      "Time to render one frame",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	ArtifactBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ndfdanim",
		Subsystem: "forecast",
		Name:      "artifact_bytes",
		Help:      "Size of published animations",
		Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 7),
	})

	JobEventsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ndfdanim",
		Subsystem: "jobs",
		Name:      "events_applied_total",
		Help:      "Job events materialised into the job store",
	}, []string{"stage"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ndfdanim",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
