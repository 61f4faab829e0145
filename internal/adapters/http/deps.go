package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/core/ports"
	"github.com/samirrijal/ndfdanim/internal/core/usecases"
)

// Invoker runs one activation of the forecast pipeline.
type Invoker interface {
	Invoke(ctx context.Context, inv domain.Invocation) (domain.Invocation, error)
}

// Pinger is a backing service that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Forecasts Invoker
	Starter   ports.ForecastStarter
	Jobs      *usecases.JobTracker
	Artifacts *usecases.ArtifactService
	NATS      *nats.Conn
	DB        Pinger
	Cache     Pinger

	// Logger is the base of every request-scoped logger. Nil uses slog.Default().
	Logger *slog.Logger
	// OpenAPIPath overrides DefaultOpenAPIPath.
	OpenAPIPath string
	// InvokeTimeout bounds a synchronous activation. Zero means 60s.
	InvokeTimeout time.Duration
}

func (d *Dependencies) invokeTimeout() time.Duration {
	if d.InvokeTimeout > 0 {
		return d.InvokeTimeout
	}
	return 60 * time.Second
}
