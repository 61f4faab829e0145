package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/ndfdanim/internal/bootstrap"
	"github.com/samirrijal/ndfdanim/internal/pkg/config"
	"github.com/samirrijal/ndfdanim/internal/pkg/logging"
	"github.com/samirrijal/ndfdanim/internal/pkg/telemetry"
	"github.com/samirrijal/ndfdanim/internal/workflows"
)

func main() {
	cfg, err := config.Load("ndfdanim-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	optional, _, closeCatalog := bootstrap.Catalog(ctx, cfg, logger)
	defer closeCatalog()

	forecasts, err := bootstrap.NewForecast(ctx, cfg, optional, logger)
	if err != nil {
		log.Fatalf("forecast pipeline: %v", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    logging.Temporal(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	// Renders are CPU bound and hold one frame raster each.
	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: 4,
	})
	w.RegisterWorkflow(workflows.ForecastWorkflow)
	w.RegisterActivity(&workflows.ForecastActivities{
		Service: forecasts,
		Logger:  logger,
	})

	slog.Info("forecast worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
