package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/ndfdanim/internal/adapters/http"
	natsadapter "github.com/samirrijal/ndfdanim/internal/adapters/nats"
	"github.com/samirrijal/ndfdanim/internal/adapters/valkey"
	"github.com/samirrijal/ndfdanim/internal/bootstrap"
	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/core/usecases"
	"github.com/samirrijal/ndfdanim/internal/pkg/config"
	"github.com/samirrijal/ndfdanim/internal/pkg/logging"
	"github.com/samirrijal/ndfdanim/internal/pkg/telemetry"
	"github.com/samirrijal/ndfdanim/internal/workflows"
)

func main() {
	cfg, err := config.Load("ndfdanim-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
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

	// Job store
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()
	jobs := usecases.NewJobTracker(cache)

	deps := &http.Dependencies{
		Jobs:          jobs,
		Cache:         cache,
		Logger:        logger,
		InvokeTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Artifact catalog and job events
	optional, db, closeCatalog := bootstrap.Catalog(ctx, cfg, logger)
	defer closeCatalog()
	if db != nil {
		deps.DB = db
	}
	if optional.Artifacts != nil {
		deps.Artifacts = usecases.NewArtifactService(optional.Artifacts)
	}

	// Synchronous activations
	forecasts, err := bootstrap.NewForecast(ctx, cfg, optional, logger)
	if err != nil {
		slog.Warn("forecast pipeline unavailable, /v1/invocations disabled", "error", err)
	} else {
		deps.Forecasts = forecasts
	}

	// Workflow starts
	tc, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    logging.Temporal(logger),
	})
	if err != nil {
		slog.Warn("temporal unavailable, /v1/forecasts disabled", "error", err)
	} else {
		defer tc.Close()
		deps.Starter = workflows.NewStarter(tc, cfg.Temporal.TaskQueue)
	}

	// Materialise job events into the job store
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "ndfdanim-api-jobs")
	if err != nil {
		slog.Warn("nats subscriber unavailable, job tracking disabled", "error", err)
	} else {
		defer sub.Close()
		subCtx := logging.WithLogger(ctx, logger.With("component", "job-tracker"))
		if err := sub.SubscribeJobEvents(subCtx, func(ctx context.Context, ev *domain.JobEvent) error {
			return jobs.Apply(ctx, ev)
		}); err != nil {
			slog.Warn("job event subscription failed", "error", err)
		}
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
		deps.NATS = natsConn
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024, // payloads are a handful of fields
		AppName:      "NDFD Forecast Animation API",
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
