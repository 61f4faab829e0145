// Package bootstrap wires the forecast pipeline from configuration for the
// binaries under cmd/.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"gonum.org/v1/plot/vg"

	"github.com/samirrijal/ndfdanim/internal/adapters/animation"
	"github.com/samirrijal/ndfdanim/internal/adapters/athena"
	natsadapter "github.com/samirrijal/ndfdanim/internal/adapters/nats"
	"github.com/samirrijal/ndfdanim/internal/adapters/postgres"
	"github.com/samirrijal/ndfdanim/internal/adapters/render"
	"github.com/samirrijal/ndfdanim/internal/adapters/s3"
	"github.com/samirrijal/ndfdanim/internal/core/ports"
	"github.com/samirrijal/ndfdanim/internal/core/usecases"
	"github.com/samirrijal/ndfdanim/internal/pkg/config"
	"github.com/samirrijal/ndfdanim/internal/pkg/geospatial"
)

// Optional are collaborators the pipeline runs without.
type Optional struct {
	Events    ports.EventPublisher
	Artifacts ports.ArtifactRepository
}

// RenderOptions converts the render section into canvas options.
func RenderOptions(rc config.RenderConfig) render.Options {
	opts := render.DefaultOptions()
	if rc.WidthInches > 0 {
		opts.Width = vg.Length(rc.WidthInches) * vg.Inch
	}
	if rc.HeightInches > 0 {
		opts.Height = vg.Length(rc.HeightInches) * vg.Inch
	}
	if rc.DPI > 0 {
		opts.DPI = rc.DPI
	}
	return opts
}

// AWSConfig loads the default credential chain for region.
func AWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if region != "" {
		optFns = append(optFns, awsconfig.WithRegion(region))
	}
	return awsconfig.LoadDefaultConfig(ctx, optFns...)
}

// NewForecast builds the pipeline against Athena, S3 and the configured
// basemap. Zero-valued optional collaborators are left out.
func NewForecast(ctx context.Context, cfg *config.Config, opt Optional, logger *slog.Logger) (*usecases.ForecastService, error) {
	awsCfg, err := AWSConfig(ctx, cfg.Athena.Region)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	outCfg := awsCfg.Copy()
	if cfg.Output.Region != "" {
		outCfg.Region = cfg.Output.Region
	}

	builder, err := athena.NewTemplate(athena.Tables{
		Latest:      cfg.Athena.LatestTable,
		Coordinates: cfg.Athena.CoordinatesTable,
		Elements:    cfg.Athena.ElementsTable,
	})
	if err != nil {
		return nil, fmt.Errorf("query template: %w", err)
	}

	basemap, err := render.LoadBasemap(cfg.Render.BasemapPath, geospatial.NDFD)
	if err != nil {
		return nil, fmt.Errorf("basemap: %w", err)
	}
	logger.Info("basemap loaded", "path", cfg.Render.BasemapPath, "shapes", basemap.Len())

	renderers, err := render.NewFactory(basemap, RenderOptions(cfg.Render))
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	return usecases.NewForecastService(usecases.ForecastDeps{
		Engine:    athena.NewFromConfig(awsCfg),
		Builder:   builder,
		Store:     s3.NewFromConfig(outCfg, cfg.Output.Bucket),
		Renderers: renderers,
		Encoder:   animation.NewGIF(),
		Events:    opt.Events,
		Artifacts: opt.Artifacts,
	}, usecases.ForecastConfig{
		Database:     cfg.Athena.Database,
		OutputBucket: cfg.Output.Bucket,
	}), nil
}

// Catalog connects the optional collaborators. An unreachable NATS or
// Postgres is logged and left out. The returned function closes whatever
// was opened.
func Catalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Optional, *postgres.DB, func()) {
	var (
		opt     Optional
		db      *postgres.DB
		closers []func()
	)
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		logger.Warn("nats unavailable, job events disabled", "error", err)
	} else {
		opt.Events = pub
		closers = append(closers, pub.Close)
	}
	if conn, err := postgres.New(ctx, cfg.Database.DSN()); err != nil {
		logger.Warn("postgres unavailable, artifact catalog disabled", "error", err)
	} else {
		db = conn
		opt.Artifacts = postgres.NewArtifactRepo(conn.Pool)
		closers = append(closers, conn.Close)
	}
	return opt, db, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}
