package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 60},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "ndfdanim", DBName: "ndfdanim", SSLMode: "disable"},
		NATS:     NATSConfig{URL: "nats://localhost:4222"},
		Valkey:   ValkeyConfig{Addr: "localhost:6379"},
		Temporal: TemporalConfig{HostPort: "localhost:7233", Namespace: "default", TaskQueue: "forecast-queue"},
		Athena: AthenaConfig{
			Region:           "us-east-1",
			Database:         "cornell_eas",
			LatestTable:      "latest",
			CoordinatesTable: "coordinates",
			ElementsTable:    "elements",
		},
		Output: OutputConfig{Bucket: "forecast-output", Region: "us-east-1"},
		Render: RenderConfig{BasemapPath: "basemap/conus.geojson", WidthInches: 6.4, HeightInches: 4.8, DPI: 150},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	c := validConfig()
	c.Athena.Database = ""
	c.Output.Bucket = ""
	c.Render.DPI = 0
	c.Render.BasemapPath = ""
	c.Log.Format = "xml"

	err := c.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"athena.database", "output.bucket", "render.dpi", "render.basemap_path", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestValidate_RequiresBasemap(t *testing.T) {
	c := validConfig()
	c.Render.BasemapPath = ""
	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "render.basemap_path is required") {
		t.Fatalf("expected missing basemap path to fail, got %v", err)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "n", SSLMode: "require"}
	if got := d.DSN(); got != "postgres://u:p@db:5433/n?sslmode=require" {
		t.Errorf("unexpected DSN %s", got)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("NDFDANIM_ATHENA_DATABASE", "cornell_eas")
	t.Setenv("NDFDANIM_OUTPUT_BUCKET", "forecast-output")
	t.Setenv("NDFDANIM_SERVER_PORT", "9090")
	t.Setenv("NDFDANIM_RENDER_BASEMAP_PATH", "basemap/conus.geojson")

	cfg, err := Load("ndfdanim-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Athena.Database != "cornell_eas" || cfg.Output.Bucket != "forecast-output" {
		t.Errorf("env not applied: %+v %+v", cfg.Athena, cfg.Output)
	}
	if cfg.Render.BasemapPath != "basemap/conus.geojson" {
		t.Errorf("expected basemap path from env, got %q", cfg.Render.BasemapPath)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Temporal.TaskQueue != "forecast-queue" || cfg.Telemetry.ServiceName != "ndfdanim-test" {
		t.Errorf("defaults not applied: %+v %+v", cfg.Temporal, cfg.Telemetry)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("NDFDANIM_ATHENA_DATABASE", "")
	t.Setenv("NDFDANIM_OUTPUT_BUCKET", "")
	if _, err := Load("ndfdanim-test"); err == nil {
		t.Fatal("expected missing athena.database and output.bucket to fail")
	}
}
