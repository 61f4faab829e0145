// Command invoke runs one activation of the forecast pipeline, the way a
// scheduled function runtime would. It reads the payload from the file named
// by its only argument, or from stdin, and writes the returned payload to
// stdout. Exit status 3 means the query is still running and the printed
// payload should be passed to the next run.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/samirrijal/ndfdanim/internal/bootstrap"
	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/pkg/config"
	"github.com/samirrijal/ndfdanim/internal/pkg/logging"
)

const exitIncomplete = 3

func main() {
	if len(os.Args) > 2 {
		log.Fatal("usage: invoke [payload.json|-]")
	}
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load("ndfdanim-invoke")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// stdout carries the payload
	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	in := io.Reader(os.Stdin)
	if len(os.Args) == 2 && os.Args[1] != "-" {
		f, err := os.Open(os.Args[1])
		if err != nil {
			log.Fatalf("open payload: %v", err)
		}
		defer f.Close()
		in = f
	}
	var inv domain.Invocation
	if err := json.NewDecoder(in).Decode(&inv); err != nil {
		log.Fatalf("decode payload: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	optional, _, closeCatalog := bootstrap.Catalog(ctx, cfg, logger)
	defer closeCatalog()

	forecasts, err := bootstrap.NewForecast(ctx, cfg, optional, logger)
	if err != nil {
		logger.Error("forecast pipeline unavailable", "error", err)
		return 1
	}

	out, err := forecasts.Invoke(ctx, inv)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(out); encErr != nil {
		logger.Error("encode payload", "error", encErr)
		return 1
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrQueryIncomplete):
		logger.Info("query still running", "job_id", out.JobID, "status", string(out.Status))
		return exitIncomplete
	default:
		logger.Error("activation failed", "job_id", out.JobID, "error", err)
		return 1
	}
}
