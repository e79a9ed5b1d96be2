package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arvind/filmgraph/internal/config"
	"github.com/arvind/filmgraph/internal/enrich"
	"github.com/arvind/filmgraph/internal/logging"
	"github.com/arvind/filmgraph/internal/store"
)

func main() {
	var (
		year = flag.Int("year", 0, "Override the current year used for recency scoring (0 = wall clock)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging, "enrich")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, cleanup, err := store.Open(cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	job := enrich.NewJob(st, logger)
	if *year > 0 {
		pinned := time.Date(*year, time.January, 1, 0, 0, 0, 0, time.UTC)
		job.WithClock(func() time.Time { return pinned })
	}

	start := time.Now()
	report, err := job.Run(ctx)
	if err != nil {
		logger.Error("enrichment run failed", "error", err,
			"processed", report.Processed, "updated", report.Updated, "failed", report.Failed)
		os.Exit(1)
	}

	logger.Info("enrichment complete",
		"duration", time.Since(start).String(),
		"processed", report.Processed,
		"updated", report.Updated,
		"failed", report.Failed)
}
