package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arvind/filmgraph/internal/config"
	"github.com/arvind/filmgraph/internal/logging"
	"github.com/arvind/filmgraph/internal/store"
)

func main() {
	var (
		datasetPath = flag.String("dataset", "./seed-data/movies.json", "Path to the seed dataset")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging, "seed")

	dataset, err := loadDataset(*datasetPath)
	if err != nil {
		logger.Error("failed to load dataset", "error", err, "path", *datasetPath)
		os.Exit(1)
	}
	if len(dataset.Movies) == 0 {
		logger.Error("dataset contains no movies", "path", *datasetPath)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, cleanup, err := store.Open(cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	start := time.Now()
	if err := st.Migrate(ctx); err != nil {
		logger.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	logger.Info("seeding store",
		"movies", len(dataset.Movies),
		"actors", len(dataset.Actors),
		"directors", len(dataset.Directors),
		"genres", len(dataset.Genres))
	if err := st.Seed(ctx, dataset); err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	logger.Info("seed complete", "duration", time.Since(start).String())
}

func loadDataset(path string) (store.SeedDataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return store.SeedDataset{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var dataset store.SeedDataset
	if err := json.NewDecoder(file).Decode(&dataset); err != nil {
		return store.SeedDataset{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return dataset, nil
}
