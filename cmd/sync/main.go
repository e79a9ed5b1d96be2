package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arvind/filmgraph/internal/config"
	"github.com/arvind/filmgraph/internal/graph"
	"github.com/arvind/filmgraph/internal/logging"
	"github.com/arvind/filmgraph/internal/repository"
	"github.com/arvind/filmgraph/internal/store"
	"github.com/arvind/filmgraph/internal/sync"
)

func main() {
	var (
		clear = flag.Bool("clear", true, "Wipe the graph store before rebuilding (disable for upsert-only resync)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging, "sync")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, cleanup, err := store.Open(cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	repo := repository.New(graphClient)
	engine := sync.New(st, repo, logger)

	start := time.Now()
	summary, err := engine.Run(ctx, sync.Options{Clear: *clear})
	if err != nil {
		if errors.Is(err, repository.ErrMissingEndpoint) {
			logger.Error("sync aborted on referential failure; a prior step omitted an endpoint node", "error", err)
		} else {
			logger.Error("sync run failed", "error", err)
		}
		os.Exit(1)
	}

	logger.Info("sync complete", "duration", time.Since(start).String(), "summary", summary.String())
	logMirrorCounts(ctx, logger, repo)
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, fmt.Errorf("GRAPH_URI is required for sync")
	}
	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	client, err := graph.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}

func logMirrorCounts(ctx context.Context, logger *slog.Logger, repo *repository.Repository) {
	nodes, err := repo.NodeCounts(ctx)
	if err != nil {
		logger.Warn("could not read node counts", "error", err)
		return
	}
	edges, err := repo.EdgeCounts(ctx)
	if err != nil {
		logger.Warn("could not read edge counts", "error", err)
		return
	}
	logger.Info("graph mirror state",
		"movies", nodes["Movie"], "actors", nodes["Actor"],
		"directors", nodes["Director"], "genres", nodes["Genre"],
		"acted_in", edges["ACTED_IN"], "directed", edges["DIRECTED"], "has_genre", edges["HAS_GENRE"])
}
