package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arvind/filmgraph/internal/domain"
)

// EntitySource is the relational read contract required by the engine. Each
// method is one full-table query.
type EntitySource interface {
	ListMovies(ctx context.Context) ([]domain.Movie, error)
	ListActors(ctx context.Context) ([]domain.Person, error)
	ListDirectors(ctx context.Context) ([]domain.Person, error)
	ListGenres(ctx context.Context) ([]domain.Genre, error)
	ListMovieActors(ctx context.Context) ([]domain.MovieActor, error)
	ListMovieGenres(ctx context.Context) ([]domain.MovieGenre, error)
}

// GraphMirror is the graph write contract required by the engine. Every
// operation is an idempotent keyed upsert.
type GraphMirror interface {
	ClearAll(ctx context.Context) error
	UpsertMovies(ctx context.Context, movies []domain.Movie) error
	UpsertActors(ctx context.Context, actors []domain.Person) error
	UpsertDirectors(ctx context.Context, directors []domain.Person) error
	UpsertGenres(ctx context.Context, genres []domain.Genre) error
	UpsertActedIn(ctx context.Context, links []domain.MovieActor) error
	UpsertDirected(ctx context.Context, links []domain.MovieDirector) error
	UpsertHasGenre(ctx context.Context, links []domain.MovieGenre) error
}

// Options controls one sync run.
type Options struct {
	// Clear wipes the graph before rebuilding. Without it the run relies
	// solely on keyed upserts to avoid duplication.
	Clear bool
}

// Summary reports the counts attempted in one sync run.
type Summary struct {
	Cleared   bool
	Movies    int
	Actors    int
	Directors int
	Genres    int
	ActedIn   int
	Directed  int
	HasGenre  int
}

// Engine makes the graph store a duplicate-free, id-consistent mirror of the
// relational entity graph. A run is a single linear pass: optional clear,
// node upserts for all four labels, then relationship upserts. Node upserts
// for both endpoints always precede the relationship step, so a relationship
// that cannot match its endpoints is a hard failure, never a silent skip.
type Engine struct {
	source EntitySource
	mirror GraphMirror
	log    *slog.Logger
}

// New constructs a sync Engine.
func New(source EntitySource, mirror GraphMirror, logger *slog.Logger) *Engine {
	return &Engine{
		source: source,
		mirror: mirror,
		log:    logger,
	}
}

// Run executes one sync. The first failed operation aborts the run; because
// every write is an idempotent upsert, the operator recovers by re-running.
func (e *Engine) Run(ctx context.Context, opts Options) (Summary, error) {
	summary := Summary{}

	if opts.Clear {
		e.log.Info("clearing graph store")
		if err := e.mirror.ClearAll(ctx); err != nil {
			return summary, err
		}
		summary.Cleared = true
	}

	movies, err := e.source.ListMovies(ctx)
	if err != nil {
		return summary, err
	}
	e.log.Info("upserting movie nodes", "count", len(movies))
	if err := e.mirror.UpsertMovies(ctx, movies); err != nil {
		return summary, err
	}
	summary.Movies = len(movies)

	actors, err := e.source.ListActors(ctx)
	if err != nil {
		return summary, err
	}
	e.log.Info("upserting actor nodes", "count", len(actors))
	if err := e.mirror.UpsertActors(ctx, actors); err != nil {
		return summary, err
	}
	summary.Actors = len(actors)

	directors, err := e.source.ListDirectors(ctx)
	if err != nil {
		return summary, err
	}
	e.log.Info("upserting director nodes", "count", len(directors))
	if err := e.mirror.UpsertDirectors(ctx, directors); err != nil {
		return summary, err
	}
	summary.Directors = len(directors)

	genres, err := e.source.ListGenres(ctx)
	if err != nil {
		return summary, err
	}
	e.log.Info("upserting genre nodes", "count", len(genres))
	if err := e.mirror.UpsertGenres(ctx, genres); err != nil {
		return summary, err
	}
	summary.Genres = len(genres)

	actedIn, err := e.source.ListMovieActors(ctx)
	if err != nil {
		return summary, err
	}
	e.log.Info("upserting ACTED_IN edges", "count", len(actedIn))
	if err := e.mirror.UpsertActedIn(ctx, actedIn); err != nil {
		return summary, err
	}
	summary.ActedIn = len(actedIn)

	directed := directedLinks(movies)
	e.log.Info("upserting DIRECTED edges", "count", len(directed))
	if err := e.mirror.UpsertDirected(ctx, directed); err != nil {
		return summary, err
	}
	summary.Directed = len(directed)

	hasGenre, err := e.source.ListMovieGenres(ctx)
	if err != nil {
		return summary, err
	}
	e.log.Info("upserting HAS_GENRE edges", "count", len(hasGenre))
	if err := e.mirror.UpsertHasGenre(ctx, hasGenre); err != nil {
		return summary, err
	}
	summary.HasGenre = len(hasGenre)

	return summary, nil
}

// directedLinks derives DIRECTED edge rows from the movies already loaded for
// the node step; a movie without a director produces none.
func directedLinks(movies []domain.Movie) []domain.MovieDirector {
	var links []domain.MovieDirector
	for _, m := range movies {
		if m.DirectorID == nil {
			continue
		}
		links = append(links, domain.MovieDirector{MovieID: m.ID, DirectorID: *m.DirectorID})
	}
	return links
}

// String renders the summary for the run report log line.
func (s Summary) String() string {
	return fmt.Sprintf("movies=%d actors=%d directors=%d genres=%d acted_in=%d directed=%d has_genre=%d cleared=%t",
		s.Movies, s.Actors, s.Directors, s.Genres, s.ActedIn, s.Directed, s.HasGenre, s.Cleared)
}
