package store

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

// newTestStore opens an in-memory SQLite database. The pool is capped at one
// connection because each SQLite :memory: connection is its own database.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("acquire handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	st := NewWithDB(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return st
}

func testDataset() SeedDataset {
	return SeedDataset{
		Directors: []SeedPerson{{Name: "Christopher Nolan"}, {Name: "Quentin Tarantino"}},
		Actors:    []SeedPerson{{Name: "Leonardo DiCaprio"}, {Name: "Uma Thurman"}},
		Genres:    []SeedGenre{{Name: "Thriller"}, {Name: "Crime"}},
		Movies: []SeedMovie{
			{
				Title:           "Inception",
				ReleaseYear:     intPtr(2010),
				Rating:          floatPtr(8.8),
				Description:     "Dream heist",
				Director:        "Christopher Nolan",
				DurationMinutes: intPtr(148),
				Budget:          floatPtr(160000000),
				Revenue:         floatPtr(836800000),
				Language:        "English",
				Country:         "USA",
				Actors:          []string{"Leonardo DiCaprio", "Elliot Page"},
				Genres:          []string{"Thriller"},
			},
			{
				Title:    "Pulp Fiction",
				Rating:   floatPtr(8.9),
				Director: "Quentin Tarantino",
				Actors:   []string{"Uma Thurman"},
				Genres:   []string{"Crime", "Thriller"},
			},
			{
				Title:    "Following",
				Director: "Christopher Nolan",
			},
		},
	}
}

func TestStore_SeedAndListRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.Seed(ctx, testDataset()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	movies, err := st.ListMovies(ctx)
	if err != nil {
		t.Fatalf("list movies: %v", err)
	}
	if len(movies) != 3 {
		t.Fatalf("expected 3 movies, got %d", len(movies))
	}

	inception := movies[0]
	if inception.Title != "Inception" {
		t.Fatalf("expected Inception first, got %q", inception.Title)
	}
	if inception.Rating == nil || *inception.Rating != 8.8 {
		t.Errorf("rating not round-tripped: %v", inception.Rating)
	}
	if inception.ReleaseYear == nil || *inception.ReleaseYear != 2010 {
		t.Errorf("release year not round-tripped: %v", inception.ReleaseYear)
	}
	if inception.DirectorID == nil {
		t.Error("director link missing")
	}
	if inception.EnrichmentScore != nil || inception.PopularityTier != nil {
		t.Error("enrichment columns should start null")
	}

	// Following has no rating, year, or cast.
	following := movies[2]
	if following.Rating != nil || following.ReleaseYear != nil {
		t.Errorf("null columns not preserved: %+v", following)
	}

	directors, err := st.ListDirectors(ctx)
	if err != nil {
		t.Fatalf("list directors: %v", err)
	}
	if len(directors) != 2 {
		t.Fatalf("expected 2 directors, got %d", len(directors))
	}

	// Elliot Page is referenced only by a movie, so the seed must create the
	// actor row on the fly.
	actors, err := st.ListActors(ctx)
	if err != nil {
		t.Fatalf("list actors: %v", err)
	}
	if len(actors) != 3 {
		t.Fatalf("expected 3 actors (one created on the fly), got %d", len(actors))
	}
	var foundOnTheFly bool
	for _, a := range actors {
		if a.Name == "Elliot Page" {
			foundOnTheFly = true
		}
	}
	if !foundOnTheFly {
		t.Error("actor referenced only by a movie was not created")
	}

	genres, err := st.ListGenres(ctx)
	if err != nil {
		t.Fatalf("list genres: %v", err)
	}
	if len(genres) != 2 {
		t.Fatalf("expected 2 genres, got %d", len(genres))
	}

	movieActors, err := st.ListMovieActors(ctx)
	if err != nil {
		t.Fatalf("list movie actors: %v", err)
	}
	if len(movieActors) != 3 {
		t.Fatalf("expected 3 cast links, got %d", len(movieActors))
	}

	movieGenres, err := st.ListMovieGenres(ctx)
	if err != nil {
		t.Fatalf("list movie genres: %v", err)
	}
	if len(movieGenres) != 3 {
		t.Fatalf("expected 3 genre links, got %d", len(movieGenres))
	}
}

func TestStore_SeedReplacesExistingData(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ds := testDataset()
	if err := st.Seed(ctx, ds); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := st.Seed(ctx, ds); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	movies, err := st.ListMovies(ctx)
	if err != nil {
		t.Fatalf("list movies: %v", err)
	}
	if len(movies) != 3 {
		t.Fatalf("reseeding doubled the movies: got %d", len(movies))
	}
	actors, err := st.ListActors(ctx)
	if err != nil {
		t.Fatalf("list actors: %v", err)
	}
	if len(actors) != 3 {
		t.Fatalf("reseeding doubled the actors: got %d", len(actors))
	}
}

func TestStore_ScoringInputs(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.Seed(ctx, testDataset()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	inputs, err := st.ScoringInputs(ctx)
	if err != nil {
		t.Fatalf("scoring inputs: %v", err)
	}
	if len(inputs) != 3 {
		t.Fatalf("expected one input per movie, got %d", len(inputs))
	}

	byID := make(map[int]int)
	movies, err := st.ListMovies(ctx)
	if err != nil {
		t.Fatalf("list movies: %v", err)
	}
	titleByID := make(map[int]string)
	for _, m := range movies {
		titleByID[m.ID] = m.Title
	}
	for _, in := range inputs {
		byID[in.MovieID] = in.ActorCount
		switch titleByID[in.MovieID] {
		case "Inception":
			if in.ActorCount != 2 {
				t.Errorf("Inception actor count = %d, want 2", in.ActorCount)
			}
			if in.Rating == nil || *in.Rating != 8.8 {
				t.Errorf("Inception rating = %v, want 8.8", in.Rating)
			}
			if in.ReleaseYear == nil || *in.ReleaseYear != 2010 {
				t.Errorf("Inception release year = %v, want 2010", in.ReleaseYear)
			}
		case "Following":
			// No cast rows: the LEFT JOIN must still yield the movie with a
			// zero count and its nulls intact.
			if in.ActorCount != 0 {
				t.Errorf("Following actor count = %d, want 0", in.ActorCount)
			}
			if in.Rating != nil || in.ReleaseYear != nil {
				t.Errorf("Following nulls not preserved: %+v", in)
			}
		}
	}
	if len(byID) != 3 {
		t.Fatalf("duplicate movie ids in scoring inputs: %v", byID)
	}
}

func TestStore_UpdateEnrichment(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.Seed(ctx, testDataset()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	movies, err := st.ListMovies(ctx)
	if err != nil {
		t.Fatalf("list movies: %v", err)
	}
	target := movies[0]

	if err := st.UpdateEnrichment(ctx, target.ID, 79.8, "High"); err != nil {
		t.Fatalf("update enrichment: %v", err)
	}

	movies, err = st.ListMovies(ctx)
	if err != nil {
		t.Fatalf("list movies after update: %v", err)
	}
	updated := movies[0]
	if updated.EnrichmentScore == nil || *updated.EnrichmentScore != 79.8 {
		t.Errorf("score = %v, want 79.8", updated.EnrichmentScore)
	}
	if updated.PopularityTier == nil || *updated.PopularityTier != "High" {
		t.Errorf("tier = %v, want High", updated.PopularityTier)
	}

	// Other rows stay untouched.
	for _, m := range movies[1:] {
		if m.EnrichmentScore != nil || m.PopularityTier != nil {
			t.Errorf("movie %d enriched without being targeted", m.ID)
		}
	}
}

func TestStore_UpdateEnrichmentUnknownMovie(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.UpdateEnrichment(ctx, 4242, 50, "Medium")
	if err == nil {
		t.Fatal("expected error for unknown movie id")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Fatalf("unexpected error: %v", err)
	}
}
