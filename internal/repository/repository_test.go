package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/arvind/filmgraph/internal/domain"
	"github.com/arvind/filmgraph/internal/graph"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }

func TestRepository_UpsertMovies(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	movies := []domain.Movie{
		{
			ID:              1,
			Title:           "Inception",
			ReleaseYear:     intPtr(2010),
			Rating:          floatPtr(8.8),
			Description:     "Dream heist",
			DirectorID:      intPtr(1),
			DurationMinutes: intPtr(148),
			Budget:          floatPtr(160000000),
			Revenue:         floatPtr(836800000),
			Language:        "English",
			Country:         "USA",
			EnrichmentScore: floatPtr(79.8),
			PopularityTier:  strPtr("High"),
		},
		{
			ID:    2,
			Title: "Following",
		},
	}

	if err := repo.UpsertMovies(context.Background(), movies); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write query, got %d", len(calls))
	}
	if calls[0].Query != upsertMoviesCypher {
		t.Fatalf("unexpected query\nexpected:\n%s\ngot:\n%s", upsertMoviesCypher, calls[0].Query)
	}

	rows, ok := calls[0].Params["rows"].([]map[string]any)
	if !ok || len(rows) != 2 {
		t.Fatalf("expected rows slice of len 2, got %T (len=%d)", calls[0].Params["rows"], len(rows))
	}

	first := rows[0]
	if first["id"] != int64(1) {
		t.Errorf("id: want int64(1), got %v (%T)", first["id"], first["id"])
	}
	if first["rating"] != 8.8 {
		t.Errorf("rating: want 8.8, got %v", first["rating"])
	}
	if first["release_year"] != int64(2010) {
		t.Errorf("release_year: want int64(2010), got %v (%T)", first["release_year"], first["release_year"])
	}
	if first["popularity_tier"] != "High" {
		t.Errorf("popularity_tier: want High, got %v", first["popularity_tier"])
	}

	// Null columns must be sent as null, not dropped or zeroed.
	second := rows[1]
	for _, key := range []string{"rating", "release_year", "budget", "enrichment_score", "popularity_tier"} {
		val, present := second[key]
		if !present {
			t.Errorf("%s missing from row params", key)
			continue
		}
		if val != nil {
			t.Errorf("%s: want nil, got %v", key, val)
		}
	}
}

func TestRepository_UpsertPeopleAndGenres(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	ctx := context.Background()
	if err := repo.UpsertActors(ctx, []domain.Person{{ID: 1, Name: "Leonardo DiCaprio"}}); err != nil {
		t.Fatalf("upsert actors: %v", err)
	}
	if err := repo.UpsertDirectors(ctx, []domain.Person{{ID: 1, Name: "Christopher Nolan"}}); err != nil {
		t.Fatalf("upsert directors: %v", err)
	}
	if err := repo.UpsertGenres(ctx, []domain.Genre{{ID: 1, Name: "Thriller"}}); err != nil {
		t.Fatalf("upsert genres: %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 write queries, got %d", len(calls))
	}
	expected := []string{upsertActorsCypher, upsertDirectorsCypher, upsertGenresCypher}
	for i, want := range expected {
		if calls[i].Query != want {
			t.Errorf("call %d used the wrong template:\n%s", i, calls[i].Query)
		}
		rows, ok := calls[i].Params["rows"].([]map[string]any)
		if !ok || len(rows) != 1 {
			t.Fatalf("call %d: expected 1 row, got %v", i, calls[i].Params["rows"])
		}
		if rows[0]["id"] != int64(1) {
			t.Errorf("call %d: id want int64(1), got %v (%T)", i, rows[0]["id"], rows[0]["id"])
		}
	}
}

func TestRepository_UpsertActedIn(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	links := []domain.MovieActor{
		{MovieID: 1, ActorID: 10},
		{MovieID: 1, ActorID: 11},
	}
	mem.StubWrite(upsertActedInCypher, graph.Result{Records: []graph.Record{
		{"upserted": int64(2)},
	}})

	if err := repo.UpsertActedIn(context.Background(), links); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write query, got %d", len(calls))
	}
	rows, ok := calls[0].Params["rows"].([]map[string]any)
	if !ok || len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %v", calls[0].Params["rows"])
	}
	if rows[0]["actorId"] != int64(10) || rows[0]["movieId"] != int64(1) {
		t.Errorf("unexpected first row: %v", rows[0])
	}
}

func TestRepository_UpsertActedIn_MissingEndpoint(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	links := []domain.MovieActor{
		{MovieID: 1, ActorID: 10},
		{MovieID: 2, ActorID: 99},
	}
	mem.StubWrite(upsertActedInCypher, graph.Result{Records: []graph.Record{
		{"upserted": int64(1)},
	}})

	err := repo.UpsertActedIn(context.Background(), links)
	if !errors.Is(err, ErrMissingEndpoint) {
		t.Fatalf("expected ErrMissingEndpoint, got %v", err)
	}
}

func TestRepository_UpsertDirected_MissingEndpoint(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	links := []domain.MovieDirector{{MovieID: 1, DirectorID: 7}}
	mem.StubWrite(upsertDirectedCypher, graph.Result{Records: []graph.Record{
		{"upserted": int64(0)},
	}})

	err := repo.UpsertDirected(context.Background(), links)
	if !errors.Is(err, ErrMissingEndpoint) {
		t.Fatalf("expected ErrMissingEndpoint, got %v", err)
	}
}

func TestRepository_EmptyBatchesIssueNoWrites(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	ctx := context.Background()
	if err := repo.UpsertMovies(ctx, nil); err != nil {
		t.Fatalf("upsert movies: %v", err)
	}
	if err := repo.UpsertActedIn(ctx, nil); err != nil {
		t.Fatalf("upsert acted_in: %v", err)
	}
	if err := repo.UpsertHasGenre(ctx, nil); err != nil {
		t.Fatalf("upsert has_genre: %v", err)
	}

	if calls := mem.WriteCalls(); len(calls) != 0 {
		t.Fatalf("expected no writes for empty batches, got %d", len(calls))
	}
}

func TestRepository_ClearAll(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	if err := repo.ClearAll(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 || calls[0].Query != clearAllCypher {
		t.Fatalf("expected one clear query, got %+v", calls)
	}
}

func TestRepository_NodeAndEdgeCounts(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	mem.StubRead(nodeCountsCypher, graph.Result{Records: []graph.Record{
		{"label": "Movie", "total": int64(7)},
		{"label": "Actor", "total": int64(17)},
	}})
	mem.StubRead(edgeCountsCypher, graph.Result{Records: []graph.Record{
		{"type": "ACTED_IN", "total": int64(15)},
		{"type": "DIRECTED", "total": int64(7)},
	}})

	nodes, err := repo.NodeCounts(context.Background())
	if err != nil {
		t.Fatalf("node counts: %v", err)
	}
	if nodes["Movie"] != 7 || nodes["Actor"] != 17 {
		t.Fatalf("unexpected node counts: %v", nodes)
	}

	edges, err := repo.EdgeCounts(context.Background())
	if err != nil {
		t.Fatalf("edge counts: %v", err)
	}
	if edges["ACTED_IN"] != 15 || edges["DIRECTED"] != 7 {
		t.Fatalf("unexpected edge counts: %v", edges)
	}
}

func TestRepository_ClientErrorPropagates(t *testing.T) {
	boom := errors.New("bolt connection reset")
	mem := graph.NewMemoryClient().WithError(boom)
	repo := New(mem)

	if err := repo.UpsertMovies(context.Background(), []domain.Movie{{ID: 1, Title: "X"}}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
	if err := repo.ClearAll(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}
