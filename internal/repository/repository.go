package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/arvind/filmgraph/internal/domain"
	"github.com/arvind/filmgraph/internal/graph"
)

// ErrMissingEndpoint indicates a relationship upsert could not match one or
// both endpoint nodes. It signals an omission in a prior sync step rather
// than a connectivity problem, so callers can tell the two apart.
var ErrMissingEndpoint = errors.New("relationship endpoint not found")

// Repository encapsulates graph persistence for the movie mirror. Every write
// is a keyed upsert drawn from a closed set of static cypher templates; label
// and relationship names are never interpolated.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// ClearAll deletes every node and relationship in the graph.
func (r *Repository) ClearAll(ctx context.Context) error {
	if _, err := r.client.ExecuteWrite(ctx, clearAllCypher, nil); err != nil {
		return fmt.Errorf("clear graph: %w", err)
	}
	return nil
}

// UpsertMovies merges one Movie node per row, keyed by the relational id, and
// overwrites all mirrored scalar properties. Null columns stay null.
func (r *Repository) UpsertMovies(ctx context.Context, movies []domain.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(movies))
	for _, m := range movies {
		rows = append(rows, map[string]any{
			"id":               int64(m.ID),
			"title":            m.Title,
			"release_year":     nullableInt(m.ReleaseYear),
			"rating":           nullableFloat(m.Rating),
			"description":      m.Description,
			"duration_minutes": nullableInt(m.DurationMinutes),
			"budget":           nullableFloat(m.Budget),
			"revenue":          nullableFloat(m.Revenue),
			"language":         m.Language,
			"country":          m.Country,
			"enrichment_score": nullableFloat(m.EnrichmentScore),
			"popularity_tier":  nullableString(m.PopularityTier),
		})
	}
	if _, err := r.client.ExecuteWrite(ctx, upsertMoviesCypher, map[string]any{"rows": rows}); err != nil {
		return fmt.Errorf("upsert movie nodes: %w", err)
	}
	return nil
}

// UpsertActors merges one Actor node per person, keyed by id, setting name only.
func (r *Repository) UpsertActors(ctx context.Context, actors []domain.Person) error {
	return r.upsertPeople(ctx, upsertActorsCypher, "actor", actors)
}

// UpsertDirectors merges one Director node per person, keyed by id, setting name only.
func (r *Repository) UpsertDirectors(ctx context.Context, directors []domain.Person) error {
	return r.upsertPeople(ctx, upsertDirectorsCypher, "director", directors)
}

func (r *Repository) upsertPeople(ctx context.Context, cypher, kind string, people []domain.Person) error {
	if len(people) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(people))
	for _, p := range people {
		rows = append(rows, map[string]any{
			"id":   int64(p.ID),
			"name": p.Name,
		})
	}
	if _, err := r.client.ExecuteWrite(ctx, cypher, map[string]any{"rows": rows}); err != nil {
		return fmt.Errorf("upsert %s nodes: %w", kind, err)
	}
	return nil
}

// UpsertGenres merges one Genre node per genre, keyed by id, setting name only.
func (r *Repository) UpsertGenres(ctx context.Context, genres []domain.Genre) error {
	if len(genres) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(genres))
	for _, g := range genres {
		rows = append(rows, map[string]any{
			"id":   int64(g.ID),
			"name": g.Name,
		})
	}
	if _, err := r.client.ExecuteWrite(ctx, upsertGenresCypher, map[string]any{"rows": rows}); err != nil {
		return fmt.Errorf("upsert genre nodes: %w", err)
	}
	return nil
}

// UpsertActedIn merges ACTED_IN edges (Actor -> Movie). The edge is keyed by
// its endpoint pair; re-running creates no duplicates. A pair whose endpoint
// nodes cannot be matched yields ErrMissingEndpoint.
func (r *Repository) UpsertActedIn(ctx context.Context, links []domain.MovieActor) error {
	if len(links) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(links))
	for _, l := range links {
		rows = append(rows, map[string]any{
			"actorId": int64(l.ActorID),
			"movieId": int64(l.MovieID),
		})
	}
	return r.upsertEdges(ctx, upsertActedInCypher, "ACTED_IN", rows)
}

// UpsertDirected merges DIRECTED edges (Director -> Movie).
func (r *Repository) UpsertDirected(ctx context.Context, links []domain.MovieDirector) error {
	if len(links) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(links))
	for _, l := range links {
		rows = append(rows, map[string]any{
			"directorId": int64(l.DirectorID),
			"movieId":    int64(l.MovieID),
		})
	}
	return r.upsertEdges(ctx, upsertDirectedCypher, "DIRECTED", rows)
}

// UpsertHasGenre merges HAS_GENRE edges (Movie -> Genre).
func (r *Repository) UpsertHasGenre(ctx context.Context, links []domain.MovieGenre) error {
	if len(links) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(links))
	for _, l := range links {
		rows = append(rows, map[string]any{
			"movieId": int64(l.MovieID),
			"genreId": int64(l.GenreID),
		})
	}
	return r.upsertEdges(ctx, upsertHasGenreCypher, "HAS_GENRE", rows)
}

// upsertEdges runs one of the relationship templates and compares the number
// of merged pairs against the number submitted. A shortfall means MATCH
// silently dropped rows whose endpoint nodes are absent, which this layer
// promotes to a hard referential error.
func (r *Repository) upsertEdges(ctx context.Context, cypher, relType string, rows []map[string]any) error {
	res, err := r.client.ExecuteWrite(ctx, cypher, map[string]any{"rows": rows})
	if err != nil {
		return fmt.Errorf("upsert %s edges: %w", relType, err)
	}
	upserted := upsertedCount(res)
	if upserted < int64(len(rows)) {
		return fmt.Errorf("upsert %s edges: %w: matched %d of %d endpoint pairs",
			relType, ErrMissingEndpoint, upserted, len(rows))
	}
	return nil
}

// NodeCounts returns the current node count per label.
func (r *Repository) NodeCounts(ctx context.Context) (map[string]int64, error) {
	res, err := r.client.ExecuteRead(ctx, nodeCountsCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("count nodes: %w", err)
	}
	return countsByKey(res, "label"), nil
}

// EdgeCounts returns the current relationship count per type.
func (r *Repository) EdgeCounts(ctx context.Context) (map[string]int64, error) {
	res, err := r.client.ExecuteRead(ctx, edgeCountsCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("count edges: %w", err)
	}
	return countsByKey(res, "type"), nil
}

func countsByKey(res graph.Result, key string) map[string]int64 {
	counts := make(map[string]int64, len(res.Records))
	for _, record := range res.Records {
		name, ok := record[key].(string)
		if !ok {
			continue
		}
		counts[name] = toInt64(record["total"])
	}
	return counts
}

func upsertedCount(res graph.Result) int64 {
	if len(res.Records) == 0 {
		return 0
	}
	return toInt64(res.Records[0]["upserted"])
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

const clearAllCypher = `
MATCH (n) DETACH DELETE n
`

const upsertMoviesCypher = `
UNWIND $rows AS row
MERGE (m:Movie {id: row.id})
SET m.title = row.title,
    m.release_year = row.release_year,
    m.rating = row.rating,
    m.description = row.description,
    m.duration_minutes = row.duration_minutes,
    m.budget = row.budget,
    m.revenue = row.revenue,
    m.language = row.language,
    m.country = row.country,
    m.enrichment_score = row.enrichment_score,
    m.popularity_tier = row.popularity_tier
`

const upsertActorsCypher = `
UNWIND $rows AS row
MERGE (a:Actor {id: row.id})
SET a.name = row.name
`

const upsertDirectorsCypher = `
UNWIND $rows AS row
MERGE (d:Director {id: row.id})
SET d.name = row.name
`

const upsertGenresCypher = `
UNWIND $rows AS row
MERGE (g:Genre {id: row.id})
SET g.name = row.name
`

const upsertActedInCypher = `
UNWIND $rows AS row
MATCH (a:Actor {id: row.actorId})
MATCH (m:Movie {id: row.movieId})
MERGE (a)-[:ACTED_IN]->(m)
RETURN count(*) AS upserted
`

const upsertDirectedCypher = `
UNWIND $rows AS row
MATCH (d:Director {id: row.directorId})
MATCH (m:Movie {id: row.movieId})
MERGE (d)-[:DIRECTED]->(m)
RETURN count(*) AS upserted
`

const upsertHasGenreCypher = `
UNWIND $rows AS row
MATCH (m:Movie {id: row.movieId})
MATCH (g:Genre {id: row.genreId})
MERGE (m)-[:HAS_GENRE]->(g)
RETURN count(*) AS upserted
`

const nodeCountsCypher = `
MATCH (n)
UNWIND labels(n) AS label
RETURN label, count(*) AS total
`

const edgeCountsCypher = `
MATCH ()-[r]->()
RETURN type(r) AS type, count(r) AS total
`
