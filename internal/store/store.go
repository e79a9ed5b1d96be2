package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/arvind/filmgraph/internal/config"
	"github.com/arvind/filmgraph/internal/domain"
)

// Store wraps the relational system of record for movies, people, and genres.
type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// Open connects to Postgres and returns the store together with a cleanup
// function that releases the underlying connection pool. The cleanup must run
// unconditionally when the owning job finishes.
func Open(cfg config.DatabaseConfig, logger *slog.Logger) (*Store, func(), error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("acquire database handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	logger.Info("database connected", "host", cfg.Host, "name", cfg.Name)

	cleanup := func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("closing database failed", "error", err)
		}
	}

	return &Store{db: db, log: logger}, cleanup, nil
}

// NewWithDB wraps an existing gorm handle. Used by tests with a SQLite
// backing store.
func NewWithDB(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, log: logger}
}

// Migrate creates or updates all tables.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&Director{}, &Actor{}, &Genre{}, &Movie{}, &MovieActor{}, &MovieGenre{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// ListMovies returns every movie row in a single query.
func (s *Store) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	var rows []Movie
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	movies := make([]domain.Movie, 0, len(rows))
	for i := range rows {
		movies = append(movies, modelToMovie(&rows[i]))
	}
	return movies, nil
}

// ListActors returns every actor row.
func (s *Store) ListActors(ctx context.Context) ([]domain.Person, error) {
	var rows []Actor
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	people := make([]domain.Person, 0, len(rows))
	for _, r := range rows {
		people = append(people, domain.Person{ID: r.ID, Name: r.Name})
	}
	return people, nil
}

// ListDirectors returns every director row.
func (s *Store) ListDirectors(ctx context.Context) ([]domain.Person, error) {
	var rows []Director
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list directors: %w", err)
	}
	people := make([]domain.Person, 0, len(rows))
	for _, r := range rows {
		people = append(people, domain.Person{ID: r.ID, Name: r.Name})
	}
	return people, nil
}

// ListGenres returns every genre row.
func (s *Store) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	var rows []Genre
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	genres := make([]domain.Genre, 0, len(rows))
	for _, r := range rows {
		genres = append(genres, domain.Genre{ID: r.ID, Name: r.Name})
	}
	return genres, nil
}

// ListMovieActors returns every movie_actors association row.
func (s *Store) ListMovieActors(ctx context.Context) ([]domain.MovieActor, error) {
	var rows []MovieActor
	if err := s.db.WithContext(ctx).Order("movie_id, actor_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list movie actors: %w", err)
	}
	links := make([]domain.MovieActor, 0, len(rows))
	for _, r := range rows {
		links = append(links, domain.MovieActor{MovieID: r.MovieID, ActorID: r.ActorID})
	}
	return links, nil
}

// ListMovieGenres returns every movie_genres association row.
func (s *Store) ListMovieGenres(ctx context.Context) ([]domain.MovieGenre, error) {
	var rows []MovieGenre
	if err := s.db.WithContext(ctx).Order("movie_id, genre_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list movie genres: %w", err)
	}
	links := make([]domain.MovieGenre, 0, len(rows))
	for _, r := range rows {
		links = append(links, domain.MovieGenre{MovieID: r.MovieID, GenreID: r.GenreID})
	}
	return links, nil
}

// ScoringInputs returns, in one query, the per-movie values the enrichment
// calculator needs: rating, release year, and cast size.
func (s *Store) ScoringInputs(ctx context.Context) ([]domain.ScoringInput, error) {
	var rows []scoringRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT m.id AS movie_id, m.rating, m.release_year, COUNT(ma.actor_id) AS actor_count
		FROM movies m
		LEFT JOIN movie_actors ma ON ma.movie_id = m.id
		GROUP BY m.id, m.rating, m.release_year
		ORDER BY m.id`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query scoring inputs: %w", err)
	}
	inputs := make([]domain.ScoringInput, 0, len(rows))
	for _, r := range rows {
		inputs = append(inputs, domain.ScoringInput{
			MovieID:     r.MovieID,
			Rating:      r.Rating,
			ReleaseYear: r.ReleaseYear,
			ActorCount:  r.ActorCount,
		})
	}
	return inputs, nil
}

type scoringRow struct {
	MovieID     int `gorm:"column:movie_id"`
	Rating      *float64
	ReleaseYear *int `gorm:"column:release_year"`
	ActorCount  int  `gorm:"column:actor_count"`
}

// UpdateEnrichment writes the derived score and tier back to one movie row.
// The pair is always written together.
func (s *Store) UpdateEnrichment(ctx context.Context, movieID int, score float64, tier string) error {
	res := s.db.WithContext(ctx).Model(&Movie{}).Where("id = ?", movieID).Updates(map[string]any{
		"enrichment_score": score,
		"popularity_tier":  tier,
	})
	if res.Error != nil {
		return fmt.Errorf("update enrichment for movie %d: %w", movieID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update enrichment: movie %d not found", movieID)
	}
	return nil
}

func modelToMovie(m *Movie) domain.Movie {
	return domain.Movie{
		ID:              m.ID,
		Title:           m.Title,
		ReleaseYear:     m.ReleaseYear,
		Rating:          m.Rating,
		Description:     m.Description,
		DirectorID:      m.DirectorID,
		DurationMinutes: m.DurationMinutes,
		Budget:          m.Budget,
		Revenue:         m.Revenue,
		Language:        m.Language,
		Country:         m.Country,
		EnrichmentScore: m.EnrichmentScore,
		PopularityTier:  m.PopularityTier,
	}
}
