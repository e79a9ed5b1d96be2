package domain

// ScoringInput carries the three per-movie values the enrichment calculator
// consumes. ActorCount is the number of movie_actors rows for the movie.
type ScoringInput struct {
	MovieID     int
	Rating      *float64
	ReleaseYear *int
	ActorCount  int
}
