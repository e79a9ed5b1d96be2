package domain

// MovieActor is one row of the movie_actors association table, mirrored as an
// ACTED_IN edge (Actor -> Movie).
type MovieActor struct {
	MovieID int
	ActorID int
}

// MovieGenre is one row of the movie_genres association table, mirrored as a
// HAS_GENRE edge (Movie -> Genre).
type MovieGenre struct {
	MovieID int
	GenreID int
}

// MovieDirector links a movie to its single director, mirrored as a DIRECTED
// edge (Director -> Movie). Only movies with a non-null director_id produce
// one.
type MovieDirector struct {
	MovieID    int
	DirectorID int
}
