package domain

// Movie is a catalog entry as held by the relational store. Nullable columns
// are pointers so the graph mirror can distinguish absent values from zeroes.
type Movie struct {
	ID              int
	Title           string
	ReleaseYear     *int
	Rating          *float64
	Description     string
	DirectorID      *int
	DurationMinutes *int
	Budget          *float64
	Revenue         *float64
	Language        string
	Country         string
	EnrichmentScore *float64
	PopularityTier  *string
}

// Person identifies an actor or director by surrogate id.
type Person struct {
	ID   int
	Name string
}

// Genre identifies a genre by surrogate id. Names are globally unique.
type Genre struct {
	ID   int
	Name string
}
