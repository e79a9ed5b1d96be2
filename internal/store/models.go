package store

// Movie represents the movies table. Derived columns enrichment_score and
// popularity_tier are written only by the enrichment job, always as a pair.
type Movie struct {
	ID              int      `gorm:"primaryKey;autoIncrement"`
	Title           string   `gorm:"size:255;not null"`
	ReleaseYear     *int     `gorm:"column:release_year"`
	Rating          *float64 `gorm:"type:decimal(3,1)"`
	Description     string   `gorm:"type:text"`
	DirectorID      *int     `gorm:"column:director_id;index"`
	DurationMinutes *int     `gorm:"column:duration_minutes"`
	Budget          *float64 `gorm:"type:numeric(15,2)"`
	Revenue         *float64 `gorm:"type:numeric(15,2)"`
	Language        string   `gorm:"size:50"`
	Country         string   `gorm:"size:100"`
	EnrichmentScore *float64 `gorm:"column:enrichment_score;type:decimal(5,2)"`
	PopularityTier  *string  `gorm:"column:popularity_tier;size:50"`
}

// TableName overrides the table name
func (Movie) TableName() string {
	return "movies"
}

// Actor represents the actors table
type Actor struct {
	ID   int    `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:255;not null"`
}

// TableName overrides the table name
func (Actor) TableName() string {
	return "actors"
}

// Director represents the directors table
type Director struct {
	ID   int    `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:255;not null"`
}

// TableName overrides the table name
func (Director) TableName() string {
	return "directors"
}

// Genre represents the genres table
type Genre struct {
	ID   int    `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:100;uniqueIndex;not null"`
}

// TableName overrides the table name
func (Genre) TableName() string {
	return "genres"
}

// MovieActor represents the movie_actors association table
type MovieActor struct {
	MovieID int `gorm:"primaryKey"`
	ActorID int `gorm:"primaryKey"`
}

// TableName overrides the table name
func (MovieActor) TableName() string {
	return "movie_actors"
}

// MovieGenre represents the movie_genres association table
type MovieGenre struct {
	MovieID int `gorm:"primaryKey"`
	GenreID int `gorm:"primaryKey"`
}

// TableName overrides the table name
func (MovieGenre) TableName() string {
	return "movie_genres"
}
