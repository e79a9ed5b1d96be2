package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// SeedDataset is the JSON document consumed by the seed command. Movies
// reference their director, cast, and genres by name; people and genres
// referenced by a movie but missing from the top-level lists are created on
// the fly (create-or-reuse by name).
type SeedDataset struct {
	Directors []SeedPerson `json:"directors"`
	Actors    []SeedPerson `json:"actors"`
	Genres    []SeedGenre  `json:"genres"`
	Movies    []SeedMovie  `json:"movies"`
}

// SeedPerson names an actor or director to create.
type SeedPerson struct {
	Name string `json:"name"`
}

// SeedGenre names a genre to create.
type SeedGenre struct {
	Name string `json:"name"`
}

// SeedMovie is one movie with its relationships expressed by name.
type SeedMovie struct {
	Title           string   `json:"title"`
	ReleaseYear     *int     `json:"release_year"`
	Rating          *float64 `json:"rating"`
	Description     string   `json:"description"`
	Director        string   `json:"director"`
	DurationMinutes *int     `json:"duration_minutes"`
	Budget          *float64 `json:"budget"`
	Revenue         *float64 `json:"revenue"`
	Language        string   `json:"language"`
	Country         string   `json:"country"`
	Actors          []string `json:"actors"`
	Genres          []string `json:"genres"`
}

// Seed replaces all relational content with the provided dataset inside a
// single transaction. Association tables are cleared before the entity tables
// they reference.
func (s *Store) Seed(ctx context.Context, ds SeedDataset) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&MovieActor{}, &MovieGenre{}, &Movie{}, &Actor{}, &Director{}, &Genre{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear table: %w", err)
			}
		}

		directorIDs := make(map[string]int, len(ds.Directors))
		for _, d := range ds.Directors {
			id, err := createDirector(tx, d.Name)
			if err != nil {
				return err
			}
			directorIDs[d.Name] = id
		}

		actorIDs := make(map[string]int, len(ds.Actors))
		for _, a := range ds.Actors {
			id, err := createActor(tx, a.Name)
			if err != nil {
				return err
			}
			actorIDs[a.Name] = id
		}

		genreIDs := make(map[string]int, len(ds.Genres))
		for _, g := range ds.Genres {
			id, err := createGenre(tx, g.Name)
			if err != nil {
				return err
			}
			genreIDs[g.Name] = id
		}

		for _, m := range ds.Movies {
			row := Movie{
				Title:           m.Title,
				ReleaseYear:     m.ReleaseYear,
				Rating:          m.Rating,
				Description:     m.Description,
				DurationMinutes: m.DurationMinutes,
				Budget:          m.Budget,
				Revenue:         m.Revenue,
				Language:        m.Language,
				Country:         m.Country,
			}

			if m.Director != "" {
				id, ok := directorIDs[m.Director]
				if !ok {
					var err error
					id, err = createDirector(tx, m.Director)
					if err != nil {
						return err
					}
					directorIDs[m.Director] = id
				}
				row.DirectorID = &id
			}

			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create movie %q: %w", m.Title, err)
			}

			for _, name := range m.Actors {
				id, ok := actorIDs[name]
				if !ok {
					var err error
					id, err = createActor(tx, name)
					if err != nil {
						return err
					}
					actorIDs[name] = id
				}
				if err := tx.Create(&MovieActor{MovieID: row.ID, ActorID: id}).Error; err != nil {
					return fmt.Errorf("link actor %q to %q: %w", name, m.Title, err)
				}
			}

			for _, name := range m.Genres {
				id, ok := genreIDs[name]
				if !ok {
					var err error
					id, err = createGenre(tx, name)
					if err != nil {
						return err
					}
					genreIDs[name] = id
				}
				if err := tx.Create(&MovieGenre{MovieID: row.ID, GenreID: id}).Error; err != nil {
					return fmt.Errorf("link genre %q to %q: %w", name, m.Title, err)
				}
			}
		}

		return nil
	})
}

func createDirector(tx *gorm.DB, name string) (int, error) {
	row := Director{Name: name}
	if err := tx.Create(&row).Error; err != nil {
		return 0, fmt.Errorf("create director %q: %w", name, err)
	}
	return row.ID, nil
}

func createActor(tx *gorm.DB, name string) (int, error) {
	row := Actor{Name: name}
	if err := tx.Create(&row).Error; err != nil {
		return 0, fmt.Errorf("create actor %q: %w", name, err)
	}
	return row.ID, nil
}

func createGenre(tx *gorm.DB, name string) (int, error) {
	row := Genre{Name: name}
	if err := tx.Create(&row).Error; err != nil {
		return 0, fmt.Errorf("create genre %q: %w", name, err)
	}
	return row.ID, nil
}
