package models

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/moviex/internal/shared"
)

// Movie is a catalog entry as handed to callers.
//
// Year is kept as text since the catalog uses ranges such as "2019–".
type Movie struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Year       string   `json:"year"`
	Runtime    string   `json:"runtime"`
	Genres     []string `json:"genres"`
	Director   string   `json:"director"`
	Actors     string   `json:"actors"`
	Plot       string   `json:"plot"`
	PosterURL  string   `json:"posterUrl"`
	InWishlist bool     `json:"inWishlist"`
}

// GenreLabel joins the genre list for display.
func (m Movie) GenreLabel() string {
	return strings.Join(m.Genres, ", ")
}

// HasGenre reports exact, case-sensitive membership.
func (m Movie) HasGenre(genre string) bool {
	return slices.Contains(m.Genres, genre)
}

// PersistedMovie is the storage form of a [Movie].
type PersistedMovie struct {
	id         int
	title      string
	year       string
	runtime    string
	genres     []string
	director   string
	actors     string
	plot       string
	posterURL  string
	inWishlist bool
}

// NewPersistedMovie copies m into its storage form. The genre list is copied.
func NewPersistedMovie(m Movie) *PersistedMovie {
	genres := make([]string, len(m.Genres))
	copy(genres, m.Genres)

	return &PersistedMovie{
		id:         m.ID,
		title:      m.Title,
		year:       m.Year,
		runtime:    m.Runtime,
		genres:     genres,
		director:   m.Director,
		actors:     m.Actors,
		plot:       m.Plot,
		posterURL:  m.PosterURL,
		inWishlist: m.InWishlist,
	}
}

func (p *PersistedMovie) ID() int { return p.id }
func (p *PersistedMovie) Title() string { return p.title }
func (p *PersistedMovie) Year() string { return p.year }
func (p *PersistedMovie) Runtime() string { return p.runtime }
func (p *PersistedMovie) Genres() []string { return p.genres }
func (p *PersistedMovie) Director() string { return p.director }
func (p *PersistedMovie) Actors() string { return p.actors }
func (p *PersistedMovie) Plot() string { return p.plot }
func (p *PersistedMovie) PosterURL() string { return p.posterURL }
func (p *PersistedMovie) InWishlist() bool { return p.inWishlist }
func (p *PersistedMovie) SetInWishlist(v bool) { p.inWishlist = v }

// SetGenres replaces the genre list.
func (p *PersistedMovie) SetGenres(genres []string) { p.genres = genres }

// Validate checks the fields the store relies on.
func (p *PersistedMovie) Validate() error {
	if p.id <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", shared.ErrInvalidMovie, p.id)
	}
	if strings.TrimSpace(p.title) == "" {
		return fmt.Errorf("%w: movie %d has no title", shared.ErrInvalidMovie, p.id)
	}
	return nil
}

// ToMovie converts the storage record back to a [Movie].
func (p *PersistedMovie) ToMovie() Movie {
	genres := make([]string, len(p.genres))
	copy(genres, p.genres)

	return Movie{
		ID:         p.id,
		Title:      p.title,
		Year:       p.year,
		Runtime:    p.runtime,
		Genres:     genres,
		Director:   p.director,
		Actors:     p.actors,
		Plot:       p.plot,
		PosterURL:  p.posterURL,
		InWishlist: p.inWishlist,
	}
}

// ToMovies converts a slice of storage records.
func ToMovies(rows []*PersistedMovie) []Movie {
	movies := make([]Movie, 0, len(rows))
	for _, r := range rows {
		movies = append(movies, r.ToMovie())
	}
	return movies
}
