package models

import (
	"errors"
	"reflect"
	"testing"

	"github.com/desertthunder/moviex/internal/shared"
)

func TestPersistedMovie(t *testing.T) {
	movie := Movie{
		ID:        7,
		Title:     "Heat",
		Year:      "1995",
		Runtime:   "170",
		Genres:    []string{"Crime", "Drama"},
		Director:  "Michael Mann",
		Actors:    "Al Pacino, Robert De Niro",
		PosterURL: "https://example.com/heat.jpg",
	}

	t.Run("round trip", func(t *testing.T) {
		got := NewPersistedMovie(movie).ToMovie()
		if !reflect.DeepEqual(got, movie) {
			t.Errorf("expected %+v, got %+v", movie, got)
		}
	})

	t.Run("genre list is copied", func(t *testing.T) {
		src := movie
		src.Genres = []string{"Crime"}
		p := NewPersistedMovie(src)
		src.Genres[0] = "Changed"

		if p.Genres()[0] != "Crime" {
			t.Errorf("expected persisted genres to be independent, got %v", p.Genres())
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name  string
			movie Movie
		}{
			{"zero id", Movie{Title: "X"}},
			{"negative id", Movie{ID: -1, Title: "X"}},
			{"blank title", Movie{ID: 1, Title: "  "}},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if err := NewPersistedMovie(tt.movie).Validate(); !errors.Is(err, shared.ErrInvalidMovie) {
					t.Errorf("expected ErrInvalidMovie, got %v", err)
				}
			})
		}

		if err := NewPersistedMovie(movie).Validate(); err != nil {
			t.Errorf("expected valid movie, got %v", err)
		}
	})

	t.Run("HasGenre is exact", func(t *testing.T) {
		if !movie.HasGenre("Crime") || movie.HasGenre("crime") || movie.HasGenre("Cri") {
			t.Error("HasGenre should match whole, case-sensitive names only")
		}
	})
}

func TestResult(t *testing.T) {
	t.Run("Succeeded", func(t *testing.T) {
		r := Succeeded([]Movie{{ID: 1}})
		data, ok := r.Data()
		if !ok || len(data) != 1 || !r.IsSuccess() || r.IsError() || r.IsLoading() {
			t.Errorf("unexpected success result %+v", r)
		}
		if r.Err() != nil {
			t.Error("success should carry no error")
		}
	})

	t.Run("Failed", func(t *testing.T) {
		f := &shared.Failure{Message: "404 Not Found", Code: 404}
		r := Failed[int](f)
		if !r.IsError() || r.Failure() != f || r.Status().String() != "error" {
			t.Errorf("unexpected error result %+v", r)
		}
		if _, ok := r.Data(); ok {
			t.Error("error result should have no data")
		}
	})

	t.Run("Failed with nil failure", func(t *testing.T) {
		r := Failed[int](nil)
		if r.Failure() == nil {
			t.Error("expected a placeholder failure")
		}
	})

	t.Run("InProgress", func(t *testing.T) {
		r := InProgress[string]()
		if !r.IsLoading() || r.Status() != StatusLoading {
			t.Errorf("unexpected loading result %+v", r)
		}
	})
}
