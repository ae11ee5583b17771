// package services defines the remote collaborators of the catalog: the HTTP catalog
// client and the connectivity check.
package services

import (
	"context"

	"github.com/desertthunder/moviex/internal/models"
)

// CatalogFetcher retrieves the full remote catalog in one request.
//
// Errors are always [*shared.Failure] values classified by [ClassifyStatus],
// [NetworkFailure] or [shared.UnexpectedFailure].
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context) (*CatalogResponse, error)
}

// ConnectivityChecker reports whether the catalog host is reachable.
type ConnectivityChecker interface {
	HasConnectivity(ctx context.Context) bool
}

// CatalogResponse is the remote catalog document.
type CatalogResponse struct {
	Genres []string      `json:"genres"`
	Movies []RemoteMovie `json:"movies"`
}

// RemoteMovie is a movie as published by the remote catalog.
type RemoteMovie struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Year      string   `json:"year"`
	Runtime   string   `json:"runtime"`
	Genres    []string `json:"genres"`
	Director  string   `json:"director"`
	Actors    string   `json:"actors"`
	Plot      string   `json:"plot"`
	PosterURL string   `json:"posterUrl"`
}

// ToMovie maps the remote record to a domain [models.Movie] with the wishlist flag cleared.
func (r RemoteMovie) ToMovie() models.Movie {
	genres := r.Genres
	if genres == nil {
		genres = []string{}
	}
	return models.Movie{
		ID:        r.ID,
		Title:     r.Title,
		Year:      r.Year,
		Runtime:   r.Runtime,
		Genres:    genres,
		Director:  r.Director,
		Actors:    r.Actors,
		Plot:      r.Plot,
		PosterURL: r.PosterURL,
	}
}
