package browse

import (
	"context"
	"sync"

	"github.com/desertthunder/moviex/internal/catalog"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
)

// DetailsState is a snapshot of a [MovieDetails].
type DetailsState struct {
	Movie         *models.Movie
	InWishlist    bool
	WishlistCount int
	Loading       bool
	Err           *shared.Failure
}

// MovieDetails holds one movie together with its wishlist status and the wishlist size.
type MovieDetails struct {
	repo catalog.Repository

	mu    sync.Mutex
	state DetailsState
}

func NewMovieDetails(repo catalog.Repository) *MovieDetails {
	return &MovieDetails{repo: repo}
}

// Load fetches the movie, its wishlist flag and the wishlist count.
func (d *MovieDetails) Load(ctx context.Context, id int) error {
	d.mu.Lock()
	d.state.Loading = true
	d.state.Err = nil
	d.mu.Unlock()

	movie, err := d.repo.MovieByID(ctx, id)
	var flagged bool
	if err == nil {
		flagged, err = d.repo.IsMovieInWishlist(ctx, id)
	}
	var count int
	if err == nil {
		count, err = d.repo.WishlistCount(ctx)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Loading = false
	if err != nil {
		d.state.Err = shared.AsFailure(err)
		return d.state.Err
	}
	d.state.Movie = movie
	d.state.InWishlist = flagged
	d.state.WishlistCount = count
	return nil
}

// ToggleWishlist writes the flag for the given movie. When it is the loaded movie the
// local flag follows; the wishlist count is refreshed either way.
func (d *MovieDetails) ToggleWishlist(ctx context.Context, id int, flag bool) error {
	if err := d.repo.UpdateWishlistStatus(ctx, id, flag); err != nil {
		d.mu.Lock()
		d.state.Err = shared.AsFailure(err)
		d.mu.Unlock()
		return err
	}

	count, err := d.repo.WishlistCount(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.Movie != nil && d.state.Movie.ID == id {
		d.state.InWishlist = flag
		d.state.Movie.InWishlist = flag
	}
	if err != nil {
		d.state.Err = shared.AsFailure(err)
		return d.state.Err
	}
	d.state.WishlistCount = count
	return nil
}

func (d *MovieDetails) State() DetailsState {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.state
	if d.state.Movie != nil {
		m := *d.state.Movie
		s.Movie = &m
	}
	return s
}
