package browse

import (
	"context"
	"slices"
	"sync"

	"github.com/desertthunder/moviex/internal/catalog"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
)

// WishlistState is a snapshot of a [Wishlist].
type WishlistState struct {
	Movies  []models.Movie
	Loading bool
	Err     *shared.Failure
}

// Wishlist holds the flagged movies.
type Wishlist struct {
	repo catalog.Repository

	mu    sync.Mutex
	state WishlistState
}

func NewWishlist(repo catalog.Repository) *Wishlist {
	return &Wishlist{repo: repo, state: WishlistState{Movies: []models.Movie{}}}
}

// Load replaces the list with the stored wishlist.
func (w *Wishlist) Load(ctx context.Context) error {
	w.mu.Lock()
	w.state.Loading = true
	w.state.Err = nil
	w.mu.Unlock()

	movies, err := w.repo.Wishlist(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Loading = false
	if err != nil {
		w.state.Err = shared.AsFailure(err)
		return w.state.Err
	}
	w.state.Movies = movies
	return nil
}

// Toggle writes the flag and reloads the list.
func (w *Wishlist) Toggle(ctx context.Context, id int, flag bool) error {
	if err := w.repo.UpdateWishlistStatus(ctx, id, flag); err != nil {
		w.mu.Lock()
		w.state.Err = shared.AsFailure(err)
		w.mu.Unlock()
		return err
	}
	return w.Load(ctx)
}

func (w *Wishlist) State() WishlistState {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.state
	s.Movies = slices.Clone(w.state.Movies)
	return s
}
