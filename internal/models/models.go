// package models defines the data model for the movie catalog
package models

import "time"

// MovieStore is the movie side of the local catalog store.
//
// List methods return rows ordered by year descending, then id ascending.
// Negative limits or offsets are rejected.
type MovieStore interface {
	// Count returns the number of stored movies
	Count() (int, error)
	// InsertAll upserts a batch in one transaction
	InsertAll(movies []*PersistedMovie) error
	// Paginated lists every movie
	Paginated(limit, offset int) ([]*PersistedMovie, error)
	// ByGenre lists movies whose genre list contains genre
	ByGenre(genre string, limit, offset int) ([]*PersistedMovie, error)
	// ByTitleQuery matches a case-insensitive title substring
	ByTitleQuery(query string, limit, offset int) ([]*PersistedMovie, error)
	// ByGenreAndQuery applies both filters
	ByGenreAndQuery(genre, query string, limit, offset int) ([]*PersistedMovie, error)
	// ByID returns one movie or shared.ErrMovieNotFound
	ByID(id int) (*PersistedMovie, error)
	// SetWishlist sets the flag; unknown ids are ignored
	SetWishlist(id int, flag bool) error
	// IsWishlisted reports the flag
	IsWishlisted(id int) (bool, error)
	// Wishlist lists flagged movies
	Wishlist() ([]*PersistedMovie, error)
	// WishlistCount counts flagged movies
	WishlistCount() (int, error)
	// WishlistedIDs lists ids of flagged movies
	WishlistedIDs() ([]int, error)
}

// GenreStore is the genre side of the local catalog store.
type GenreStore interface {
	InsertAll(names []string) error // InsertAll adds names, keeping the first insertion position of duplicates
	All() ([]string, error)         // All returns names in insertion order
}

// SyncState describes the last successful sync.
type SyncState struct {
	RunID      string    `json:"run_id"`
	SyncedAt   time.Time `json:"synced_at"`
	MovieCount int       `json:"movie_count"`
	GenreCount int       `json:"genre_count"`
}

// SyncStateStore records sync bookkeeping.
type SyncStateStore interface {
	LastSynced() (*SyncState, error) // LastSynced returns nil when no sync has completed
	MarkSynced(state SyncState) error
}
