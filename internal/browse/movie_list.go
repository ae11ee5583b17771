package browse

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviex/internal/catalog"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
)

// DefaultPageSize is the number of movies requested per page.
const DefaultPageSize = 10

// ListState is a snapshot of a [MovieList].
type ListState struct {
	SessionID     string
	Movies        []models.Movie
	Genres        []string
	SelectedGenre *string
	SearchQuery   string
	Wishlist      []models.Movie
	Loading       bool
	Err           *shared.Failure
	Offset        int
	// Exhausted is set once a page comes back empty.
	Exhausted bool
}

// HasFilter reports whether a genre or search filter is active.
func (s ListState) HasFilter() bool {
	return s.SelectedGenre != nil || strings.TrimSpace(s.SearchQuery) != ""
}

// MovieList accumulates pages of movies under an optional genre filter and title search.
//
// The offset advances by the page size after every successful load, whatever the
// number of rows returned; an empty page marks the end of the data. Changing a filter
// starts a new generation: the list and offset reset and any load still in flight for
// the previous generation is discarded on completion.
type MovieList struct {
	repo     catalog.Repository
	pageSize int
	logger   *log.Logger

	mu         sync.Mutex
	state      ListState
	generation uint64
	loadingGen uint64
}

// NewMovieList creates a list holder. A non-positive page size uses [DefaultPageSize].
func NewMovieList(repo catalog.Repository, pageSize int, logger *log.Logger) *MovieList {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = log.Default()
	}
	id := shared.GenerateID()
	return &MovieList{
		repo:     repo,
		pageSize: pageSize,
		logger:   shared.WithLogger(logger, "session", id[:8]),
		state:    ListState{SessionID: id, Movies: []models.Movie{}},
	}
}

// PageSize returns the number of movies requested per load.
func (l *MovieList) PageSize() int { return l.pageSize }

// Init loads genres, the wishlist and the first page.
func (l *MovieList) Init(ctx context.Context) error {
	if err := l.LoadGenres(ctx); err != nil {
		return err
	}
	if err := l.LoadWishlist(ctx); err != nil {
		return err
	}
	return l.LoadNextPage(ctx)
}

// State returns a copy of the current state.
func (l *MovieList) State() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.state
	s.Movies = slices.Clone(l.state.Movies)
	s.Genres = slices.Clone(l.state.Genres)
	s.Wishlist = slices.Clone(l.state.Wishlist)
	if l.state.SelectedGenre != nil {
		g := *l.state.SelectedGenre
		s.SelectedGenre = &g
	}
	return s
}

// LoadNextPage fetches the page at the current offset and appends it.
//
// The call is a no-op while a load of the current generation is in flight. On failure
// the error is recorded in the state and returned, and the offset does not move.
func (l *MovieList) LoadNextPage(ctx context.Context) error {
	l.mu.Lock()
	if l.state.Loading && l.loadingGen == l.generation {
		l.mu.Unlock()
		l.logger.Debug("load already in flight, dropping request")
		return nil
	}
	gen := l.generation
	l.loadingGen = gen
	l.state.Loading = true
	l.state.Err = nil
	genre := l.state.SelectedGenre
	query := l.state.SearchQuery
	offset := l.state.Offset
	l.mu.Unlock()

	movies, err := l.fetch(ctx, genre, query, offset)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		l.logger.Debug("discarding stale page", "generation", gen, "current", l.generation)
		return nil
	}

	l.state.Loading = false
	if err != nil {
		l.state.Err = shared.AsFailure(err)
		l.logger.Warn("failed to load page", "offset", offset, "err", err)
		return l.state.Err
	}

	l.state.Movies = append(l.state.Movies, movies...)
	l.state.Offset += l.pageSize
	l.state.Exhausted = len(movies) == 0
	l.logger.Debug("loaded page", "offset", offset, "rows", len(movies), "total", len(l.state.Movies))
	return nil
}

func (l *MovieList) fetch(ctx context.Context, genre *string, query string, offset int) ([]models.Movie, error) {
	return FetchPage(ctx, l.repo, genre, query, l.pageSize, offset)
}

// FetchPage runs the facade query matching the filters: none, genre only, query only
// or both. A blank query counts as no query.
func FetchPage(ctx context.Context, repo catalog.Repository, genre *string, query string, limit, offset int) ([]models.Movie, error) {
	query = strings.TrimSpace(query)
	switch {
	case genre != nil && query != "":
		return repo.MoviesByQueryAndGenrePaginated(ctx, *genre, query, limit, offset)
	case query != "":
		return repo.MoviesByQueryPaginated(ctx, query, limit, offset)
	case genre != nil:
		return repo.MoviesByGenrePaginated(ctx, *genre, limit, offset)
	default:
		return repo.MoviesPaginated(ctx, limit, offset)
	}
}

// SetGenreFilter selects a genre, or clears the filter when genre is nil, and reloads
// from the first page. The search query is kept; both filters apply together.
func (l *MovieList) SetGenreFilter(ctx context.Context, genre *string) error {
	l.mu.Lock()
	if genre != nil {
		g := *genre
		genre = &g
	}
	l.state.SelectedGenre = genre
	l.resetLocked()
	l.mu.Unlock()

	return l.LoadNextPage(ctx)
}

// SetSearchQuery replaces the title search and reloads from the first page.
func (l *MovieList) SetSearchQuery(ctx context.Context, query string) error {
	l.mu.Lock()
	l.state.SearchQuery = query
	l.resetLocked()
	l.mu.Unlock()

	return l.LoadNextPage(ctx)
}

// Refresh clears the accumulated list and reloads the first page under the current filters.
func (l *MovieList) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.resetLocked()
	l.mu.Unlock()

	return l.LoadNextPage(ctx)
}

// resetLocked starts a new generation. Callers hold l.mu.
func (l *MovieList) resetLocked() {
	l.generation++
	l.state.Offset = 0
	l.state.Movies = []models.Movie{}
	l.state.Err = nil
	l.state.Loading = false
	l.state.Exhausted = false
}

// ToggleWishlist writes the flag through the facade and reloads the wishlist.
//
// Copies of the movie already in the paginated list keep their old flag until the
// list is reloaded.
func (l *MovieList) ToggleWishlist(ctx context.Context, id int, flag bool) error {
	if err := l.repo.UpdateWishlistStatus(ctx, id, flag); err != nil {
		l.setErr(err)
		return err
	}
	return l.LoadWishlist(ctx)
}

// LoadGenres replaces the genre list.
func (l *MovieList) LoadGenres(ctx context.Context) error {
	genres, err := l.repo.AllGenres(ctx)
	if err != nil {
		l.setErr(err)
		return err
	}

	l.mu.Lock()
	l.state.Genres = genres
	l.mu.Unlock()
	return nil
}

// LoadWishlist replaces the wishlist.
func (l *MovieList) LoadWishlist(ctx context.Context) error {
	movies, err := l.repo.Wishlist(ctx)
	if err != nil {
		l.setErr(err)
		return err
	}

	l.mu.Lock()
	l.state.Wishlist = movies
	l.mu.Unlock()
	return nil
}

// ClearError drops the recorded failure.
func (l *MovieList) ClearError() {
	l.mu.Lock()
	l.state.Err = nil
	l.mu.Unlock()
}

func (l *MovieList) setErr(err error) {
	l.mu.Lock()
	l.state.Err = shared.AsFailure(err)
	l.mu.Unlock()
}
