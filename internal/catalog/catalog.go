// package catalog is the query facade callers use instead of the store: it maps storage
// rows to domain movies and reports every fault as a [shared.Failure].
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/tasks"
)

// Repository is the read/write surface over the local catalog.
//
// Errors returned by every method are *[shared.Failure] values.
type Repository interface {
	SyncIfNeeded(ctx context.Context) models.Result[tasks.SyncReport]
	TotalMovieCount(ctx context.Context) (int, error)
	MoviesPaginated(ctx context.Context, limit, offset int) ([]models.Movie, error)
	MoviesByGenrePaginated(ctx context.Context, genre string, limit, offset int) ([]models.Movie, error)
	MoviesByQueryPaginated(ctx context.Context, query string, limit, offset int) ([]models.Movie, error)
	MoviesByQueryAndGenrePaginated(ctx context.Context, genre, query string, limit, offset int) ([]models.Movie, error)
	MovieByID(ctx context.Context, id int) (*models.Movie, error)
	UpdateWishlistStatus(ctx context.Context, id int, flag bool) error
	Wishlist(ctx context.Context) ([]models.Movie, error)
	WishlistCount(ctx context.Context) (int, error)
	IsMovieInWishlist(ctx context.Context, id int) (bool, error)
	AllGenres(ctx context.Context) ([]string, error)
}

// Syncer populates the store from the remote catalog.
type Syncer interface {
	Run(ctx context.Context, progress chan<- tasks.ProgressUpdate) models.Result[tasks.SyncReport]
	Refresh(ctx context.Context, progress chan<- tasks.ProgressUpdate) models.Result[tasks.SyncReport]
}

// Service implements [Repository] over the movie and genre stores.
type Service struct {
	movies models.MovieStore
	genres models.GenreStore
	syncer Syncer
	logger *log.Logger
}

var _ Repository = (*Service)(nil)

// NewService creates a facade. A nil logger falls back to [log.Default].
func NewService(movies models.MovieStore, genres models.GenreStore, syncer Syncer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		movies: movies,
		genres: genres,
		syncer: syncer,
		logger: shared.WithLogger(logger, "component", "catalog"),
	}
}

// SyncIfNeeded runs the sync coordinator under its configured policy.
func (s *Service) SyncIfNeeded(ctx context.Context) models.Result[tasks.SyncReport] {
	s.logger.Debug("checking if sync is needed")
	if s.syncer == nil {
		return models.Failed[tasks.SyncReport](shared.UnexpectedFailure(errors.New("no sync coordinator configured")))
	}
	return s.syncer.Run(ctx, nil)
}

// ForceSync fetches the remote catalog regardless of policy.
func (s *Service) ForceSync(ctx context.Context, progress chan<- tasks.ProgressUpdate) models.Result[tasks.SyncReport] {
	s.logger.Debug("forcing catalog refresh")
	if s.syncer == nil {
		return models.Failed[tasks.SyncReport](shared.UnexpectedFailure(errors.New("no sync coordinator configured")))
	}
	return s.syncer.Refresh(ctx, progress)
}

func (s *Service) TotalMovieCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, failure(err)
	}
	n, err := s.movies.Count()
	if err != nil {
		return 0, failure(err)
	}
	s.logger.Debug("counted movies", "total", n)
	return n, nil
}

func (s *Service) MoviesPaginated(ctx context.Context, limit, offset int) ([]models.Movie, error) {
	s.logger.Debug("fetching movies", "limit", limit, "offset", offset)
	return s.page(ctx, func() ([]*models.PersistedMovie, error) {
		return s.movies.Paginated(limit, offset)
	})
}

func (s *Service) MoviesByGenrePaginated(ctx context.Context, genre string, limit, offset int) ([]models.Movie, error) {
	s.logger.Debug("fetching movies by genre", "genre", genre, "limit", limit, "offset", offset)
	return s.page(ctx, func() ([]*models.PersistedMovie, error) {
		return s.movies.ByGenre(genre, limit, offset)
	})
}

func (s *Service) MoviesByQueryPaginated(ctx context.Context, query string, limit, offset int) ([]models.Movie, error) {
	s.logger.Debug("searching movies", "query", query, "limit", limit, "offset", offset)
	return s.page(ctx, func() ([]*models.PersistedMovie, error) {
		return s.movies.ByTitleQuery(query, limit, offset)
	})
}

func (s *Service) MoviesByQueryAndGenrePaginated(ctx context.Context, genre, query string, limit, offset int) ([]models.Movie, error) {
	s.logger.Debug("searching movies by genre", "genre", genre, "query", query, "limit", limit, "offset", offset)
	return s.page(ctx, func() ([]*models.PersistedMovie, error) {
		return s.movies.ByGenreAndQuery(genre, query, limit, offset)
	})
}

// MovieByID returns one movie. An unknown id yields a failure wrapping [shared.ErrMovieNotFound].
func (s *Service) MovieByID(ctx context.Context, id int) (*models.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, failure(err)
	}
	row, err := s.movies.ByID(id)
	if err != nil {
		return nil, failure(err)
	}
	m := row.ToMovie()
	s.logger.Debug("loaded movie", "id", id, "title", m.Title)
	return &m, nil
}

// UpdateWishlistStatus sets the flag unconditionally. Unknown ids are a silent no-op.
func (s *Service) UpdateWishlistStatus(ctx context.Context, id int, flag bool) error {
	if err := ctx.Err(); err != nil {
		return failure(err)
	}
	if err := s.movies.SetWishlist(id, flag); err != nil {
		return failure(err)
	}
	s.logger.Debug("updated wishlist", "id", id, "flag", flag)
	return nil
}

func (s *Service) Wishlist(ctx context.Context) ([]models.Movie, error) {
	s.logger.Debug("fetching wishlist")
	return s.page(ctx, s.movies.Wishlist)
}

func (s *Service) WishlistCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, failure(err)
	}
	n, err := s.movies.WishlistCount()
	if err != nil {
		return 0, failure(err)
	}
	return n, nil
}

func (s *Service) IsMovieInWishlist(ctx context.Context, id int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, failure(err)
	}
	ok, err := s.movies.IsWishlisted(id)
	if err != nil {
		return false, failure(err)
	}
	return ok, nil
}

// AllGenres lists genre names in the order the remote catalog listed them.
func (s *Service) AllGenres(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, failure(err)
	}
	names, err := s.genres.All()
	if err != nil {
		return nil, failure(err)
	}
	s.logger.Debug("fetched genres", "count", len(names))
	return names, nil
}

func (s *Service) page(ctx context.Context, query func() ([]*models.PersistedMovie, error)) ([]models.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, failure(err)
	}
	rows, err := query()
	if err != nil {
		return nil, failure(err)
	}
	return models.ToMovies(rows), nil
}

// failure maps a store or context error into the failure taxonomy.
func failure(err error) *shared.Failure {
	switch {
	case errors.Is(err, shared.ErrMovieNotFound):
		return shared.NewFailure("Not Found – "+err.Error(), err)
	case errors.Is(err, shared.ErrInvalidArgument):
		return shared.NewFailure(fmt.Sprintf("Invalid Request – %v", err), err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return shared.NewFailure("Cancelled – "+err.Error(), err)
	default:
		return shared.StorageFailure(err)
	}
}
