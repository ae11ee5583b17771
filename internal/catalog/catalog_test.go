package catalog

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/repositories"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/tasks"
	tu "github.com/desertthunder/moviex/internal/testing"
)

func setupService(t *testing.T) (*Service, *tu.FakeFetcher) {
	t.Helper()

	db, err := shared.NewDatabase(shared.MemoryDSN)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := repositories.NewStore(db)
	fetcher := &tu.FakeFetcher{Response: tu.SampleCatalog()}
	engine := tasks.NewSyncEngine(store.Movies, store.Genres, fetcher)
	return NewService(store.Movies, store.Genres, engine, nil), fetcher
}

func ids(movies []models.Movie) []int {
	out := []int{}
	for _, m := range movies {
		out = append(out, m.ID)
	}
	return out
}

func asFailure(t *testing.T, err error) *shared.Failure {
	t.Helper()
	var f *shared.Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *shared.Failure, got %T: %v", err, err)
	}
	return f
}

func TestService(t *testing.T) {
	ctx := context.Background()

	t.Run("SyncIfNeeded Populates Once", func(t *testing.T) {
		svc, fetcher := setupService(t)

		if r := svc.SyncIfNeeded(ctx); !r.IsSuccess() {
			t.Fatalf("expected success, got %v", r.Err())
		}
		if r := svc.SyncIfNeeded(ctx); !r.IsSuccess() {
			t.Fatalf("expected success, got %v", r.Err())
		}
		if fetcher.Calls() != 1 {
			t.Errorf("expected 1 remote call, got %d", fetcher.Calls())
		}

		n, err := svc.TotalMovieCount(ctx)
		if err != nil || n != 3 {
			t.Errorf("expected 3 movies, got %d (%v)", n, err)
		}
	})

	t.Run("ForceSync", func(t *testing.T) {
		svc, fetcher := setupService(t)
		svc.SyncIfNeeded(ctx)

		if r := svc.ForceSync(ctx, nil); !r.IsSuccess() {
			t.Fatalf("expected success, got %v", r.Err())
		}
		if fetcher.Calls() != 2 {
			t.Errorf("expected 2 remote calls, got %d", fetcher.Calls())
		}
	})

	t.Run("Queries", func(t *testing.T) {
		svc, _ := setupService(t)
		svc.SyncIfNeeded(ctx)

		tc := []struct {
			name string
			call func() ([]models.Movie, error)
			want []int
		}{
			{"Paginated", func() ([]models.Movie, error) { return svc.MoviesPaginated(ctx, 10, 0) }, []int{2, 3, 1}},
			{"Paginated Second Page", func() ([]models.Movie, error) { return svc.MoviesPaginated(ctx, 2, 2) }, []int{1}},
			{"By Genre", func() ([]models.Movie, error) { return svc.MoviesByGenrePaginated(ctx, "Sci-Fi", 10, 0) }, []int{3, 1}},
			{"By Query", func() ([]models.Movie, error) { return svc.MoviesByQueryPaginated(ctx, "ALIEN", 10, 0) }, []int{3, 1}},
			{"By Query And Genre", func() ([]models.Movie, error) {
				return svc.MoviesByQueryAndGenrePaginated(ctx, "Horror", "alien", 10, 0)
			}, []int{1}},
			{"Past End", func() ([]models.Movie, error) { return svc.MoviesPaginated(ctx, 10, 10) }, []int{}},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				got, err := tt.call()
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if !reflect.DeepEqual(ids(got), tt.want) {
					t.Errorf("expected %v, got %v", tt.want, ids(got))
				}
			})
		}
	})

	t.Run("MovieByID", func(t *testing.T) {
		svc, _ := setupService(t)
		svc.SyncIfNeeded(ctx)

		m, err := svc.MovieByID(ctx, 1)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if m.Title != "Alien" || !reflect.DeepEqual(m.Genres, []string{"Horror", "Sci-Fi"}) || m.InWishlist {
			t.Errorf("unexpected movie %+v", m)
		}

		_, err = svc.MovieByID(ctx, 404)
		f := asFailure(t, err)
		if !errors.Is(err, shared.ErrMovieNotFound) || !strings.HasPrefix(f.Message, "Not Found – ") {
			t.Errorf("unexpected failure %+v", f)
		}
	})

	t.Run("Wishlist", func(t *testing.T) {
		svc, _ := setupService(t)
		svc.SyncIfNeeded(ctx)

		if err := svc.UpdateWishlistStatus(ctx, 3, true); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok, _ := svc.IsMovieInWishlist(ctx, 3); !ok {
			t.Error("expected movie 3 to be wishlisted")
		}
		if n, _ := svc.WishlistCount(ctx); n != 1 {
			t.Errorf("expected count 1, got %d", n)
		}
		list, _ := svc.Wishlist(ctx)
		if !reflect.DeepEqual(ids(list), []int{3}) || !list[0].InWishlist {
			t.Errorf("unexpected wishlist %+v", list)
		}

		if err := svc.UpdateWishlistStatus(ctx, 999, true); err != nil {
			t.Errorf("unknown id should be a no-op, got %v", err)
		}
		if ok, _ := svc.IsMovieInWishlist(ctx, 999); ok {
			t.Error("unknown id should not be wishlisted")
		}

		svc.UpdateWishlistStatus(ctx, 3, false)
		if n, _ := svc.WishlistCount(ctx); n != 0 {
			t.Errorf("expected count 0, got %d", n)
		}
	})

	t.Run("AllGenres", func(t *testing.T) {
		svc, _ := setupService(t)

		got, err := svc.AllGenres(ctx)
		if err != nil || len(got) != 0 {
			t.Errorf("expected empty genres before sync, got %v (%v)", got, err)
		}

		svc.SyncIfNeeded(ctx)
		got, _ = svc.AllGenres(ctx)
		if !reflect.DeepEqual(got, []string{"Action", "Crime", "Drama", "Horror", "Sci-Fi"}) {
			t.Errorf("unexpected genres %v", got)
		}
	})

	t.Run("Failures", func(t *testing.T) {
		svc, _ := setupService(t)

		t.Run("Negative Page", func(t *testing.T) {
			_, err := svc.MoviesPaginated(ctx, -1, 0)
			if f := asFailure(t, err); !strings.HasPrefix(f.Message, "Invalid Request – ") {
				t.Errorf("unexpected message %q", f.Message)
			}
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Error("expected ErrInvalidArgument in chain")
			}
		})

		t.Run("Cancelled Context", func(t *testing.T) {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := svc.AllGenres(cctx)
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		})

		t.Run("Storage Fault", func(t *testing.T) {
			broken := NewService(brokenMovies{}, nil, nil, nil)

			_, err := broken.TotalMovieCount(ctx)
			if f := asFailure(t, err); f.Message != "Storage Error – database is locked" {
				t.Errorf("unexpected message %q", f.Message)
			}
		})

		t.Run("No Syncer", func(t *testing.T) {
			r := NewService(brokenMovies{}, nil, nil, nil).SyncIfNeeded(ctx)
			if !r.IsError() {
				t.Error("expected error result")
			}
		})

		t.Run("Sync Failure Passthrough", func(t *testing.T) {
			svc, fetcher := setupService(t)
			want := shared.NewFailure("Network Error – Please check your internet connection.", nil)
			fetcher.Set(nil, want)

			if r := svc.SyncIfNeeded(ctx); r.Failure() != want {
				t.Errorf("expected failure to pass through, got %+v", r.Failure())
			}
		})
	})
}

type brokenMovies struct{ models.MovieStore }

func (brokenMovies) Count() (int, error) { return 0, errors.New("database is locked") }
