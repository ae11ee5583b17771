package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func movie(id int, title, year string, genres ...string) *models.PersistedMovie {
	return models.NewPersistedMovie(models.Movie{ID: id, Title: title, Year: year, Genres: genres})
}

func ids(rows []*models.PersistedMovie) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID())
	}
	return out
}

// seedCatalog stores a small catalog:
//
//	1 Alien       1979 Horror, Sci-Fi
//	2 Aliens      1986 Action, Sci-Fi
//	3 Heat        1995 Crime, Drama
//	4 Heathers    1989 Comedy
//	5 100% Wolf   2020 Animation
//	6 The_Matrix  1999 Action, Sci-Fi
func seedCatalog(t *testing.T, repo *MovieRepository) {
	t.Helper()
	err := repo.InsertAll([]*models.PersistedMovie{
		movie(1, "Alien", "1979", "Horror", "Sci-Fi"),
		movie(2, "Aliens", "1986", "Action", "Sci-Fi"),
		movie(3, "Heat", "1995", "Crime", "Drama"),
		movie(4, "Heathers", "1989", "Comedy"),
		movie(5, "100% Wolf", "2020", "Animation"),
		movie(6, "The_Matrix", "1999", "Action", "Sci-Fi"),
	})
	if err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}
}

func TestMovieRepository(t *testing.T) {
	t.Run("Count", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))

		n, err := repo.Count()
		if err != nil || n != 0 {
			t.Fatalf("expected empty store, got %d (%v)", n, err)
		}

		seedCatalog(t, repo)
		if n, _ := repo.Count(); n != 6 {
			t.Errorf("expected 6 movies, got %d", n)
		}
	})

	t.Run("InsertAll replaces by id", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))

		if err := repo.InsertAll([]*models.PersistedMovie{movie(1, "Draft", "2000", "Drama", "Crime")}); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
		if err := repo.InsertAll([]*models.PersistedMovie{movie(1, "Final", "2001", "Comedy")}); err != nil {
			t.Fatalf("failed to reinsert: %v", err)
		}

		n, _ := repo.Count()
		if n != 1 {
			t.Fatalf("expected 1 row, got %d", n)
		}

		got, err := repo.ByID(1)
		if err != nil {
			t.Fatalf("failed to get movie: %v", err)
		}
		if got.Title() != "Final" || got.Year() != "2001" {
			t.Errorf("expected latest payload, got %s %s", got.Title(), got.Year())
		}
		if !reflect.DeepEqual(got.Genres(), []string{"Comedy"}) {
			t.Errorf("expected genres replaced, got %v", got.Genres())
		}
	})

	t.Run("InsertAll last duplicate in batch wins", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))

		err := repo.InsertAll([]*models.PersistedMovie{movie(9, "First", "2000"), movie(9, "Second", "2000")})
		if err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
		got, _ := repo.ByID(9)
		if got.Title() != "Second" {
			t.Errorf("expected Second, got %s", got.Title())
		}
	})

	t.Run("InsertAll preserves genre order", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))
		genres := []string{"Thriller", "Action", "Drama", "Action, Adventure"}

		if err := repo.InsertAll([]*models.PersistedMovie{movie(1, "Ordered", "2010", genres...)}); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
		got, _ := repo.ByID(1)
		if !reflect.DeepEqual(got.Genres(), genres) {
			t.Errorf("expected %v, got %v", genres, got.Genres())
		}
	})

	t.Run("InsertAll rejects invalid batch atomically", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))

		err := repo.InsertAll([]*models.PersistedMovie{movie(1, "Good", "2000"), movie(0, "Bad", "2000")})
		if !errors.Is(err, shared.ErrInvalidMovie) {
			t.Fatalf("expected ErrInvalidMovie, got %v", err)
		}
		if n, _ := repo.Count(); n != 0 {
			t.Errorf("expected nothing written, got %d rows", n)
		}
	})

	t.Run("Paginated orders by year then id", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))
		seedCatalog(t, repo)
		if err := repo.InsertAll([]*models.PersistedMovie{movie(7, "Tie", "1999")}); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}

		rows, err := repo.Paginated(10, 0)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		want := []int{5, 6, 7, 3, 4, 2, 1}
		if got := ids(rows); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("pages concatenate to the full set", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))
		var batch []*models.PersistedMovie
		for i := 1; i <= 23; i++ {
			batch = append(batch, movie(i, fmt.Sprintf("Movie %d", i), fmt.Sprintf("%d", 1990+i%7)))
		}
		if err := repo.InsertAll(batch); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}

		full, _ := repo.Paginated(100, 0)
		var paged []int
		for offset := 0; ; offset += 5 {
			rows, err := repo.Paginated(5, offset)
			if err != nil {
				t.Fatalf("failed to page: %v", err)
			}
			if len(rows) == 0 {
				break
			}
			paged = append(paged, ids(rows)...)
		}

		if !reflect.DeepEqual(paged, ids(full)) {
			t.Errorf("paged %v differs from full %v", paged, ids(full))
		}
		seen := map[int]bool{}
		for _, id := range paged {
			if seen[id] {
				t.Errorf("duplicate id %d", id)
			}
			seen[id] = true
		}
	})

	t.Run("ByGenre is exact membership", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))
		seedCatalog(t, repo)

		rows, _ := repo.ByGenre("Sci-Fi", 10, 0)
		if got := ids(rows); !reflect.DeepEqual(got, []int{6, 2, 1}) {
			t.Errorf("expected [6 2 1], got %v", got)
		}

		for _, g := range []string{"Sci", "sci-fi", "Action, Sci-Fi"} {
			if rows, _ := repo.ByGenre(g, 10, 0); len(rows) != 0 {
				t.Errorf("ByGenre(%q) expected no rows, got %v", g, ids(rows))
			}
		}
	})

	t.Run("ByTitleQuery", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))
		seedCatalog(t, repo)

		tc := []struct {
			query string
			want  []int
		}{
			{"alien", []int{2, 1}},
			{"HEAT", []int{3, 4}},
			{"thers", []int{4}},
			{"%", []int{5}},
			{"_", []int{6}},
			{"zzz", []int{}},
			{"", []int{5, 6, 3, 4, 2, 1}},
		}
		for _, tt := range tc {
			rows, err := repo.ByTitleQuery(tt.query, 10, 0)
			if err != nil {
				t.Fatalf("ByTitleQuery(%q) failed: %v", tt.query, err)
			}
			if got := ids(rows); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ByTitleQuery(%q) = %v, want %v", tt.query, got, tt.want)
			}
		}
	})

	t.Run("ByGenreAndQuery is the intersection", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))
		seedCatalog(t, repo)

		for _, genre := range []string{"Sci-Fi", "Action", "Drama", "Comedy"} {
			for _, q := range []string{"a", "alien", "he", "x"} {
				both, err := repo.ByGenreAndQuery(genre, q, 100, 0)
				if err != nil {
					t.Fatalf("ByGenreAndQuery failed: %v", err)
				}
				byGenre, _ := repo.ByGenre(genre, 100, 0)
				byTitle, _ := repo.ByTitleQuery(q, 100, 0)

				inTitle := map[int]bool{}
				for _, id := range ids(byTitle) {
					inTitle[id] = true
				}
				want := []int{}
				for _, id := range ids(byGenre) {
					if inTitle[id] {
						want = append(want, id)
					}
				}
				if got := ids(both); !reflect.DeepEqual(got, want) {
					t.Errorf("(%s, %s) = %v, want %v", genre, q, got, want)
				}
			}
		}
	})

	t.Run("negative pagination", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))

		if _, err := repo.Paginated(-1, 0); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for negative limit, got %v", err)
		}
		if _, err := repo.ByGenre("Drama", 10, -10); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for negative offset, got %v", err)
		}
	})

	t.Run("ByID not found", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))

		if _, err := repo.ByID(42); !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
	})

	t.Run("Wishlist", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))
		seedCatalog(t, repo)

		if err := repo.SetWishlist(3, true); err != nil {
			t.Fatalf("failed to set wishlist: %v", err)
		}
		if err := repo.SetWishlist(1, true); err != nil {
			t.Fatalf("failed to set wishlist: %v", err)
		}

		if ok, _ := repo.IsWishlisted(3); !ok {
			t.Error("expected movie 3 to be wishlisted")
		}
		if n, _ := repo.WishlistCount(); n != 2 {
			t.Errorf("expected wishlist count 2, got %d", n)
		}

		rows, _ := repo.Wishlist()
		if got := ids(rows); !reflect.DeepEqual(got, []int{3, 1}) {
			t.Errorf("expected [3 1], got %v", got)
		}
		if len(rows[0].Genres()) != 2 {
			t.Errorf("expected wishlist rows to carry genres, got %v", rows[0].Genres())
		}

		if got, _ := repo.WishlistedIDs(); !reflect.DeepEqual(got, []int{1, 3}) {
			t.Errorf("expected [1 3], got %v", got)
		}

		if err := repo.SetWishlist(3, false); err != nil {
			t.Fatalf("failed to clear wishlist: %v", err)
		}
		if ok, _ := repo.IsWishlisted(3); ok {
			t.Error("expected movie 3 to be cleared")
		}
		if n, _ := repo.WishlistCount(); n != 1 {
			t.Errorf("expected wishlist count 1, got %d", n)
		}
	})

	t.Run("SetWishlist unknown id is a no-op", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))
		seedCatalog(t, repo)

		if err := repo.SetWishlist(999, true); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok, _ := repo.IsWishlisted(999); ok {
			t.Error("unknown id should not be wishlisted")
		}
		if n, _ := repo.Count(); n != 6 {
			t.Errorf("expected no rows created, got %d", n)
		}
	})

	t.Run("concurrent reads during writes", func(t *testing.T) {
		repo := NewMovieRepository(setupTestDB(t))
		seedCatalog(t, repo)

		var wg sync.WaitGroup
		errs := make(chan error, 40)
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func(id int) {
				defer wg.Done()
				errs <- repo.SetWishlist(id%6+1, id%2 == 0)
			}(i)
			go func() {
				defer wg.Done()
				_, err := repo.Paginated(10, 0)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}
	})
}

func TestGenreRepository(t *testing.T) {
	t.Run("All keeps insertion order", func(t *testing.T) {
		repo := NewGenreRepository(setupTestDB(t))

		if err := repo.InsertAll([]string{"Drama", "Action", "Comedy"}); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}
		if err := repo.InsertAll([]string{"Action", "Western", "drama"}); err != nil {
			t.Fatalf("failed to insert: %v", err)
		}

		got, err := repo.All()
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		want := []string{"Drama", "Action", "Comedy", "Western", "drama"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("All on empty store", func(t *testing.T) {
		repo := NewGenreRepository(setupTestDB(t))

		got, err := repo.All()
		if err != nil || got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %v (%v)", got, err)
		}
	})
}

func TestSyncStateRepository(t *testing.T) {
	repo := NewSyncStateRepository(setupTestDB(t))

	state, err := repo.LastSynced()
	if err != nil || state != nil {
		t.Fatalf("expected no state, got %+v (%v)", state, err)
	}

	first := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.MarkSynced(models.SyncState{RunID: "a", SyncedAt: first, MovieCount: 2, GenreCount: 3}); err != nil {
		t.Fatalf("failed to mark: %v", err)
	}
	second := first.Add(time.Hour)
	if err := repo.MarkSynced(models.SyncState{RunID: "b", SyncedAt: second, MovieCount: 5, GenreCount: 4}); err != nil {
		t.Fatalf("failed to mark again: %v", err)
	}

	state, err = repo.LastSynced()
	if err != nil {
		t.Fatalf("failed to read state: %v", err)
	}
	if state.RunID != "b" || state.MovieCount != 5 || !state.SyncedAt.Equal(second) {
		t.Errorf("unexpected state %+v", state)
	}
}

func TestStore(t *testing.T) {
	t.Run("repositories share one writer lock", func(t *testing.T) {
		store := NewStore(setupTestDB(t))

		if store.Movies.mu != store.Genres.mu || store.Movies.mu != store.SyncState.mu {
			t.Fatal("expected all repositories to share the same mutex")
		}
	})

	t.Run("a held writer lock blocks every repository", func(t *testing.T) {
		store := NewStore(setupTestDB(t))

		store.Movies.mu.Lock()
		done := make(chan error, 1)
		go func() {
			done <- store.Genres.InsertAll([]string{"Drama"})
		}()

		select {
		case err := <-done:
			t.Fatalf("expected genre insert to wait for the writer lock, got %v", err)
		case <-time.After(50 * time.Millisecond):
		}

		store.Movies.mu.Unlock()
		if err := <-done; err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("standalone repositories lock independently", func(t *testing.T) {
		db := setupTestDB(t)
		if NewMovieRepository(db).mu == NewGenreRepository(db).mu {
			t.Error("expected separate mutexes outside a Store")
		}
	})
}
