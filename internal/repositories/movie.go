package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
)

const movieColumns = `id, title, year, runtime, director, actors, plot, poster_url, in_wishlist`

const movieOrder = ` ORDER BY year DESC, id ASC`

const (
	genreFilter = `id IN (SELECT movie_id FROM movie_genres WHERE genre = ?)`
	titleFilter = `LOWER(title) LIKE '%' || LOWER(?) || '%' ESCAPE '\'`
)

// MovieRepository implements [models.MovieStore] over SQLite.
//
// Movie rows are upserted by sync and only ever mutated afterwards by [MovieRepository.SetWishlist].
type MovieRepository struct {
	db *sql.DB
	mu *sync.Mutex
}

// NewMovieRepository creates a new MovieRepository with the given database connection
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db, mu: &sync.Mutex{}}
}

// Count returns the number of stored movies
func (r *MovieRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM movies").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}

// InsertAll upserts every movie and replaces its genre rows in one transaction.
//
// A record whose id is already stored replaces the stored payload, wishlist flag included.
// Within one batch the last record for an id wins. Nothing is written if any record is invalid.
func (r *MovieRepository) InsertAll(movies []*models.PersistedMovie) error {
	if len(movies) == 0 {
		return nil
	}
	for _, m := range movies {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert, err := tx.Prepare(`
		INSERT INTO movies (` + movieColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			year = excluded.year,
			runtime = excluded.runtime,
			director = excluded.director,
			actors = excluded.actors,
			plot = excluded.plot,
			poster_url = excluded.poster_url,
			in_wishlist = excluded.in_wishlist
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare movie insert: %w", err)
	}
	defer upsert.Close()

	clearGenres, err := tx.Prepare("DELETE FROM movie_genres WHERE movie_id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare genre cleanup: %w", err)
	}
	defer clearGenres.Close()

	addGenre, err := tx.Prepare("INSERT INTO movie_genres (movie_id, position, genre) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare genre insert: %w", err)
	}
	defer addGenre.Close()

	for _, m := range movies {
		_, err := upsert.Exec(
			m.ID(),
			m.Title(),
			m.Year(),
			m.Runtime(),
			m.Director(),
			m.Actors(),
			m.Plot(),
			m.PosterURL(),
			m.InWishlist(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert movie %d: %w", m.ID(), err)
		}

		if _, err := clearGenres.Exec(m.ID()); err != nil {
			return fmt.Errorf("failed to clear genres of movie %d: %w", m.ID(), err)
		}
		for pos, g := range m.Genres() {
			if _, err := addGenre.Exec(m.ID(), pos, g); err != nil {
				return fmt.Errorf("failed to insert genre %q of movie %d: %w", g, m.ID(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit movies: %w", err)
	}
	return nil
}

// Paginated lists every movie.
func (r *MovieRepository) Paginated(limit, offset int) ([]*models.PersistedMovie, error) {
	return r.list("", nil, limit, offset)
}

// ByGenre lists movies whose genre list contains genre exactly.
func (r *MovieRepository) ByGenre(genre string, limit, offset int) ([]*models.PersistedMovie, error) {
	return r.list(genreFilter, []any{genre}, limit, offset)
}

// ByTitleQuery lists movies whose title contains query, ignoring case.
// Wildcard characters in query match themselves.
func (r *MovieRepository) ByTitleQuery(query string, limit, offset int) ([]*models.PersistedMovie, error) {
	return r.list(titleFilter, []any{escapeLike(query)}, limit, offset)
}

// ByGenreAndQuery applies the genre and title filters together.
func (r *MovieRepository) ByGenreAndQuery(genre, query string, limit, offset int) ([]*models.PersistedMovie, error) {
	return r.list(genreFilter+" AND "+titleFilter, []any{genre, escapeLike(query)}, limit, offset)
}

// ByID retrieves one movie, returning [shared.ErrMovieNotFound] when absent.
func (r *MovieRepository) ByID(id int) (*models.PersistedMovie, error) {
	row := r.db.QueryRow("SELECT "+movieColumns+" FROM movies WHERE id = ?", id)
	movie, err := r.scanOne(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", shared.ErrMovieNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachGenres([]*models.PersistedMovie{movie}); err != nil {
		return nil, err
	}
	return movie, nil
}

// SetWishlist sets the wishlist flag. Unknown ids are ignored.
func (r *MovieRepository) SetWishlist(id int, flag bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec("UPDATE movies SET in_wishlist = ? WHERE id = ?", flag, id); err != nil {
		return fmt.Errorf("failed to update wishlist for movie %d: %w", id, err)
	}
	return nil
}

// IsWishlisted reports whether the movie exists and is flagged.
func (r *MovieRepository) IsWishlisted(id int) (bool, error) {
	var flagged bool
	err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM movies WHERE id = ? AND in_wishlist = 1)", id).Scan(&flagged)
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist for movie %d: %w", id, err)
	}
	return flagged, nil
}

// Wishlist lists every flagged movie.
func (r *MovieRepository) Wishlist() ([]*models.PersistedMovie, error) {
	rows, err := r.db.Query("SELECT " + movieColumns + " FROM movies WHERE in_wishlist = 1" + movieOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to query wishlist: %w", err)
	}
	return r.collect(rows)
}

// WishlistCount counts flagged movies.
func (r *MovieRepository) WishlistCount() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM movies WHERE in_wishlist = 1").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count wishlist: %w", err)
	}
	return n, nil
}

// WishlistedIDs lists the ids of flagged movies in ascending order.
func (r *MovieRepository) WishlistedIDs() ([]int, error) {
	rows, err := r.db.Query("SELECT id FROM movies WHERE in_wishlist = 1 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query wishlist ids: %w", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// list runs a filtered, ordered page query. where may be empty.
func (r *MovieRepository) list(where string, args []any, limit, offset int) ([]*models.PersistedMovie, error) {
	if err := checkPage(limit, offset); err != nil {
		return nil, err
	}

	query := "SELECT " + movieColumns + " FROM movies"
	if where != "" {
		query += " WHERE " + where
	}
	query += movieOrder + " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	return r.collect(rows)
}

// collect scans and closes rows, then loads each movie's genres.
func (r *MovieRepository) collect(rows *sql.Rows) ([]*models.PersistedMovie, error) {
	defer rows.Close()

	movies := []*models.PersistedMovie{}
	for rows.Next() {
		movie, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movies: %w", err)
	}
	rows.Close()

	if err := r.attachGenres(movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// attachGenres loads the ordered genre lists of movies with one query.
func (r *MovieRepository) attachGenres(movies []*models.PersistedMovie) error {
	if len(movies) == 0 {
		return nil
	}

	byID := make(map[int]*models.PersistedMovie, len(movies))
	args := make([]any, 0, len(movies))
	for _, m := range movies {
		m.SetGenres([]string{})
		byID[m.ID()] = m
		args = append(args, m.ID())
	}

	query := "SELECT movie_id, genre FROM movie_genres WHERE movie_id IN (" + placeholders(len(args)) + ") ORDER BY movie_id, position"
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query movie genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    int
			genre string
		)
		if err := rows.Scan(&id, &genre); err != nil {
			return fmt.Errorf("failed to scan movie genre: %w", err)
		}
		if m, ok := byID[id]; ok {
			m.SetGenres(append(m.Genres(), genre))
		}
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *MovieRepository) scan(s scanner) (*models.PersistedMovie, error) {
	var m models.Movie
	err := s.Scan(
		&m.ID,
		&m.Title,
		&m.Year,
		&m.Runtime,
		&m.Director,
		&m.Actors,
		&m.Plot,
		&m.PosterURL,
		&m.InWishlist,
	)
	if err != nil {
		return nil, err
	}
	return models.NewPersistedMovie(m), nil
}

// scanOne scans a single row from QueryRow
func (r *MovieRepository) scanOne(row *sql.Row) (*models.PersistedMovie, error) {
	movie, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan movie: %w", err)
	}
	return movie, nil
}

// scanRow scans a row from Query results
func (r *MovieRepository) scanRow(rows *sql.Rows) (*models.PersistedMovie, error) {
	movie, err := r.scan(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan movie: %w", err)
	}
	return movie, nil
}
