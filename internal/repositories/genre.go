package repositories

import (
	"database/sql"
	"fmt"
	"sync"
)

// GenreRepository implements [models.GenreStore] over SQLite.
//
// Names are stored verbatim; "Drama" and "drama" are different genres.
type GenreRepository struct {
	db *sql.DB
	mu *sync.Mutex
}

// NewGenreRepository creates a new GenreRepository with the given database connection
func NewGenreRepository(db *sql.DB) *GenreRepository {
	return &GenreRepository{db: db, mu: &sync.Mutex{}}
}

// InsertAll stores names in one transaction. A name already present keeps its original position.
func (r *GenreRepository) InsertAll(names []string) error {
	if len(names) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO genres (name) VALUES (?) ON CONFLICT(name) DO NOTHING")
	if err != nil {
		return fmt.Errorf("failed to prepare genre insert: %w", err)
	}
	defer stmt.Close()

	for _, name := range names {
		if _, err := stmt.Exec(name); err != nil {
			return fmt.Errorf("failed to insert genre %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit genres: %w", err)
	}
	return nil
}

// All returns every genre name in insertion order.
func (r *GenreRepository) All() ([]string, error) {
	rows, err := r.db.Query("SELECT name FROM genres ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating genres: %w", err)
	}
	return names, nil
}
