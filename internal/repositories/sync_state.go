package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/moviex/internal/models"
)

// SyncStateRepository implements [models.SyncStateStore] with a single-row table.
type SyncStateRepository struct {
	db *sql.DB
	mu *sync.Mutex
}

// NewSyncStateRepository creates a new SyncStateRepository with the given database connection
func NewSyncStateRepository(db *sql.DB) *SyncStateRepository {
	return &SyncStateRepository{db: db, mu: &sync.Mutex{}}
}

// LastSynced returns the last recorded sync, or nil when none has completed.
func (r *SyncStateRepository) LastSynced() (*models.SyncState, error) {
	var s models.SyncState
	err := r.db.QueryRow(
		"SELECT run_id, synced_at, movie_count, genre_count FROM sync_state WHERE id = 1",
	).Scan(&s.RunID, &s.SyncedAt, &s.MovieCount, &s.GenreCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sync state: %w", err)
	}
	return &s, nil
}

// MarkSynced replaces the recorded sync state.
func (r *SyncStateRepository) MarkSynced(state models.SyncState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO sync_state (id, run_id, synced_at, movie_count, genre_count)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			run_id = excluded.run_id,
			synced_at = excluded.synced_at,
			movie_count = excluded.movie_count,
			genre_count = excluded.genre_count
	`
	_, err := r.db.Exec(query, state.RunID, state.SyncedAt.UTC(), state.MovieCount, state.GenreCount)
	if err != nil {
		return fmt.Errorf("failed to record sync state: %w", err)
	}
	return nil
}
