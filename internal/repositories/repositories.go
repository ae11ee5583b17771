// package repositories provides persistence layer implementations for the catalog store.
package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/moviex/internal/shared"
)

// Store bundles the repositories that share one database handle.
type Store struct {
	Movies    *MovieRepository
	Genres    *GenreRepository
	SyncState *SyncStateRepository
}

// NewStore creates every repository over db. Writes from all of them serialize on one mutex.
func NewStore(db *sql.DB) *Store {
	mu := &sync.Mutex{}
	return &Store{
		Movies:    &MovieRepository{db: db, mu: mu},
		Genres:    &GenreRepository{db: db, mu: mu},
		SyncState: &SyncStateRepository{db: db, mu: mu},
	}
}

// checkPage rejects negative pagination arguments.
func checkPage(limit, offset int) error {
	if limit < 0 {
		return fmt.Errorf("%w: limit must not be negative, got %d", shared.ErrInvalidArgument, limit)
	}
	if offset < 0 {
		return fmt.Errorf("%w: offset must not be negative, got %d", shared.ErrInvalidArgument, offset)
	}
	return nil
}

// likeEscaper makes LIKE wildcards in user input match literally (used with ESCAPE '\').
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
