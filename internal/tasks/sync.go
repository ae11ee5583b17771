package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/services"
	"github.com/desertthunder/moviex/internal/shared"
)

// SyncStatus is the lifecycle state of a [SyncEngine].
type SyncStatus int

const (
	Idle SyncStatus = iota
	Syncing
	Synced
	Failed
)

func (s SyncStatus) String() string {
	switch s {
	case Idle:
		return "idle"
	case Syncing:
		return "syncing"
	case Synced:
		return "synced"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// SyncReport summarizes one sync run.
type SyncReport struct {
	RunID      string        `json:"run_id"`
	Skipped    bool          `json:"skipped"`
	MovieCount int           `json:"movie_count"`
	GenreCount int           `json:"genre_count"`
	Invalid    int           `json:"invalid"`
	Carried    int           `json:"carried_wishlist"`
	Duration   time.Duration `json:"duration"`
}

// SyncEngine copies the remote catalog into the local store.
//
// Under the cache-forever policy the remote is only contacted while the store is empty.
// Under the ttl policy a non-empty store is also refreshed once the last sync is older
// than the TTL; wishlist flags survive such refreshes. A failed run leaves the engine
// in [Failed] and may simply be run again.
type SyncEngine struct {
	movies models.MovieStore
	genres models.GenreStore
	state  models.SyncStateStore
	remote services.CatalogFetcher
	source string

	policy string
	ttl    time.Duration
	now    func() time.Time
	logger *log.Logger

	mu      sync.Mutex
	status  SyncStatus
	running bool
	last    *shared.Failure
}

// NewSyncEngine creates an engine using the cache-forever policy.
func NewSyncEngine(movies models.MovieStore, genres models.GenreStore, remote services.CatalogFetcher) *SyncEngine {
	return &SyncEngine{
		movies: movies,
		genres: genres,
		remote: remote,
		policy: shared.PolicyCacheForever,
		now:    time.Now,
		logger: log.Default(),
	}
}

// SetPolicy selects the refresh policy. Unknown names are rejected.
func (e *SyncEngine) SetPolicy(policy string, ttl time.Duration) error {
	switch policy {
	case shared.PolicyCacheForever:
	case shared.PolicyTTL:
		if ttl <= 0 {
			return fmt.Errorf("%w: ttl must be positive", shared.ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("%w: unknown sync policy %q", shared.ErrInvalidArgument, policy)
	}
	e.policy, e.ttl = policy, ttl
	return nil
}

// SetStateStore attaches sync bookkeeping. The ttl policy needs it to judge staleness.
func (e *SyncEngine) SetStateStore(s models.SyncStateStore) { e.state = s }

// SetLogger replaces the logger.
func (e *SyncEngine) SetLogger(l *log.Logger) {
	if l != nil {
		e.logger = l
	}
}

// SetSource names the remote in progress messages.
func (e *SyncEngine) SetSource(url string) { e.source = url }

// Status returns the current lifecycle state.
func (e *SyncEngine) Status() SyncStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// LastFailure returns the failure of the most recent failed run, or nil.
func (e *SyncEngine) LastFailure() *shared.Failure {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Run syncs according to the policy. A call made while another run is active returns a loading result.
func (e *SyncEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) models.Result[SyncReport] {
	return e.run(ctx, progress, false)
}

// Refresh fetches the remote catalog regardless of policy.
func (e *SyncEngine) Refresh(ctx context.Context, progress chan<- ProgressUpdate) models.Result[SyncReport] {
	return e.run(ctx, progress, true)
}

func (e *SyncEngine) run(ctx context.Context, progress chan<- ProgressUpdate, force bool) models.Result[SyncReport] {
	if !e.begin() {
		return models.InProgress[SyncReport]()
	}

	started := e.now()
	report := SyncReport{RunID: shared.GenerateID()}
	logger := shared.WithLogger(e.logger, "run", report.RunID[:8])

	count, err := e.movies.Count()
	if err != nil {
		return e.fail(logger, shared.StorageFailure(err))
	}
	sendProgress(progress, checkLocalUpdate(count))

	if !force {
		stale, err := e.needsRefresh(count)
		if err != nil {
			return e.fail(logger, shared.StorageFailure(err))
		}
		if !stale {
			report.Skipped = true
			report.MovieCount = count
			report.Duration = e.now().Sub(started)
			logger.Debug("sync skipped", "movies", count, "policy", e.policy)
			sendProgress(progress, syncDoneUpdate(report))
			return e.succeed(report)
		}
	}

	sendProgress(progress, fetchRemoteUpdate(e.source))
	catalog, err := e.remote.FetchCatalog(ctx)
	if err != nil {
		return e.fail(logger, shared.AsFailure(err))
	}

	carry := map[int]bool{}
	if count > 0 {
		ids, err := e.movies.WishlistedIDs()
		if err != nil {
			return e.fail(logger, shared.StorageFailure(err))
		}
		for _, id := range ids {
			carry[id] = true
		}
	}

	rows := make([]*models.PersistedMovie, 0, len(catalog.Movies))
	for _, rm := range catalog.Movies {
		row := models.NewPersistedMovie(rm.ToMovie())
		if err := row.Validate(); err != nil {
			report.Invalid++
			logger.Warn("skipping catalog record", "err", err)
			continue
		}
		if carry[row.ID()] {
			row.SetInWishlist(true)
			report.Carried++
		}
		rows = append(rows, row)
	}

	// Genres go first: the movie count gates later runs, so it must only become
	// non-zero once the genre list is stored.
	sendProgress(progress, storeGenresUpdate(len(catalog.Genres)))
	if err := e.genres.InsertAll(catalog.Genres); err != nil {
		return e.fail(logger, shared.StorageFailure(err))
	}

	sendProgress(progress, storeMoviesUpdate(len(rows)))
	if err := e.movies.InsertAll(rows); err != nil {
		return e.fail(logger, shared.StorageFailure(err))
	}

	report.MovieCount = len(rows)
	report.GenreCount = len(catalog.Genres)
	report.Duration = e.now().Sub(started)

	if e.state != nil {
		state := models.SyncState{
			RunID:      report.RunID,
			SyncedAt:   e.now(),
			MovieCount: report.MovieCount,
			GenreCount: report.GenreCount,
		}
		if err := e.state.MarkSynced(state); err != nil {
			logger.Warn("failed to record sync state", "err", err)
		}
	}

	logger.Info("catalog synced", "movies", report.MovieCount, "genres", report.GenreCount, "carried", report.Carried)
	sendProgress(progress, syncDoneUpdate(report))
	return e.succeed(report)
}

// needsRefresh applies the policy to a store holding count movies.
func (e *SyncEngine) needsRefresh(count int) (bool, error) {
	if count == 0 {
		return true, nil
	}
	if e.policy != shared.PolicyTTL || e.state == nil {
		return false, nil
	}

	last, err := e.state.LastSynced()
	if err != nil {
		return false, err
	}
	if last == nil {
		return true, nil
	}
	return e.now().Sub(last.SyncedAt) >= e.ttl, nil
}

func (e *SyncEngine) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return false
	}
	e.running = true
	e.status = Syncing
	return true
}

func (e *SyncEngine) succeed(report SyncReport) models.Result[SyncReport] {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	e.status = Synced
	e.last = nil
	return models.Succeeded(report)
}

func (e *SyncEngine) fail(logger *log.Logger, f *shared.Failure) models.Result[SyncReport] {
	logger.Error("sync failed", "err", f.Message, "code", f.Code, "cause", f.Cause)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	e.status = Failed
	e.last = f
	return models.Failed[SyncReport](f)
}
