package browse

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviex/internal/catalog"
	"github.com/desertthunder/moviex/internal/services"
	"github.com/desertthunder/moviex/internal/shared"
)

// StartupState is a snapshot of a [Startup].
type StartupState struct {
	FirstLaunch    bool
	NoConnectivity bool
	Loading        bool
	Synced         bool
	Err            *shared.Failure
}

// Startup performs the launch check: an empty store with no connectivity cannot be
// populated, so the caller is told to offer a retry instead of syncing.
type Startup struct {
	repo    catalog.Repository
	checker services.ConnectivityChecker
	logger  *log.Logger

	mu    sync.Mutex
	state StartupState
}

func NewStartup(repo catalog.Repository, checker services.ConnectivityChecker, logger *log.Logger) *Startup {
	if logger == nil {
		logger = log.Default()
	}
	return &Startup{repo: repo, checker: checker, logger: logger}
}

// Check counts local movies and syncs unless the store is empty and offline.
func (s *Startup) Check(ctx context.Context) StartupState {
	count, err := s.repo.TotalMovieCount(ctx)
	if err != nil {
		return s.update(func(st *StartupState) { st.Err = shared.AsFailure(err) })
	}

	first := count == 0
	s.update(func(st *StartupState) { st.FirstLaunch = first })

	if first && !s.checker.HasConnectivity(ctx) {
		s.logger.Warn("empty catalog and no connectivity")
		return s.update(func(st *StartupState) {
			st.NoConnectivity = true
			st.Loading = false
		})
	}
	return s.sync(ctx)
}

// Retry syncs again, or re-reports missing connectivity.
func (s *Startup) Retry(ctx context.Context) StartupState {
	if !s.checker.HasConnectivity(ctx) {
		return s.update(func(st *StartupState) { st.NoConnectivity = true })
	}
	return s.sync(ctx)
}

func (s *Startup) sync(ctx context.Context) StartupState {
	s.update(func(st *StartupState) {
		st.Loading = true
		st.NoConnectivity = false
		st.Err = nil
	})

	result := s.repo.SyncIfNeeded(ctx)
	switch {
	case result.IsSuccess():
		return s.update(func(st *StartupState) {
			st.Synced = true
			st.Loading = false
		})
	case result.IsError():
		return s.update(func(st *StartupState) {
			st.Err = result.Failure()
			st.Loading = false
		})
	default:
		// another run owns the sync; its outcome is not ours to report
		return s.State()
	}
}

func (s *Startup) State() StartupState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Startup) update(fn func(*StartupState)) StartupState {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	return s.state
}
