package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	CheckLocal Phase = iota
	FetchRemote
	StoreGenres
	StoreMovies
	SyncDone
	PosterDownload
)

func (p Phase) String() string {
	switch p {
	case CheckLocal:
		return "check_local"
	case FetchRemote:
		return "fetch_remote"
	case StoreGenres:
		return "store_genres"
	case StoreMovies:
		return "store_movies"
	case SyncDone:
		return "sync_done"
	case PosterDownload:
		return "download_posters"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func checkLocalUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckLocal,
		Step:    1,
		Total:   4,
		Message: fmt.Sprintf("Local store has %d movies", count),
		Data:    count,
	}
}

func fetchRemoteUpdate(url string) ProgressUpdate {
	msg := "Fetching remote catalog..."
	if url != "" {
		msg = fmt.Sprintf("Fetching remote catalog (%s)...", url)
	}
	return ProgressUpdate{Phase: FetchRemote, Step: 2, Total: 4, Message: msg}
}

func storeMoviesUpdate(n int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StoreMovies,
		Step:    4,
		Total:   4,
		Message: fmt.Sprintf("Storing %d movies...", n),
	}
}

func storeGenresUpdate(n int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StoreGenres,
		Step:    3,
		Total:   4,
		Message: fmt.Sprintf("Storing %d genres...", n),
	}
}

func syncDoneUpdate(report SyncReport) ProgressUpdate {
	msg := fmt.Sprintf("✓ Synced %d movies and %d genres", report.MovieCount, report.GenreCount)
	if report.Skipped {
		msg = fmt.Sprintf("✓ Local catalog is current (%d movies)", report.MovieCount)
	}
	return ProgressUpdate{Phase: SyncDone, Step: 4, Total: 4, Message: msg, Data: report}
}

func posterDoneUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PosterDownload,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, title),
	}
}

func posterFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PosterDownload,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}
