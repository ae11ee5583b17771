package tasks

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/desertthunder/moviex/internal/formatter"
	"github.com/desertthunder/moviex/internal/models"
	"golang.org/x/time/rate"
)

// PosterOpts contains configuration for bulk poster downloads.
type PosterOpts struct {
	OutputDir  string       // Destination directory (created if missing)
	NumWorkers int          // Concurrent workers (default: 4, max: 10)
	RateLimit  float64      // Requests per second (default: 5)
	Client     *http.Client // HTTP client (default: http.DefaultClient)
}

// PosterResult is the outcome for one movie.
type PosterResult struct {
	MovieID int    `json:"movie_id"`
	Title   string `json:"title"`
	File    string `json:"file,omitempty"`
	Error   error  `json:"-"`
}

// PosterBatchResult summarizes a bulk download.
type PosterBatchResult struct {
	Total     int            `json:"total"`
	Saved     int            `json:"saved"`
	Failed    int            `json:"failed"`
	Skipped   int            `json:"skipped"`
	OutputDir string         `json:"output_dir"`
	Results   []PosterResult `json:"results"`
}

// DownloadPosters fetches the poster of every movie into opts.OutputDir.
//
// Requests are spread over a worker pool and throttled by a shared rate limiter.
// Movies without a poster URL are skipped; individual failures do not stop the batch.
func DownloadPosters(ctx context.Context, prog chan<- ProgressUpdate, movies []models.Movie, opts PosterOpts) (*PosterBatchResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = "posters"
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &PosterBatchResult{OutputDir: opts.OutputDir, Results: []PosterResult{}}

	var queue []models.Movie
	for _, m := range movies {
		if m.PosterURL == "" {
			result.Skipped++
			continue
		}
		queue = append(queue, m)
	}
	result.Total = len(queue)

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan models.Movie)
	results := make(chan PosterResult, len(queue))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go posterWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for _, m := range queue {
			select {
			case <-ctx.Done():
				return
			case jobs <- m:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)
		if res.Error == nil {
			result.Saved++
			sendProgress(prog, posterDoneUpdate(completed, result.Total, res.Title))
		} else {
			result.Failed++
			sendProgress(prog, posterFailedUpdate(completed, result.Total, res.Title, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func posterWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan models.Movie,
	results chan<- PosterResult,
	opts PosterOpts,
) {
	defer wg.Done()

	for m := range jobs {
		res := PosterResult{MovieID: m.ID, Title: m.Title}

		if err := limiter.Wait(ctx); err != nil {
			res.Error = err
			results <- res
			continue
		}

		data, err := formatter.DownloadPoster(ctx, opts.Client, m.PosterURL)
		if err != nil {
			res.Error = err
			results <- res
			continue
		}

		path := filepath.Join(opts.OutputDir, formatter.PosterFilename(m))
		if err := os.WriteFile(path, data, 0644); err != nil {
			res.Error = fmt.Errorf("failed to write poster: %w", err)
		} else {
			res.File = path
		}
		results <- res
	}
}
