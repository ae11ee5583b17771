package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/moviex/internal/formatter"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/tasks"
	"github.com/urfave/cli/v3"
)

// posterPageSize is the page size used to walk the whole catalog.
const posterPageSize = 100

// Poster downloads one movie's poster to a file.
func (r *Runner) Poster(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	movie, err := r.catalog.MovieByID(ctx, id)
	if err != nil {
		return err
	}
	if movie.PosterURL == "" {
		return fmt.Errorf("%w: movie %d has no poster", shared.ErrInvalidArgument, id)
	}

	data, err := formatter.DownloadPoster(ctx, r.httpClient, movie.PosterURL)
	if err != nil {
		return err
	}

	path := cmd.String("output")
	if path == "" {
		path = formatter.PosterFilename(*movie)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write poster: %w", err)
	}

	r.logger.Debug("poster saved", "id", id, "bytes", len(data))
	return r.writePlain("✓ Saved poster for %q to %s\n", movie.Title, path)
}

// Posters downloads posters for every movie, or only the wishlist, into a directory.
func (r *Runner) Posters(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	var movies []models.Movie
	var err error
	if cmd.Bool("wishlist") {
		movies, err = r.catalog.Wishlist(ctx)
	} else {
		movies, err = r.allMovies(ctx)
	}
	if err != nil {
		return err
	}
	if len(movies) == 0 {
		return r.writePlain("No movies to download posters for\n")
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			r.writePlain("  [%d/%d] %s\n", u.Step, u.Total, u.Message)
		}
	}()

	result, err := tasks.DownloadPosters(ctx, progress, movies, tasks.PosterOpts{
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
		Client:     r.httpClient,
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("✓ Saved %d of %d posters to %s", result.Saved, result.Total, result.OutputDir)
	if result.Skipped > 0 {
		r.writePlain("  %d movies have no poster\n", result.Skipped)
	}
	for _, res := range result.Results {
		if res.Error != nil {
			r.writePlain("  ✗ %s: %v\n", res.Title, res.Error)
		}
	}
	return nil
}

// allMovies walks every page of the catalog.
func (r *Runner) allMovies(ctx context.Context) ([]models.Movie, error) {
	var all []models.Movie
	for offset := 0; ; offset += posterPageSize {
		page, err := r.catalog.MoviesPaginated(ctx, posterPageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return all, nil
		}
		all = append(all, page...)
	}
}
