package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sync runs the sync engine, printing progress as it arrives.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			if !asJSON {
				r.writePlain("  [%s] %s\n", u.Phase, u.Message)
			}
		}
	}()

	var result models.Result[tasks.SyncReport]
	if cmd.Bool("force") {
		result = r.engine.Refresh(ctx, progress)
	} else {
		result = r.engine.Run(ctx, progress)
	}
	close(progress)
	<-done

	switch {
	case result.IsError():
		return result.Err()
	case result.IsLoading():
		return fmt.Errorf("%w: another sync is running", shared.ErrSyncInProgress)
	}

	report, _ := result.Data()
	if asJSON {
		return r.writeJSON(report, true)
	}

	if report.Skipped {
		r.writePlain("✓ Catalog already cached (%d movies); use --force to refresh\n", report.MovieCount)
		return nil
	}

	r.writePlain("✓ Synced %d movies and %d genres in %s\n", report.MovieCount, report.GenreCount, report.Duration.Round(time.Millisecond))
	if report.Invalid > 0 {
		r.writePlain("⚠ Skipped %d invalid records\n", report.Invalid)
	}
	if report.Carried > 0 {
		r.writePlain("♥ Kept %d wishlisted movies\n", report.Carried)
	}
	return nil
}
