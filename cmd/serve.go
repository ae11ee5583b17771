package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/moviex/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the JSON API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := int(cmd.Int("port")); port != 0 {
		cfg.Port = port
	}

	if cmd.Bool("sync") {
		if result := r.catalog.SyncIfNeeded(ctx); result.IsError() {
			// the API can still serve whatever is stored
			r.logger.Warn("initial sync failed", "err", result.Err())
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := server.NewRouter(r.catalog, cfg, r.pageSize(), r.logger)
	srv := server.NewServer(cfg.Addr(), handler, r.logger)

	r.writePlain("Serving on http://%s\n", srv.Addr())
	return srv.Run(ctx)
}
