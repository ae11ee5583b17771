package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/moviex/internal/cache"
	"github.com/urfave/cli/v3"
)

// openCache opens the configured response cache without touching the database.
func (r *Runner) openCache() (*cache.ResponseCache, error) {
	path := r.config.Catalog.CachePath
	if path == "" {
		return nil, fmt.Errorf("response cache is disabled (catalog.cache_path is empty)")
	}
	return cache.Open(path)
}

// CacheStats prints the number and size of cached catalog responses.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	rc, err := r.openCache()
	if err != nil {
		return err
	}
	defer rc.Close()

	stats, err := rc.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	r.writePlain("Cache: %s\n", r.config.Catalog.CachePath)
	r.writePlain("Entries: %d\n", stats.Entries)
	r.writePlain("Size: %d bytes\n", stats.Bytes)
	return nil
}

// CacheClear drops every cached response.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	rc, err := r.openCache()
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := rc.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	r.logger.Info("response cache cleared", "path", r.config.Catalog.CachePath)
	return r.writePlain("✓ Cache cleared\n")
}
