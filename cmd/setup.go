package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/moviex/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase writes a config file when none exists, then creates the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else if config, err := shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load created config, using defaults", "error", err)
		} else {
			r.config = config
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	if err := r.open(); err != nil {
		return err
	}

	count, err := r.catalog.TotalMovieCount(ctx)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database ready: %s (%d movies)\n", r.config.Database.Path, count)
	if count == 0 {
		r.writePlain("Run 'moviex sync' to download the catalog\n")
	}
	return nil
}

// SetupRollback reverts the latest applied migration without running pending ones first.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: rollback drops cached data; pass --yes to confirm", shared.ErrMissingArgument)
	}

	db := r.db
	if db == nil {
		opened, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return err
		}
		defer opened.Close()
		db = opened
	}

	applied, err := shared.AppliedVersions(db)
	if err != nil {
		return err
	}
	latest := 0
	for v := range applied {
		latest = max(latest, v)
	}

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}

	r.logger.Info("migration rolled back", "version", latest, "path", r.config.Database.Path)
	r.writePlain("✓ Rolled back migration %04d\n", latest)
	return nil
}
