// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// formatFlag selects the rendering of movie listings.
func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: table, csv, md, json or txt",
		Value:   "table",
	}
}

// setupCommand handles setup operations for the configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "rollback",
				Usage: "Roll back the most recent schema migration (drops its tables)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm dropping the cached catalog",
					},
				},
				Action: r.SetupRollback,
			},
		},
	}
}

// syncCommand copies the remote catalog into the local store.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Download the movie catalog into the local store",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Fetch the remote catalog even when the refresh policy would skip it",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the sync report as JSON",
			},
		},
		Action: r.Sync,
	}
}

// moviesCommand handles movie listings and details.
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the local catalog",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List one page of movies, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "genre",
						Aliases: []string{"g"},
						Usage:   "Only movies tagged with this genre",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Only movies whose title contains this text",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Page size (default: browse.page_size)",
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Number of movies to skip",
					},
					formatFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the export to this file instead of stdout",
					},
				},
				Action: r.MoviesList,
			},
			{
				Name:  "show",
				Usage: "Show every field of one movie",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the poster in the default browser",
					},
				},
				Action: r.MoviesShow,
			},
		},
	}
}

// genresCommand lists catalog genres.
func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "genres",
		Usage: "List catalog genres",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Genres,
	}
}

// wishlistCommand handles wishlist operations.
func wishlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "wishlist",
		Aliases: []string{"wl"},
		Usage:   "Manage the wishlist",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List wishlisted movies",
				Flags: []cli.Flag{
					formatFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the export to this file instead of stdout",
					},
				},
				Action: r.WishlistList,
			},
			{
				Name:      "add",
				Usage:     "Add a movie to the wishlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.WishlistAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a movie from the wishlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.WishlistRemove,
			},
			{
				Name:   "count",
				Usage:  "Print the number of wishlisted movies",
				Action: r.WishlistCount,
			},
		},
	}
}

// posterCommand downloads a single poster.
func posterCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "poster",
		Usage:     "Download the poster of one movie",
		Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: {id}-{title}.jpg)",
			},
		},
		Action: r.Poster,
	}
}

// postersCommand downloads posters in bulk.
func postersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "posters",
		Usage: "Download posters for the whole catalog or the wishlist",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "wishlist",
				Usage: "Only wishlisted movies",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory",
				Value:   "posters",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent downloads (max 10)",
				Value: 4,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Requests per second",
				Value: 5,
			},
		},
		Action: r.Posters,
	}
}

// cacheCommand inspects the HTTP response cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the catalog response cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cached responses",
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Drop cached responses so the next sync downloads the full catalog",
				Action: r.CacheClear,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive movie browser",
		Action:  r.TUI,
	}
}

// serveCommand starts the JSON API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog over a JSON HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default: server.port)",
			},
			&cli.BoolFlag{
				Name:  "sync",
				Usage: "Sync the catalog before serving",
				Value: true,
			},
		},
		Action: r.Serve,
	}
}
