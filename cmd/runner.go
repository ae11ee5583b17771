package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviex/internal/cache"
	"github.com/desertthunder/moviex/internal/catalog"
	"github.com/desertthunder/moviex/internal/repositories"
	"github.com/desertthunder/moviex/internal/services"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/tasks"
	"github.com/urfave/cli/v3"
)

// connectivityTimeout bounds the reachability probe made before a first sync.
const connectivityTimeout = 3 * time.Second

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The store, sync engine and catalog facade are built on first use so that commands
// which never touch the database (cache, help) do not create one.
type Runner struct {
	config     *shared.Config
	configPath string
	db         *sql.DB
	ownsDB     bool
	store      *repositories.Store
	fetcher    services.CatalogFetcher
	respCache  *cache.ResponseCache
	checker    services.ConnectivityChecker
	engine     *tasks.SyncEngine
	catalog    *catalog.Service
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB
	Fetcher    services.CatalogFetcher
	Checker    services.ConnectivityChecker
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		db:         opts.DB,
		fetcher:    opts.Fetcher,
		checker:    opts.Checker,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, syncCommand, moviesCommand, genresCommand, wishlistCommand,
		posterCommand, postersCommand, cacheCommand, tuiCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config and applies the log level.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	config, err := shared.LoadConfigOrDefault(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config

	level, err := shared.ParseLogLevel(config.Logging.Level)
	if err != nil {
		return ctx, err
	}
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	return ctx, nil
}

// After releases whatever [Runner.open] acquired.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// SetLogger replaces the logger used by the runner and everything it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	if r.engine != nil {
		r.engine.SetLogger(l)
	}
}

// open wires the database, catalog client, sync engine and facade.
func (r *Runner) open() error {
	if r.catalog != nil {
		return nil
	}

	if r.db == nil {
		r.logger.Debug("opening database", "path", r.config.Database.Path)
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		r.db, r.ownsDB = db, true
	} else if err := shared.RunMigrations(r.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.store = repositories.NewStore(r.db)

	cc := r.config.Catalog
	if r.fetcher == nil {
		svc := services.NewCatalogService(cc.BaseURL, cc.Path, services.NewHTTPClient(cc.Timeout.Duration, cc.Token))
		svc.SetLogger(r.logger)
		if cc.UserAgent != "" {
			svc.SetUserAgent(cc.UserAgent)
		}
		if cc.CachePath != "" {
			rc, err := cache.Open(cc.CachePath)
			if err != nil {
				r.logger.Warn("response cache disabled", "path", cc.CachePath, "err", err)
			} else {
				svc.SetCache(rc)
				r.respCache = rc
			}
		}
		r.fetcher = svc
	}
	if r.checker == nil {
		r.checker = services.NewDialChecker(cc.URL(), connectivityTimeout)
	}

	engine := tasks.NewSyncEngine(r.store.Movies, r.store.Genres, r.fetcher)
	engine.SetStateStore(r.store.SyncState)
	engine.SetLogger(r.logger)
	engine.SetSource(cc.URL())
	if err := engine.SetPolicy(r.config.Sync.Policy, r.config.Sync.TTL.Duration); err != nil {
		return err
	}

	r.engine = engine
	r.catalog = catalog.NewService(r.store.Movies, r.store.Genres, engine, r.logger)
	return nil
}

// Close releases the response cache and any database the runner opened itself.
func (r *Runner) Close() error {
	var errs []error
	if r.respCache != nil {
		errs = append(errs, r.respCache.Close())
		r.respCache = nil
	}
	if r.db != nil && r.ownsDB {
		errs = append(errs, r.db.Close())
		r.db = nil
	}
	return errors.Join(errs...)
}

func (r *Runner) pageSize() int {
	if r.config.Browse.PageSize > 0 {
		return r.config.Browse.PageSize
	}
	return 10
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
