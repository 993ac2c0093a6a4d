package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/thoughttree/pkg/cache"
	"github.com/matzehuels/thoughttree/pkg/config"
	"github.com/matzehuels/thoughttree/pkg/errors"
	"github.com/matzehuels/thoughttree/pkg/pipeline"
	"github.com/matzehuels/thoughttree/pkg/server"
	"github.com/matzehuels/thoughttree/pkg/session"
	"github.com/matzehuels/thoughttree/pkg/treestore"
)

const (
	defaultSweepInterval = 5 * time.Minute
	shutdownTimeout      = 10 * time.Second
)

type serveOpts struct {
	addr          string
	sessionStore  string
	treeStore     string
	sweepInterval time.Duration
	noCache       bool
}

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve trees, layouts and viewing sessions over HTTP",
		Long: `Serve trees, layouts and viewing sessions over HTTP.

Session state (collapsed nodes and viewport) lives in memory, on disk or in
Redis; stored trees live in memory, on disk or in MongoDB. Backends are
chosen in the [server] section of the config file and can be overridden
with flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.sessionStore, "session-store", "", "session backend: memory, file, redis")
	cmd.Flags().StringVar(&opts.treeStore, "tree-store", "", "tree backend: memory, file, mongo")
	cmd.Flags().DurationVar(&opts.sweepInterval, "sweep-interval", defaultSweepInterval, "how often expired sessions are removed")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	_ = cmd.RegisterFlagCompletionFunc("session-store", fixedChoices(config.StoreMemory, config.StoreFile, config.StoreRedis))
	_ = cmd.RegisterFlagCompletionFunc("tree-store", fixedChoices(config.StoreMemory, config.StoreFile, config.StoreMongo))

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.sessionStore != "" {
		cfg.Server.SessionStore = opts.sessionStore
	}
	if opts.treeStore != "" {
		cfg.Server.TreeStore = opts.treeStore
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if opts.sweepInterval <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "sweep interval must be positive, got %s", opts.sweepInterval)
	}

	sessions, err := c.openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	trees, err := c.openTreeStore(ctx, cfg)
	if err != nil {
		sessions.Close()
		return err
	}
	store, err := c.newCache(ctx, cfg, opts.noCache)
	if err != nil {
		sessions.Close()
		trees.Close()
		return err
	}
	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, "http"), c.Logger)

	srv := server.New(trees, sessions,
		server.WithConfig(cfg),
		server.WithLogger(c.Logger),
		server.WithRunner(runner),
	)
	defer srv.Close()

	httpSrv := srv.NewHTTPServer()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go srv.RunSweeper(sweepCtx, opts.sweepInterval)

	errc := make(chan error, 1)
	go func() {
		errc <- httpSrv.ListenAndServe()
	}()

	printSuccess("Listening on %s", StyleHighlight.Render(cfg.Server.Addr))
	printKeyValue("Sessions", cfg.Server.SessionStore)
	printKeyValue("Trees", cfg.Server.TreeStore)

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return ctx.Err()
}

// openSessionStore connects the configured session backend.
func (c *CLI) openSessionStore(ctx context.Context, cfg config.Config) (session.Store, error) {
	switch cfg.Server.SessionStore {
	case config.StoreRedis:
		var store *session.RedisStore
		err := cache.RetryWithBackoff(ctx, func() error {
			s, err := session.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
				session.WithPrefix(cfg.Redis.KeyPrefix+"session:"),
				session.WithTTL(cfg.Server.SessionTTL.Duration),
			)
			if err != nil {
				return cache.Retryable(err)
			}
			store = s
			return nil
		})
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("session store", "backend", "redis", "addr", cfg.Redis.Addr)
		return store, nil
	case config.StoreFile:
		dir, err := cfg.DataDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "data dir")
		}
		store, err := session.NewFileStore(filepath.Join(dir, "sessions"))
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("session store", "backend", "file", "dir", store.Path())
		return store, nil
	default:
		return session.NewMemoryStore(), nil
	}
}

// openTreeStore connects the configured tree backend.
func (c *CLI) openTreeStore(ctx context.Context, cfg config.Config) (treestore.Store, error) {
	switch cfg.Server.TreeStore {
	case config.StoreMongo:
		var store *treestore.MongoStore
		err := cache.RetryWithBackoff(ctx, func() error {
			s, err := treestore.DialMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
			if err != nil {
				return cache.Retryable(err)
			}
			store = s
			return nil
		})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			store.Close()
			return nil, err
		}
		c.Logger.Debug("tree store", "backend", "mongo", "database", cfg.Mongo.Database)
		return store, nil
	case config.StoreFile:
		dir, err := cfg.DataDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "data dir")
		}
		store, err := treestore.NewFileStore(filepath.Join(dir, "trees"))
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("tree store", "backend", "file", "dir", store.Path())
		return store, nil
	default:
		return treestore.NewMemoryStore(), nil
	}
}

// dialRedis connects to the configured Redis server, retrying while it
// comes up.
func dialRedis(ctx context.Context, cfg config.Redis) (*backend.Client, error) {
	client := backend.NewClient(&backend.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	err := cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrUnavailable, err))
		}
		return nil
	})
	if err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect redis %s", cfg.Addr)
	}
	return client, nil
}
