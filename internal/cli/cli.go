// Package cli implements the thoughttree command-line interface.
//
// # Commands
//
//   - layout: compute the scene of a reasoning tree as JSON
//   - render: draw a tree to SVG, PNG, PDF, JSON or DOT
//   - view: explore a tree interactively in the terminal
//   - fetch: ask the move-selection service for a new tree
//   - serve: run the HTTP API
//   - cache: manage the render cache
//
// All commands accept --verbose (-v) for debug logging and --config to point
// at a TOML file other than the default.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/thoughttree/pkg/buildinfo"
	"github.com/matzehuels/thoughttree/pkg/cache"
	"github.com/matzehuels/thoughttree/pkg/config"
	"github.com/matzehuels/thoughttree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "thoughttree"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Thoughttree lays out and explores reasoning trees",
		Long:         `Thoughttree renders the tree of candidate moves produced by a move-selection service as a navigable diagram, in the terminal, as files, or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/thoughttree/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file, or the default one when present.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("config loaded", "path", c.configPath)
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	if reason, off := cache.DisabledReason(store); off {
		c.Logger.Debug("render cache off", "reason", reason)
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache opens the configured cache backend. A cache that cannot be
// opened is logged and replaced by a null cache; rendering never depends
// on it.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.Disabled("--no-cache"), nil
	}
	if !cfg.Cache.Enabled {
		return cache.Disabled("disabled in config"), nil
	}
	if cfg.Cache.Backend == config.StoreRedis {
		client, err := dialRedis(ctx, cfg.Redis)
		if err != nil {
			c.Logger.Warn("cache disabled", "err", err)
			return cache.Disabled("redis unreachable"), nil
		}
		return cache.NewRedisCache(client, cfg.Redis.KeyPrefix+"cache:"), nil
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.Disabled("no cache directory"), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutOptions builds pipeline options from the config and the shared
// tree flags.
func layoutOptions(cfg config.Config, f *treeFlags) pipeline.Options {
	return pipeline.Options{
		MaxDepth:  f.maxDepth,
		Collapsed: f.identities(),
		Geometry:  cfg.Layout,
		Text:      cfg.Text,
		Refresh:   f.refresh,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
