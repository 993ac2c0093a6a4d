// Package config loads thoughttree settings from a TOML file.
//
// Every section is optional; missing keys keep their defaults:
//
//	[layout]
//	node_width = 240
//	vertical_gap = 140
//
//	[text]
//	primary_width = 28
//
//	[viewport]
//	min_scale = 0.5
//	max_scale = 2.5
//
//	[server]
//	addr = ":8080"
//	session_store = "redis"
//
//	[redis]
//	addr = "localhost:6379"
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
//	database = "thoughttree"
//
//	[cache]
//	enabled = true
//	backend = "file"
//
//	[service]
//	url = "http://localhost:8000"
//
// The default location is $XDG_CONFIG_HOME/thoughttree/config.toml
// (~/.config/thoughttree/config.toml).
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/thoughttree/pkg/errors"
	"github.com/matzehuels/thoughttree/pkg/layout"
	"github.com/matzehuels/thoughttree/pkg/render"
	"github.com/matzehuels/thoughttree/pkg/view"
)

const appName = "thoughttree"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

// Config is the full set of tunables.
type Config struct {
	Layout   layout.Geometry     `toml:"layout"`
	Text     render.TextConfig   `toml:"text"`
	Viewport view.ViewportConfig `toml:"viewport"`
	Server   Server              `toml:"server"`
	Redis    Redis               `toml:"redis"`
	Mongo    Mongo               `toml:"mongo"`
	Cache    Cache               `toml:"cache"`
	Service  Service             `toml:"service"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string   `toml:"addr"`
	SessionStore string   `toml:"session_store"` // memory, file or redis
	TreeStore    string   `toml:"tree_store"`    // memory, file or mongo
	DataDir      string   `toml:"data_dir"`      // root for file stores
	SessionTTL   Duration `toml:"session_ttl"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
}

// Redis configures the session store backend.
type Redis struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

// Mongo configures the tree store backend.
type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Cache configures the render artifact cache.
type Cache struct {
	Enabled bool     `toml:"enabled"`
	Backend string   `toml:"backend"` // file or redis
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
}

// Service locates the move-selection service that produces trees.
type Service struct {
	URL     string   `toml:"url"`
	Timeout Duration `toml:"timeout"`
}

// Duration is a time.Duration written as a string ("30m", "24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout:   layout.DefaultGeometry(),
		Text:     render.DefaultTextConfig(),
		Viewport: view.DefaultViewportConfig(),
		Server: Server{
			Addr:         ":8080",
			SessionStore: StoreMemory,
			TreeStore:    StoreMemory,
			SessionTTL:   Duration{24 * time.Hour},
			MaxBodyBytes: 4 << 20,
		},
		Redis: Redis{
			Addr:      "localhost:6379",
			KeyPrefix: appName + ":",
		},
		Mongo: Mongo{
			URI:        "mongodb://localhost:27017",
			Database:   appName,
			Collection: "trees",
		},
		Cache: Cache{
			Enabled: true,
			Backend: StoreFile,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Service: Service{
			URL:     "http://localhost:8000",
			Timeout: Duration{2 * time.Minute},
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path on top of the defaults. An empty path means [Path]; a
// missing file at the default location is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && stderrors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		if stderrors.Is(err, fs.ErrNotExist) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(data, cfg)
}

// Parse decodes TOML data on top of base and validates the result.
// Unknown keys are rejected so typos do not pass silently.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return base, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return base, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

var (
	sessionStores = map[string]bool{StoreMemory: true, StoreFile: true, StoreRedis: true}
	treeStores    = map[string]bool{StoreMemory: true, StoreFile: true, StoreMongo: true}
	cacheBackends = map[string]bool{StoreFile: true, StoreRedis: true}
)

// Validate checks ranges and backend names.
func (c Config) Validate() error {
	g := c.Layout
	if !(g.NodeWidth > 0 && g.NodeHeight > 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "layout: node size must be positive")
	}
	if !(g.HorizontalGap >= 0 && g.VerticalGap >= 0 && g.Padding >= 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "layout: gaps and padding must not be negative")
	}
	if c.Text.PrimaryWidth < 1 || c.Text.SecondaryWidth < 1 || c.Text.MaxLines < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "text: wrap widths must be positive")
	}
	if err := c.Viewport.Validate(); err != nil {
		return err
	}
	if err := errors.ValidateOneOf(errors.ErrCodeInvalidConfig, "session store", c.Server.SessionStore, sessionStores); err != nil {
		return err
	}
	if err := errors.ValidateOneOf(errors.ErrCodeInvalidConfig, "tree store", c.Server.TreeStore, treeStores); err != nil {
		return err
	}
	if err := errors.ValidateOneOf(errors.ErrCodeInvalidConfig, "cache backend", c.Cache.Backend, cacheBackends); err != nil {
		return err
	}
	if c.Service.URL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "service: url is required")
	}
	return nil
}

// DataDir returns the root directory for file-backed stores, defaulting to
// $XDG_DATA_HOME/thoughttree.
func (c Config) DataDir() (string, error) {
	if c.Server.DataDir != "" {
		return c.Server.DataDir, nil
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// CacheDir returns the artifact cache directory, defaulting to
// $XDG_CACHE_HOME/thoughttree.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
