package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/thoughttree/pkg/cache"
	"github.com/matzehuels/thoughttree/pkg/layout"
	"github.com/matzehuels/thoughttree/pkg/observability"
	"github.com/matzehuels/thoughttree/pkg/render"
	"github.com/matzehuels/thoughttree/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the layout → render pipeline over root with caching.
func (r *Runner) Execute(ctx context.Context, root *tree.Node, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	treeHash, err := TreeHash(root)
	if err != nil {
		return nil, fmt.Errorf("hash tree: %w", err)
	}
	result := &Result{
		Tree:      root,
		TreeHash:  treeHash,
		Artifacts: make(map[string][]byte),
	}
	result.Stats.Tree = tree.Measure(root)

	// Stage 1: Layout
	layoutStart := time.Now()
	sceneKey := r.Keyer.SceneKey(treeHash, opts.SceneKeyOpts())
	scene, res, sceneHit := r.scene(ctx, root, sceneKey, opts)
	result.Scene = scene
	result.Stats.Visible = len(scene.Boxes)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.SceneHit = sceneHit

	r.Logger.Debug("computed layout",
		"nodes", result.Stats.Tree.Nodes,
		"visible", result.Stats.Visible,
		"cached", sceneHit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.render(ctx, root, sceneKey, res, scene, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if res != nil {
		result.Layout = *res
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout computes the layout and scene of root without caching. The server
// uses it for live sessions, whose state changes on every event.
func (r *Runner) Layout(ctx context.Context, root *tree.Node, opts Options) (layout.Result, render.Scene, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, render.Scene{}, err
	}
	opts.SetRenderDefaults()
	res, scene := r.generate(ctx, root, opts)
	return res, scene, nil
}

// scene returns the scene for opts, from cache when possible. The layout
// result is nil on a cache hit.
func (r *Runner) scene(ctx context.Context, root *tree.Node, key string, opts Options) (render.Scene, *layout.Result, bool) {
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var s render.Scene
			if err := json.Unmarshal(data, &s); err == nil {
				observability.Cache().OnCacheHit(ctx, "scene")
				s.Transform = opts.Transform
				return s, nil, true
			}
		}
		observability.Cache().OnCacheMiss(ctx, "scene")
	}

	res, s := r.generate(ctx, root, opts)
	if data, err := json.Marshal(s); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLScene); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "scene", len(data))
		}
	}
	return s, &res, false
}

func (r *Runner) generate(ctx context.Context, root *tree.Node, opts Options) (layout.Result, render.Scene) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, tree.Measure(root).Nodes)
	start := time.Now()
	res, s := GenerateLayout(root, opts)
	hooks.OnLayoutComplete(ctx, res.Len(), time.Since(start), nil)
	return res, s
}

// render returns all requested artifacts, from cache when every one of them
// is cached.
func (r *Runner) render(ctx context.Context, root *tree.Node, sceneKey string, res *layout.Result, scene render.Scene, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(sceneKey, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	// DOT and nodelink need the arena, which a cached scene does not carry.
	if res == nil {
		computed, _ := GenerateLayout(root, opts)
		res = &computed
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, res, scene, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(sceneKey, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// TreeHash returns the content hash of a tree.
func TreeHash(root *tree.Node) (string, error) {
	data, err := tree.Marshal(root)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
