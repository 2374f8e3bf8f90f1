package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/systemmap/pkg/cache"
	"github.com/matzehuels/systemmap/pkg/content"
	errs "github.com/matzehuels/systemmap/pkg/errors"
	"github.com/matzehuels/systemmap/pkg/layout"
	"github.com/matzehuels/systemmap/pkg/observability"
	"github.com/matzehuels/systemmap/pkg/render/sink"
	"github.com/matzehuels/systemmap/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, the engine and the logger.
// Multiple goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Engine *layout.Engine
	Logger *log.Logger

	// Entry lifetimes; NewRunner sets the package cache defaults.
	LayoutTTL   time.Duration
	ArtifactTTL time.Duration

	configHash string
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If cfg is nil, the default sizing preset is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, cfg *layout.Config, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	engine := layout.New(cfg, logger)
	configHash, _ := cache.HashJSON(engine.Config())
	return &Runner{
		Cache:       c,
		Keyer:       keyer,
		Engine:      engine,
		Logger:      logger,
		LayoutTTL:   cache.LayoutTTL,
		ArtifactTTL: cache.ArtifactTTL,
		configHash:  configHash,
	}
}

// Layout runs load → layout with caching.
func (r *Runner) Layout(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	root, err := r.LoadTree(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Tree = root
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = tree.Count(root)

	treeHash, err := TreeHash(root)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "hash tree")
	}
	result.TreeHash = treeHash

	opts.Logger.Info("loaded tree",
		"source", opts.Source.Name(),
		"nodes", result.Stats.NodeCount,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	result.Expanded = opts.ExpandedSet(root)
	layoutStart := time.Now()
	m, hit, err := r.LayoutWithCacheInfo(ctx, root, treeHash, result.Expanded, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = m
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.VisibleCount = len(m)
	result.CacheInfo.LayoutHit = hit

	opts.Logger.Info("computed layout",
		"visible", len(m),
		"expanded", len(result.Expanded),
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// Render runs the complete load → layout → render pipeline with caching.
func (r *Runner) Render(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	result, err := r.Layout(ctx, opts)
	if err != nil {
		return nil, err
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, result.Layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadTree reads the content tree from opts.Source. Sources that fail
// without a coded error are reported as SOURCE_UNAVAILABLE.
func (r *Runner) LoadTree(ctx context.Context, opts Options) (*content.Node, error) {
	if opts.Source == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "source is required")
	}
	name := opts.Source.Name()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, name)

	start := time.Now()
	root, err := opts.Source.Load(ctx)
	if err == nil && root == nil {
		err = errs.New(errs.ErrCodeInvalidContent, "source %s returned no tree", name)
	}
	if err != nil && errs.GetCode(err) == "" {
		err = errs.Wrap(errs.ErrCodeSourceUnavailable, err, "load %s", name)
	}
	hooks.OnLoadComplete(ctx, name, tree.Count(root), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// LayoutWithCacheInfo computes the layout of root with caching and returns
// cache hit info. treeHash must be [TreeHash] of root.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, root *content.Node, treeHash string, expanded tree.Set, opts Options) (layout.Map, bool, error) {
	cacheKey := r.Keyer.LayoutKey(treeHash, opts.LayoutKeyOpts(expanded, r.configHash))
	cacheHooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if m, err := sink.ReadJSON(data); err == nil {
				cacheHooks.OnCacheHit(ctx, "layout")
				return m, true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			r.Logger.Warn("layout cache read failed", "error", err)
		}
	}
	cacheHooks.OnCacheMiss(ctx, "layout")

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, tree.Count(root), len(expanded))
	start := time.Now()
	m := r.Engine.Calculate(root, expanded, opts.Viewport)
	hooks.OnLayoutComplete(ctx, len(m), time.Since(start))

	if data, err := sink.RenderJSON(m, sink.WithJSONCompact()); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.LayoutTTL); err != nil {
			r.Logger.Warn("layout cache write failed", "error", err)
		} else {
			cacheHooks.OnCacheSet(ctx, "layout", len(data))
		}
	}

	return m, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m layout.Map, opts Options) (map[string][]byte, bool, error) {
	opts.SetDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	// Compute cache key from layout data
	layoutData, err := sink.RenderJSON(m, sink.WithJSONCompact())
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)
	cacheHooks := observability.Cache()

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			cacheHooks.OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}
	cacheHooks.OnCacheMiss(ctx, "artifact")

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, m, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, r.ArtifactTTL); err != nil {
			r.Logger.Warn("artifact cache write failed", "format", format, "error", err)
			continue
		}
		cacheHooks.OnCacheSet(ctx, "artifact", len(data))
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

// TreeHash returns the content hash of the tree's JSON encoding.
func TreeHash(root *content.Node) (string, error) {
	data, err := content.MarshalTree(root)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
