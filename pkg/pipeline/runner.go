package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/recipeflow/pkg/cache"
	"github.com/matzehuels/recipeflow/pkg/flow"
	"github.com/matzehuels/recipeflow/pkg/observability"
	"github.com/matzehuels/recipeflow/pkg/render"
)

// Runner executes the pipeline against a cache.
//
// The Runner holds no per-run state, so one Runner can serve concurrent
// requests with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means the DefaultKeyer and a nil logger means log.Default().
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
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute flattens opts.Item and renders every format in opts.Formats.
func (r *Runner) Execute(ctx context.Context, db Database, opts Options) (*Result, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	result := &Result{}

	start := time.Now()
	g, hit, err := r.FlattenWithCacheInfo(ctx, db, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.FlattenTime = time.Since(start)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.FlattenHit = hit
	result.GraphHash = graphHash(g)

	r.Logger.Info("flattened recipe",
		"item", opts.Item,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cached", hit,
		"duration", result.Stats.FlattenTime)

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FlattenWithCacheInfo flattens opts.Item and reports whether the graph
// came from cache.
func (r *Runner) FlattenWithCacheInfo(ctx context.Context, db Database, opts Options) (*flow.Graph, bool, error) {
	if err := opts.ValidateForFlatten(db); err != nil {
		return nil, false, err
	}

	key := r.Keyer.FlowKey(db.Hash(), opts.Item, opts.FlowKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err != nil {
			r.Logger.Warn("cache read failed", "item", opts.Item, "err", err)
		} else if hit {
			if g, err := flow.UnmarshalGraph(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "flow")
				return g, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "flow")
	}

	hooks := observability.Pipeline()
	hooks.OnFlattenStart(ctx, opts.Item)
	start := time.Now()
	g, err := flow.Flatten(opts.Item, db, opts.FlowOptions())
	if err != nil {
		hooks.OnFlattenComplete(ctx, opts.Item, 0, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnFlattenComplete(ctx, opts.Item, g.NodeCount(), g.EdgeCount(), time.Since(start), nil)

	// Graphs with infinite rates cannot be encoded and are not cached.
	if data, err := flow.MarshalGraph(g); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLFlow); err != nil {
			r.Logger.Warn("cache write failed", "item", opts.Item, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "flow", len(data))
		}
	}

	return g, false, nil
}

// Flatten is FlattenWithCacheInfo without the cache hit flag.
func (r *Runner) Flatten(ctx context.Context, db Database, opts Options) (*flow.Graph, error) {
	g, _, err := r.FlattenWithCacheInfo(ctx, db, opts)
	return g, err
}

// RenderWithCacheInfo renders g in every format of opts.Formats. The hit
// flag is true only if every format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *flow.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hash := graphHash(g)
	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true

	for _, format := range opts.Formats {
		var key string
		if hash != "" {
			key = r.Keyer.ArtifactKey(hash, opts.artifactKeyOpts(format))
			if !opts.Refresh {
				if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
					observability.Cache().OnCacheHit(ctx, "artifact")
					artifacts[format] = data
					continue
				}
				observability.Cache().OnCacheMiss(ctx, "artifact")
			}
		}
		allHit = false

		data, err := r.renderFormat(ctx, g, format, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data

		if key != "" {
			if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
				observability.Cache().OnCacheSet(ctx, "artifact", len(data))
			}
		}
	}

	return artifacts, allHit, nil
}

// Render is RenderWithCacheInfo without the cache hit flag.
func (r *Runner) Render(ctx context.Context, g *flow.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

func (r *Runner) renderFormat(ctx context.Context, g *flow.Graph, format string, opts Options) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()
	data, err := render.Render(ctx, g, format, opts.RenderOptions())
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", format, err)
	}
	r.Logger.Debug("rendered", "format", format, "bytes", len(data), "duration", time.Since(start))
	return data, nil
}

// FlattenEach flattens every item in ids with at most limit walks in
// flight and calls fn with each finished graph. fn may be called from
// several goroutines at once. The first error cancels the remaining work
// and is returned.
func (r *Runner) FlattenEach(ctx context.Context, db Database, ids []string, opts Options, limit int, fn func(id string, g *flow.Graph) error) error {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for _, id := range ids {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			o := opts
			o.Item = id
			g, err := r.Flatten(egctx, db, o)
			if err != nil {
				return fmt.Errorf("flatten %s: %w", id, err)
			}
			return fn(id, g)
		})
	}
	return eg.Wait()
}

// FlattenAll flattens every item in ids concurrently and returns the
// graphs keyed by item.
func (r *Runner) FlattenAll(ctx context.Context, db Database, ids []string, opts Options, limit int) (map[string]*flow.Graph, error) {
	var mu sync.Mutex
	out := make(map[string]*flow.Graph, len(ids))
	err := r.FlattenEach(ctx, db, ids, opts, limit, func(id string, g *flow.Graph) error {
		mu.Lock()
		out[id] = g
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func graphHash(g *flow.Graph) string {
	data, err := flow.MarshalGraph(g)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
