package pipeline

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't store
// pipeline results. Multiple goroutines can safely share one Runner with
// different options.
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

// Execute runs the complete load → layout pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOption, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{RunID: uuid.NewString()}

	// Stage 1: Load
	loadStart := time.Now()
	g, hash, err := r.Load(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "load")
	}
	result.GraphHash = hash
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)

	r.Logger.Info("loaded graph",
		"run", result.RunID,
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	positioned, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, g, hash, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "layout")
	}
	result.Graph = positioned
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"run", result.RunID,
		"algorithm", opts.Algorithm,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// ExecuteGraph runs the layout stage over an already-parsed graph, skipping
// the file load. The server uses this for request bodies.
func (r *Runner) ExecuteGraph(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOption, err, "invalid options")
	}
	r.applyLogger(&opts)

	if err := g.Validate(); err != nil {
		return nil, err
	}

	data, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString(), GraphHash: cache.Hash(data)}
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)

	layoutStart := time.Now()
	positioned, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, g, result.GraphHash, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "layout")
	}
	result.Graph = positioned
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit
	return result, nil
}

// Load reads and validates the input graph file, returning the parsed graph
// and its content hash.
func (r *Runner) Load(ctx context.Context, opts Options) (*graph.Graph, string, error) {
	if err := errors.ValidateGraphPath(opts.Input); err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidGraph, err, "read graph file")
	}

	g, err := graph.ReadGraph(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return g, cache.Hash(data), nil
}

// ComputeLayoutWithCacheInfo computes a layout with caching and reports
// whether the result came from cache. On a hit the cached positions are
// applied back onto g's nodes, so callers always observe positioned nodes.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, g *graph.Graph, graphHash string, opts Options) (*graph.Graph, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := graph.ReadGraph(bytes.NewReader(data))
			if err == nil && applyCachedPositions(g, cached) {
				observability.Cache().OnCacheHit(ctx, cacheKey)
				return g, true, nil
			}
			// Stale or mismatched entry, recompute.
		}
		observability.Cache().OnCacheMiss(ctx, cacheKey)
	}

	if err := GenerateLayout(g, opts); err != nil {
		return nil, false, err
	}

	if data, err := graph.MarshalGraph(g); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, cacheKey, len(data))
		}
	}

	return g, false, nil
}

// ComputeLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, g *graph.Graph, graphHash string, opts Options) (*graph.Graph, error) {
	positioned, _, err := r.ComputeLayoutWithCacheInfo(ctx, g, graphHash, opts)
	return positioned, err
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

// applyCachedPositions copies positions from a cached graph onto the live
// one. It refuses mismatched node sets so a corrupt entry can never produce
// a half-positioned graph.
func applyCachedPositions(g, cached *graph.Graph) bool {
	if len(g.Nodes) != len(cached.Nodes) {
		return false
	}
	byID := cached.Index()
	for _, n := range g.Nodes {
		if _, ok := byID[n.ID]; !ok {
			return false
		}
	}
	for _, n := range g.Nodes {
		c := cached.Nodes[byID[n.ID]]
		n.X, n.Y = c.X, c.Y
		n.HasPosition = c.HasPosition
		n.Weight = c.Weight
	}
	return true
}
