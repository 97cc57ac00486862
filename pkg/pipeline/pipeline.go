// Package pipeline provides the core load → layout pipeline shared by the
// CLI and the HTTP server.
//
// This package centralizes graph loading, layout selection, and result
// caching so every entry point behaves identically.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:     "graph.json",
//	    Algorithm: "force",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	positioned := result.Graph
package pipeline

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultAlgorithm is the layout run when none is requested.
	DefaultAlgorithm = AlgorithmForce

	// DefaultWidth and DefaultHeight define the target area for the
	// area-driven algorithms (circular, dot).
	DefaultWidth  = 300.0
	DefaultHeight = 300.0

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)
)

// Algorithm constants for the layout stage.
const (
	AlgorithmForce    = "force"
	AlgorithmCircular = "circular"
	AlgorithmDot      = "dot"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// The struct supports JSON serialization for API requests.
type Options struct {
	// Input is the path of the graph file to load. Ignored when the caller
	// supplies a parsed graph directly.
	Input string `json:"input,omitempty"`

	// Algorithm selects the layout variant: force, circular or dot.
	Algorithm string `json:"algorithm,omitempty"`

	// Shared layout options.
	CenterX float64 `json:"center_x,omitempty"`
	CenterY float64 `json:"center_y,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Seed    uint64  `json:"seed,omitempty"`

	// Force simulation options. Zero values fall back to engine defaults.
	MaxIteration    int     `json:"max_iteration,omitempty"`
	EdgeStrength    float64 `json:"edge_strength,omitempty"`
	NodeStrength    float64 `json:"node_strength,omitempty"`
	CoulombDisScale float64 `json:"coulomb_dis_scale,omitempty"`
	Damping         float64 `json:"damping,omitempty"`
	MaxSpeed        float64 `json:"max_speed,omitempty"`
	MinMovement     float64 `json:"min_movement,omitempty"`
	Interval        float64 `json:"interval,omitempty"`
	Factor          float64 `json:"factor,omitempty"`
	LinkDistance    float64 `json:"link_distance,omitempty"`
	Gravity         float64 `json:"gravity,omitempty"`
	PreventOverlap  bool    `json:"prevent_overlap,omitempty"`
	NodeSize        float64 `json:"node_size,omitempty"`
	NodeSpacing     float64 `json:"node_spacing,omitempty"`

	// Circular placement options.
	Radius      float64 `json:"radius,omitempty"`
	StartRadius float64 `json:"start_radius,omitempty"`
	EndRadius   float64 `json:"end_radius,omitempty"`
	StartAngle  float64 `json:"start_angle,omitempty"`
	EndAngle    float64 `json:"end_angle,omitempty"`
	Clockwise   *bool   `json:"clockwise,omitempty"`
	Divisions   int     `json:"divisions,omitempty"`
	AngleRatio  float64 `json:"angle_ratio,omitempty"`
	Ordering    string  `json:"ordering,omitempty"`

	// Graphviz delegation options.
	Engine string `json:"engine,omitempty"`

	// Refresh bypasses the cache and recomputes.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized).
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this pipeline execution.
	RunID string

	// Graph is the positioned graph.
	Graph *graph.Graph

	// GraphHash is the content hash of the input graph.
	GraphHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
}

// CacheInfo tracks cache hits per pipeline stage.
type CacheInfo struct {
	LayoutHit bool // whether the layout came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults.
// The method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Algorithm == "" {
		o.Algorithm = DefaultAlgorithm
	}
	if err := errors.ValidateAlgorithm(o.Algorithm); err != nil {
		return err
	}
	if err := errors.ValidateOrdering(o.Ordering); err != nil {
		return err
	}
	if o.Damping < 0 || o.Damping > 1 {
		return errors.New(errors.ErrCodeInvalidOption, "damping must be in [0, 1], got %v", o.Damping)
	}
	if o.MaxIteration < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "max_iteration must be positive, got %d", o.MaxIteration)
	}
	if o.Divisions < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "divisions must be positive, got %d", o.Divisions)
	}
	if o.AngleRatio < 0 || o.AngleRatio > 1 {
		return errors.New(errors.ErrCodeInvalidOption, "angle_ratio must be in [0, 1], got %v", o.AngleRatio)
	}
	for name, v := range map[string]float64{
		"edge_strength": o.EdgeStrength,
		"node_strength": o.NodeStrength,
		"link_distance": o.LinkDistance,
		"radius":        o.Radius,
		"width":         o.Width,
		"height":        o.Height,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidOption, "%s must be a non-negative finite number, got %v", name, v)
		}
	}

	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation. Every field
// that shapes the output participates, so parameter changes never serve stale
// positions.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	params := *o
	params.Input = ""
	params.Refresh = false
	return cache.LayoutKeyOpts{
		Algorithm: o.Algorithm,
		Params:    params,
	}
}
