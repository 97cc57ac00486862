package circular

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/layout"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth and DefaultHeight define the layout area the default
	// radius is derived from.
	DefaultWidth  = 300.0
	DefaultHeight = 300.0

	// DefaultEndAngle closes the full circle.
	DefaultEndAngle = 2 * math.Pi

	// DefaultAngleRatio uses the whole angular span with no trailing gap.
	DefaultAngleRatio = 1.0

	// DefaultDivisions places all nodes on a single angular band.
	DefaultDivisions = 1

	// rampBase and rampSpan define the synthetic radius ramp used when no
	// other radius source resolves to a positive value (a degenerate
	// drawing area): node i gets rampBase + i*rampSpan/(n-1).
	rampBase = 10.0
	rampSpan = 100.0
)

// Ordering selects which permutation of the input nodes receives increasing
// placement angle.
type Ordering string

const (
	// OrderingNone keeps the original input order.
	OrderingNone Ordering = ""

	// OrderingDegree sorts nodes by ascending degree. The comparator
	// direction is a contract: lowest-degree nodes come first.
	OrderingDegree Ordering = "degree"

	// OrderingTopology greedily keeps adjacent nodes next to each other on
	// the ring, treating edges as undirected.
	OrderingTopology Ordering = "topology"

	// OrderingTopologyDirected is OrderingTopology with the adjacency index
	// built from directed edges (source→target only).
	OrderingTopologyDirected Ordering = "topology-directed"
)

// Options holds the full configuration of a circular placement. The struct is
// exported so the pipeline can map CLI/API parameters onto it; callers
// normally configure through [Option] setters.
type Options struct {
	Center [2]float64

	// Radius, when positive, fixes every node's distance from the center.
	// Otherwise, when both StartRadius and EndRadius are positive, radius is
	// interpolated linearly across placement index (the ring spirals).
	// Anything else, including exactly one of StartRadius/EndRadius set,
	// derives the radius from min(Width, Height)/2.
	Radius      float64
	StartRadius float64
	EndRadius   float64

	StartAngle float64
	EndAngle   float64

	// Clockwise flips the sign of the per-index angle offset. Nil means true.
	Clockwise *bool

	// Divisions splits nodes into k equal angular bands sharing one center,
	// each spanning 2π/k.
	Divisions int

	// AngleRatio scales the per-node angle step; values below 1 leave a gap
	// between the first and last node on the band.
	AngleRatio float64

	Width  float64
	Height float64

	Ordering Ordering

	Callbacks layout.Callbacks
	Logger    *log.Logger
}

func (o *Options) setDefaults() {
	if o.EndAngle == 0 {
		o.EndAngle = DefaultEndAngle
	}
	if o.Divisions == 0 {
		o.Divisions = DefaultDivisions
	}
	if o.AngleRatio == 0 {
		o.AngleRatio = DefaultAngleRatio
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func (o *Options) clockwise() bool {
	return o.Clockwise == nil || *o.Clockwise
}

// Option mutates Options.
type Option func(*Options)

// WithCenter sets the circle center.
func WithCenter(x, y float64) Option {
	return func(o *Options) { o.Center = [2]float64{x, y} }
}

// WithRadius fixes the ring radius.
func WithRadius(r float64) Option {
	return func(o *Options) { o.Radius = r }
}

// WithStartRadius sets the radius of the first placed node.
func WithStartRadius(r float64) Option {
	return func(o *Options) { o.StartRadius = r }
}

// WithEndRadius sets the radius of the last placed node.
func WithEndRadius(r float64) Option {
	return func(o *Options) { o.EndRadius = r }
}

// WithStartAngle sets the angle of the first placed node.
func WithStartAngle(a float64) Option {
	return func(o *Options) { o.StartAngle = a }
}

// WithEndAngle sets the end of the angular span.
func WithEndAngle(a float64) Option {
	return func(o *Options) { o.EndAngle = a }
}

// WithClockwise sets the placement direction.
func WithClockwise(clockwise bool) Option {
	return func(o *Options) { o.Clockwise = &clockwise }
}

// WithDivisions splits nodes into k equal angular bands.
func WithDivisions(k int) Option {
	return func(o *Options) { o.Divisions = k }
}

// WithAngleRatio scales the per-node angle step.
func WithAngleRatio(r float64) Option {
	return func(o *Options) { o.AngleRatio = r }
}

// WithSize sets the layout area the default radius derives from.
func WithSize(width, height float64) Option {
	return func(o *Options) {
		o.Width = width
		o.Height = height
	}
}

// WithOrdering selects the node ordering strategy.
func WithOrdering(ord Ordering) Option {
	return func(o *Options) { o.Ordering = ord }
}

// WithLogger sets the logger used for warnings.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// OnTick registers the per-pass callback. The circular engine is single-pass,
// so it fires exactly once with the final positions.
func OnTick(fn func(nodes []*graph.Node)) Option {
	return func(o *Options) { o.Callbacks.OnTick = fn }
}

// OnLayoutEnd registers the end-of-layout callback.
func OnLayoutEnd(fn func()) Option {
	return func(o *Options) { o.Callbacks.OnLayoutEnd = fn }
}
