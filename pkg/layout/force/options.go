package force

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/layout"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMaxIteration caps the number of simulation steps.
	DefaultMaxIteration = 1000

	// DefaultEdgeStrength scales the spring attraction along edges.
	DefaultEdgeStrength = 200.0

	// DefaultNodeStrength scales the pairwise repulsion between nodes.
	DefaultNodeStrength = 1000.0

	// DefaultCoulombDisScale tunes the distance falloff of repulsion.
	DefaultCoulombDisScale = 0.005

	// DefaultDamping is the velocity damping factor applied every step.
	DefaultDamping = 0.9

	// DefaultMaxSpeed clamps per-step node speed.
	DefaultMaxSpeed = 1000.0

	// DefaultMinMovement is the mean-displacement convergence threshold.
	DefaultMinMovement = 0.5

	// DefaultInterval is the initial step interval before linear decay.
	DefaultInterval = 0.02

	// DefaultFactor is a global multiplier on repulsion.
	DefaultFactor = 1.0

	// DefaultLinkDistance is the ideal edge length.
	DefaultLinkDistance = 200.0

	// DefaultGravity pulls nodes toward the configured center.
	DefaultGravity = 10.0

	// DefaultNodeRadius is the fallback collision radius used by overlap
	// prevention when neither the node nor the configuration specify a size.
	DefaultNodeRadius = 10.0

	// DefaultSeed seeds the random placement of nodes that arrive without
	// coordinates, keeping runs reproducible.
	DefaultSeed = uint64(42)

	// minInterval floors the decaying step interval.
	minInterval = 0.02

	// intervalDecay is subtracted from the interval once per iteration.
	intervalDecay = 0.002

	// distanceFloor clamps pair distances to avoid division blow-up when
	// two nodes are (nearly) coincident.
	distanceFloor = 0.01
)

// =============================================================================
// Size Spec - tagged variant for nodeSize / nodeSpacing
// =============================================================================

// SizeSpec is a tagged variant for per-node size configuration. It is
// resolved once at Execute time into a plain per-node function, so the hot
// per-step loop never dispatches on dynamic types.
type SizeSpec struct {
	kind sizeKind
	val  float64
	fn   func(n *graph.Node) float64
}

type sizeKind int

const (
	sizeUnset sizeKind = iota
	sizeConstant
	sizeFunc
)

// ConstantSize returns a SizeSpec applying the same value to every node.
func ConstantSize(v float64) SizeSpec {
	return SizeSpec{kind: sizeConstant, val: v}
}

// SizeFunc returns a SizeSpec computed per node.
func SizeFunc(fn func(n *graph.Node) float64) SizeSpec {
	return SizeSpec{kind: sizeFunc, fn: fn}
}

// resolve flattens the spec into a plain function. Unset specs yield the
// fallback for every node.
func (s SizeSpec) resolve(fallback float64) func(n *graph.Node) float64 {
	switch s.kind {
	case sizeConstant:
		v := s.val
		return func(*graph.Node) float64 { return v }
	case sizeFunc:
		return s.fn
	default:
		return func(*graph.Node) float64 { return fallback }
	}
}

// =============================================================================
// Options
// =============================================================================

// Options holds the full configuration of a force simulation. Callers
// normally configure through [Option] setters; the struct is exported so the
// pipeline can map CLI/API parameters onto it.
type Options struct {
	Center          [2]float64
	MaxIteration    int
	EdgeStrength    float64
	NodeStrength    float64
	CoulombDisScale float64
	Damping         float64
	MaxSpeed        float64
	MinMovement     float64
	Interval        float64
	Factor          float64
	LinkDistance    float64
	Gravity         float64
	PreventOverlap  bool
	NodeSize        SizeSpec
	NodeSpacing     SizeSpec
	Seed            uint64

	// GetMass overrides the degree-derived node mass.
	GetMass func(n *graph.Node) float64

	// GetCenter supplies a per-node gravity center and coefficient,
	// overriding Center and Gravity for that node. A zero coefficient
	// disables gravity for the node.
	GetCenter func(n *graph.Node) (x, y, gravity float64)

	// EdgeStrengthFunc and LinkDistanceFunc override the scalar settings
	// per edge when non-nil.
	EdgeStrengthFunc func(e graph.Edge) float64
	LinkDistanceFunc func(e graph.Edge) float64

	// Offload requests offloaded execution: the whole iteration loop runs
	// to completion emitting one TickMessage per step to the environment's
	// message channel instead of invoking OnTick.
	Offload bool

	Callbacks layout.Callbacks
	Logger    *log.Logger
}

// setDefaults fills zero values with the documented defaults.
func (o *Options) setDefaults() {
	if o.MaxIteration == 0 {
		o.MaxIteration = DefaultMaxIteration
	}
	if o.EdgeStrength == 0 {
		o.EdgeStrength = DefaultEdgeStrength
	}
	if o.NodeStrength == 0 {
		o.NodeStrength = DefaultNodeStrength
	}
	if o.CoulombDisScale == 0 {
		o.CoulombDisScale = DefaultCoulombDisScale
	}
	if o.Damping == 0 {
		o.Damping = DefaultDamping
	}
	if o.MaxSpeed == 0 {
		o.MaxSpeed = DefaultMaxSpeed
	}
	if o.MinMovement == 0 {
		o.MinMovement = DefaultMinMovement
	}
	if o.Interval == 0 {
		o.Interval = DefaultInterval
	}
	if o.Factor == 0 {
		o.Factor = DefaultFactor
	}
	if o.LinkDistance == 0 {
		o.LinkDistance = DefaultLinkDistance
	}
	if o.Gravity == 0 {
		o.Gravity = DefaultGravity
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Option mutates Options. Passing options to [Engine.UpdateConfig] merges
// them over the engine's current configuration.
type Option func(*Options)

// WithCenter sets the global gravity center.
func WithCenter(x, y float64) Option {
	return func(o *Options) { o.Center = [2]float64{x, y} }
}

// WithMaxIteration sets the iteration cap.
func WithMaxIteration(n int) Option {
	return func(o *Options) { o.MaxIteration = n }
}

// WithEdgeStrength sets the spring attraction strength.
func WithEdgeStrength(v float64) Option {
	return func(o *Options) { o.EdgeStrength = v }
}

// WithNodeStrength sets the repulsion strength.
func WithNodeStrength(v float64) Option {
	return func(o *Options) { o.NodeStrength = v }
}

// WithCoulombDisScale sets the repulsion distance-scale constant.
func WithCoulombDisScale(v float64) Option {
	return func(o *Options) { o.CoulombDisScale = v }
}

// WithDamping sets the velocity damping factor.
func WithDamping(v float64) Option {
	return func(o *Options) { o.Damping = v }
}

// WithMaxSpeed sets the per-step speed clamp.
func WithMaxSpeed(v float64) Option {
	return func(o *Options) { o.MaxSpeed = v }
}

// WithMinMovement sets the convergence threshold.
func WithMinMovement(v float64) Option {
	return func(o *Options) { o.MinMovement = v }
}

// WithInterval sets the initial step interval.
func WithInterval(v float64) Option {
	return func(o *Options) { o.Interval = v }
}

// WithFactor sets the global repulsion multiplier.
func WithFactor(v float64) Option {
	return func(o *Options) { o.Factor = v }
}

// WithLinkDistance sets the ideal edge length.
func WithLinkDistance(v float64) Option {
	return func(o *Options) { o.LinkDistance = v }
}

// WithGravity sets the centering gravity coefficient.
func WithGravity(v float64) Option {
	return func(o *Options) { o.Gravity = v }
}

// WithPreventOverlap toggles the overlap-correction repulsion term.
func WithPreventOverlap(enabled bool) Option {
	return func(o *Options) { o.PreventOverlap = enabled }
}

// WithNodeSize sets the node size used for overlap prevention.
func WithNodeSize(s SizeSpec) Option {
	return func(o *Options) { o.NodeSize = s }
}

// WithNodeSpacing sets extra spacing added on top of node sizes.
func WithNodeSpacing(s SizeSpec) Option {
	return func(o *Options) { o.NodeSpacing = s }
}

// WithSeed seeds the random placement of coordinate-less nodes.
func WithSeed(seed uint64) Option {
	return func(o *Options) { o.Seed = seed }
}

// WithMass overrides the degree-derived node mass.
func WithMass(fn func(n *graph.Node) float64) Option {
	return func(o *Options) { o.GetMass = fn }
}

// WithCenterFunc supplies per-node gravity centers.
func WithCenterFunc(fn func(n *graph.Node) (x, y, gravity float64)) Option {
	return func(o *Options) { o.GetCenter = fn }
}

// WithEdgeStrengthFunc overrides edge strength per edge.
func WithEdgeStrengthFunc(fn func(e graph.Edge) float64) Option {
	return func(o *Options) { o.EdgeStrengthFunc = fn }
}

// WithLinkDistanceFunc overrides the ideal length per edge.
func WithLinkDistanceFunc(fn func(e graph.Edge) float64) Option {
	return func(o *Options) { o.LinkDistanceFunc = fn }
}

// WithOffload requests offloaded execution through the environment's
// message channel.
func WithOffload(enabled bool) Option {
	return func(o *Options) { o.Offload = enabled }
}

// WithLogger sets the logger used for warnings.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// OnTick registers the per-step callback.
func OnTick(fn func(nodes []*graph.Node)) Option {
	return func(o *Options) { o.Callbacks.OnTick = fn }
}

// OnLayoutEnd registers the end-of-layout callback.
func OnLayoutEnd(fn func()) Option {
	return func(o *Options) { o.Callbacks.OnLayoutEnd = fn }
}
