package force

import (
	"math/rand"
	"sync"
	"time"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/layout"
	"github.com/matzehuels/forcegraph/pkg/observability"
)

// seedSpread is the side length of the box (centered on the configured
// center) in which coordinate-less nodes are randomly seeded.
const seedSpread = 100.0

// Engine is the force simulation layout variant. It implements
// [layout.Layout].
//
// Steps are serialized and atomic with respect to cancellation: Stop and
// Destroy only prevent future steps, never interrupt one in progress. The
// bound node slice is externally owned and mutated in place; two engine
// instances sharing one node slice are the caller's responsibility.
type Engine struct {
	mu   sync.Mutex
	opts Options
	env  layout.ExecutionEnvironment

	// fallback drives stepping when no host scheduler is injected. It is
	// a single trampoline instance so that steps scheduled from within
	// steps drain iteratively instead of recursing.
	fallback *layout.ImmediateScheduler

	state layout.State
	nodes []*graph.Node
	edges []graph.Edge
	idx   map[string]int

	sim      *simulation
	cfg      *stepConfig
	cancel   func()
	endFired bool

	startedAt time.Time
}

// New creates a force engine with the given options applied over defaults.
func New(opts ...Option) *Engine {
	e := &Engine{
		state:    layout.StateUnconfigured,
		fallback: layout.NewImmediateScheduler(),
	}
	for _, opt := range opts {
		opt(&e.opts)
	}
	e.opts.setDefaults()
	return e
}

// SetEnvironment injects the execution environment (scheduler and optional
// offload message channel). Without one, the engine schedules steps through
// an immediate synchronous scheduler.
func (e *Engine) SetEnvironment(env layout.ExecutionEnvironment) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.env = env
}

// State returns the engine's lifecycle state.
func (e *Engine) State() layout.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Init binds the node list and a sanitized copy of the edges. It validates
// the payload (unique IDs, known endpoints) and may be called again to
// rebind a different graph onto the same instance.
func (e *Engine) Init(g *graph.Graph) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == layout.StateDestroyed {
		return errors.New(errors.ErrCodeEngineDestroyed, "init on destroyed engine")
	}
	if err := g.Validate(); err != nil {
		return err
	}

	e.stopLocked()
	e.nodes = g.Nodes
	e.edges = graph.SanitizeEdges(g.Edges)
	e.idx = g.Index()
	e.sim = nil
	e.state = layout.StateConfigured
	return nil
}

// UpdateConfig merges the given options over the current configuration.
// If a simulation is running it is stopped first, so option changes never
// race with an active step.
func (e *Engine) UpdateConfig(opts ...Option) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == layout.StateDestroyed {
		return
	}
	e.stopLocked()
	for _, opt := range opts {
		opt(&e.opts)
	}
	e.opts.setDefaults()
	e.sim = nil
}

// Execute starts the simulation. A call while already running is a silent
// no-op. Configuration failures are logged as warnings and leave the engine
// idle rather than propagating: a layout failure must never crash the host.
func (e *Engine) Execute() error {
	e.mu.Lock()

	switch e.state {
	case layout.StateDestroyed:
		e.mu.Unlock()
		return errors.New(errors.ErrCodeEngineDestroyed, "execute on destroyed engine")
	case layout.StateUnconfigured:
		e.mu.Unlock()
		return errors.New(errors.ErrCodeNotConfigured, "execute before init")
	case layout.StateRunning:
		e.mu.Unlock()
		return nil
	}

	cfg, err := e.resolve()
	if err != nil {
		e.opts.Logger.Warn("force simulation configuration failed", "err", err)
		e.state = layout.StateIdle
		e.mu.Unlock()
		return nil
	}

	e.cfg = cfg
	e.sim = newSimulation(len(e.nodes))
	e.endFired = false
	e.seedPositions()
	e.startedAt = time.Now()
	observability.Layout().OnLayoutStart("force", len(e.nodes))

	if len(e.nodes) == 0 {
		// An empty graph is not an error: complete immediately.
		e.state = layout.StateIdle
		e.mu.Unlock()
		e.fireEnd()
		return nil
	}

	e.state = layout.StateRunning

	offload := e.opts.Offload
	if offload && !e.env.CanEmit() {
		e.opts.Logger.Warn("offloaded execution requested without a message channel, running in normal mode")
		offload = false
	}
	e.mu.Unlock()

	if offload {
		e.runOffloaded()
		return nil
	}

	e.scheduleNext()
	return nil
}

// Stop halts iteration without destroying state. The pending step is
// cancelled; an in-progress step finishes atomically. No end-of-layout
// callback fires for an explicit stop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// Destroy stops any running simulation, releases all node and edge
// references, and moves to the terminal destroyed state.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()
	e.nodes = nil
	e.edges = nil
	e.idx = nil
	e.sim = nil
	e.cfg = nil
	e.state = layout.StateDestroyed
}

// =============================================================================
// Internal - stepping
// =============================================================================

func (e *Engine) scheduler() layout.Scheduler {
	if e.env.CanSchedule() {
		return e.env.Scheduler
	}
	return e.fallback
}

func (e *Engine) scheduleNext() {
	e.mu.Lock()
	if e.state != layout.StateRunning {
		e.mu.Unlock()
		return
	}
	sched := e.scheduler()
	e.mu.Unlock()

	cancel := sched.Schedule(e.runStep)

	e.mu.Lock()
	if e.state == layout.StateRunning {
		e.cancel = cancel
	}
	e.mu.Unlock()
}

// runStep executes exactly one simulation step: accumulate forces, integrate,
// fire the tick callback, then either schedule the next step or finish.
// Callbacks run outside the engine lock so they may call Stop or Destroy.
func (e *Engine) runStep() {
	e.mu.Lock()
	if e.state != layout.StateRunning {
		e.mu.Unlock()
		return
	}

	movement := e.sim.step(e.cfg, e.nodes)
	e.sim.iter++
	iter := e.sim.iter
	nodes := e.nodes
	tick := e.opts.Callbacks.OnTick
	done := movement < e.cfg.minMovement || iter >= e.cfg.maxIteration
	if done {
		e.state = layout.StateIdle
		e.cancel = nil
	}
	e.mu.Unlock()

	observability.Layout().OnLayoutTick("force", iter)
	if tick != nil {
		tick(nodes)
	}

	if done {
		observability.Layout().OnLayoutComplete("force", time.Since(e.startedAt), nil)
		e.fireEnd()
		return
	}
	e.scheduleNext()
}

// runOffloaded drives the entire loop to completion without incremental
// scheduling delay, emitting one message per step on the environment channel
// instead of invoking the tick callback.
func (e *Engine) runOffloaded() {
	for {
		e.mu.Lock()
		if e.state != layout.StateRunning {
			e.mu.Unlock()
			return
		}

		movement := e.sim.step(e.cfg, e.nodes)
		e.sim.iter++
		msg := layout.TickMessage{
			Type:        "tick",
			Nodes:       e.nodes,
			CurrentTick: e.sim.iter,
			TotalTicks:  e.cfg.maxIteration,
		}
		done := movement < e.cfg.minMovement || e.sim.iter >= e.cfg.maxIteration
		if done {
			e.state = layout.StateIdle
		}
		e.mu.Unlock()

		e.env.Messages <- msg

		if done {
			observability.Layout().OnLayoutComplete("force", time.Since(e.startedAt), nil)
			e.fireEnd()
			return
		}
	}
}

func (e *Engine) stopLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.state == layout.StateRunning {
		e.state = layout.StateIdle
	}
}

// fireEnd invokes the end-of-layout callback at most once per Execute.
func (e *Engine) fireEnd() {
	e.mu.Lock()
	fired := e.endFired
	e.endFired = true
	cb := e.opts.Callbacks.OnLayoutEnd
	e.mu.Unlock()

	if !fired && cb != nil {
		cb()
	}
}

// =============================================================================
// Internal - configuration resolution
// =============================================================================

// resolve flattens Options into the immutable stepConfig the hot loop runs
// against: per-node strength/mass/radius tables and index-resolved springs.
func (e *Engine) resolve() (*stepConfig, error) {
	o := e.opts

	if o.Damping < 0 || o.Damping > 1 {
		return nil, errors.New(errors.ErrCodeInvalidOption, "damping must be in [0, 1], got %v", o.Damping)
	}
	if o.MaxIteration < 0 {
		return nil, errors.New(errors.ErrCodeInvalidOption, "maxIteration must be positive, got %d", o.MaxIteration)
	}

	n := len(e.nodes)
	degrees := graph.DegreeCounts(e.idx, len(e.nodes), e.edges)

	cfg := &stepConfig{
		center:          o.Center,
		maxIteration:    o.MaxIteration,
		coulombDisScale: o.CoulombDisScale,
		damping:         o.Damping,
		maxSpeed:        o.MaxSpeed,
		minMovement:     o.MinMovement,
		interval:        o.Interval,
		factor:          o.Factor,
		gravity:         o.Gravity,
		preventOverlap:  o.PreventOverlap,
		getCenter:       o.GetCenter,
		strength:        make([]float64, n),
		mass:            make([]float64, n),
	}

	for i, node := range e.nodes {
		cfg.strength[i] = o.NodeStrength
		cfg.mass[i] = resolveMass(o.GetMass, node, degrees[i])
	}

	if o.PreventOverlap {
		sizeOf := o.NodeSize.resolve(DefaultNodeRadius)
		spacingOf := o.NodeSpacing.resolve(0)
		cfg.radius = make([]float64, n)
		for i, node := range e.nodes {
			r := node.Radius()
			if r == 0 {
				r = sizeOf(node)
			}
			cfg.radius[i] = r + spacingOf(node)
		}
	}

	cfg.springs = make([]spring, 0, len(e.edges))
	for _, edge := range e.edges {
		src, okS := e.idx[edge.Source]
		tgt, okT := e.idx[edge.Target]
		if !okS || !okT {
			return nil, errors.New(errors.ErrCodeUnknownEndpoint, "edge %s→%s references unknown node", edge.Source, edge.Target)
		}

		strength := o.EdgeStrength
		if edge.Strength > 0 {
			strength = edge.Strength
		} else if o.EdgeStrengthFunc != nil {
			strength = o.EdgeStrengthFunc(edge)
		}

		length := o.LinkDistance
		if edge.Distance > 0 {
			length = edge.Distance
		} else if o.LinkDistanceFunc != nil {
			length = o.LinkDistanceFunc(edge)
		}

		cfg.springs = append(cfg.springs, spring{source: src, target: tgt, strength: strength, length: length})
	}

	return cfg, nil
}

// resolveMass applies the mass precedence: custom function, explicit node
// mass, then degree floored at 1 so isolated nodes still move.
func resolveMass(getMass func(*graph.Node) float64, n *graph.Node, degree int) float64 {
	if getMass != nil {
		if m := getMass(n); m > 0 {
			return m
		}
	}
	if n.Mass > 0 {
		return n.Mass
	}
	if degree < 1 {
		return 1
	}
	return float64(degree)
}

// seedPositions assigns reproducible random coordinates to nodes that
// arrived without any, inside a small box around the configured center.
func (e *Engine) seedPositions() {
	var rng *rand.Rand
	for _, n := range e.nodes {
		if n.Pinned() {
			n.X, n.Y = *n.FX, *n.FY
			n.HasPosition = true
			continue
		}
		if n.HasPosition {
			continue
		}
		if rng == nil {
			rng = rand.New(rand.NewSource(int64(e.opts.Seed)))
		}
		n.X = e.opts.Center[0] + (rng.Float64()-0.5)*seedSpread
		n.Y = e.opts.Center[1] + (rng.Float64()-0.5)*seedSpread
		n.HasPosition = true
	}
}
