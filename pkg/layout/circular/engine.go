package circular

import (
	"math"
	"sync"
	"time"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/layout"
	"github.com/matzehuels/forcegraph/pkg/observability"
)

// Engine places nodes on one or more angular bands around a shared center.
// It implements [layout.Layout]. Execute is fully synchronous: a single pass
// computes all final positions, so there is nothing to schedule and Stop
// between runs is a no-op.
//
// Node size never influences placement; positions depend only on the index in
// the chosen ordering, the radius schedule, and the angular schedule.
type Engine struct {
	mu    sync.Mutex
	opts  Options
	state layout.State

	nodes []*graph.Node
	edges []graph.Edge
	idx   map[string]int
}

// New creates a circular engine with the given options applied over defaults.
func New(opts ...Option) *Engine {
	e := &Engine{state: layout.StateUnconfigured}
	for _, opt := range opts {
		opt(&e.opts)
	}
	e.opts.setDefaults()
	return e
}

// State returns the engine's lifecycle state.
func (e *Engine) State() layout.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Init binds the node list and a sanitized copy of the edges.
func (e *Engine) Init(g *graph.Graph) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == layout.StateDestroyed {
		return errors.New(errors.ErrCodeEngineDestroyed, "init on destroyed engine")
	}
	if err := g.Validate(); err != nil {
		return err
	}

	e.nodes = g.Nodes
	e.edges = graph.SanitizeEdges(g.Edges)
	e.idx = g.Index()
	e.state = layout.StateConfigured
	return nil
}

// UpdateConfig merges the given options over the current configuration.
func (e *Engine) UpdateConfig(opts ...Option) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == layout.StateDestroyed {
		return
	}
	for _, opt := range opts {
		opt(&e.opts)
	}
	e.opts.setDefaults()
}

// Execute computes final positions in one synchronous pass, mutating the
// bound nodes in place and recording each node's degree on its Weight field.
// An unknown ordering is downgraded to input order with a warning rather
// than failing the layout.
func (e *Engine) Execute() error {
	e.mu.Lock()

	switch e.state {
	case layout.StateDestroyed:
		e.mu.Unlock()
		return errors.New(errors.ErrCodeEngineDestroyed, "execute on destroyed engine")
	case layout.StateUnconfigured:
		e.mu.Unlock()
		return errors.New(errors.ErrCodeNotConfigured, "execute before init")
	}

	started := time.Now()
	observability.Layout().OnLayoutStart("circular", len(e.nodes))

	nodes := e.nodes
	tick := e.opts.Callbacks.OnTick
	end := e.opts.Callbacks.OnLayoutEnd

	if len(nodes) > 0 {
		e.place()
	}
	e.state = layout.StateIdle
	e.mu.Unlock()

	if len(nodes) > 0 && tick != nil {
		tick(nodes)
	}
	observability.Layout().OnLayoutComplete("circular", time.Since(started), nil)
	if end != nil {
		end()
	}
	return nil
}

// Stop is a no-op: a synchronous pass never has pending work to cancel.
func (e *Engine) Stop() {}

// Destroy releases all node and edge references and moves to the terminal
// destroyed state.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nodes = nil
	e.edges = nil
	e.idx = nil
	e.state = layout.StateDestroyed
}

// =============================================================================
// Placement
// =============================================================================

func (e *Engine) place() {
	n := len(e.nodes)
	degrees := graph.DegreeCounts(e.idx, len(e.nodes), e.edges)

	if n == 1 {
		e.nodes[0].X = e.opts.Center[0]
		e.nodes[0].Y = e.opts.Center[1]
		e.nodes[0].HasPosition = true
		e.nodes[0].Weight = float64(degrees[0])
		return
	}

	ordered := e.order(degrees)

	// A spiral needs both endpoints. Anything short of that pair falls
	// back to a fixed radius derived from the drawing area.
	spiral := e.opts.StartRadius > 0 && e.opts.EndRadius > 0
	radius := e.opts.Radius
	if radius == 0 && !spiral {
		radius = math.Min(e.opts.Width, e.opts.Height) / 2
	}

	angleStep := (e.opts.EndAngle - e.opts.StartAngle) / float64(n)
	divisions := e.opts.Divisions
	if divisions < 1 {
		divisions = 1
	}
	// Nodes per angular band, last band possibly short.
	divN := (n + divisions - 1) / divisions
	clockwise := e.opts.clockwise()

	for i, node := range ordered {
		r := radius
		if r == 0 && spiral {
			r = e.opts.StartRadius + float64(i)*(e.opts.EndRadius-e.opts.StartRadius)/float64(n-1)
		}
		if r <= 0 {
			// Degenerate drawing area. Keep the nodes apart anyway.
			r = rampBase + float64(i)*rampSpan/float64(n-1)
		}

		offset := float64(i%divN)*angleStep*e.opts.AngleRatio +
			2*math.Pi/float64(divisions)*float64(i/divN)

		var angle float64
		if clockwise {
			angle = e.opts.StartAngle + offset
		} else {
			angle = e.opts.EndAngle - offset
		}

		node.X = e.opts.Center[0] + math.Cos(angle)*r
		node.Y = e.opts.Center[1] + math.Sin(angle)*r
		node.HasPosition = true
		node.Weight = float64(degrees[e.idx[node.ID]])
	}
}

// order returns the permutation of nodes that receives increasing angle.
func (e *Engine) order(degrees []int) []*graph.Node {
	switch e.opts.Ordering {
	case OrderingNone:
		return e.nodes
	case OrderingDegree:
		return orderByDegree(e.nodes, degrees)
	case OrderingTopology:
		return orderByTopology(e.nodes, e.edges, e.idx, degrees, false)
	case OrderingTopologyDirected:
		return orderByTopology(e.nodes, e.edges, e.idx, degrees, true)
	default:
		e.opts.Logger.Warn("unknown circular ordering, using input order", "ordering", string(e.opts.Ordering))
		return e.nodes
	}
}
