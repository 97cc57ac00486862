package layout

import (
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// State identifies where an engine instance is in its lifecycle.
type State int

const (
	// StateUnconfigured is the initial state: no graph bound yet.
	StateUnconfigured State = iota
	// StateConfigured means Init has bound a graph and Execute may run.
	StateConfigured
	// StateRunning means a layout computation is in progress.
	StateRunning
	// StateIdle means a run was stopped or completed; Execute may run again.
	StateIdle
	// StateDestroyed is terminal. No further calls are valid.
	StateDestroyed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateRunning:
		return "running"
	case StateIdle:
		return "idle"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Layout is the lifecycle contract every variant implements.
//
// The bound node slice is shared and externally owned: the active engine
// mutates it in place. An engine instance guards against its own concurrent
// runs (duplicate Execute calls are ignored), but two independent instances
// bound to the same node slice are the caller's responsibility.
type Layout interface {
	// Init binds the node list and a sanitized copy of the edges into the
	// instance. May be called again to rebind a different graph.
	Init(g *graph.Graph) error

	// Execute runs the layout. For iterative engines the call returns once
	// the first step has been scheduled; for single-pass engines it returns
	// with final positions computed. A call while already running is a
	// silent no-op.
	Execute() error

	// Stop halts any in-progress iteration without destroying state.
	Stop()

	// Destroy stops the engine, releases all node and edge references, and
	// moves to the terminal destroyed state.
	Destroy()
}

// Callbacks are the two notifications in the public contract of every
// variant. Either field may be nil.
type Callbacks struct {
	// OnTick fires synchronously within each step, after position update
	// and before the next step is scheduled. Single-pass engines fire it
	// once with the final positions.
	OnTick func(nodes []*graph.Node)

	// OnLayoutEnd fires at most once per Execute invocation, when the
	// layout converges, hits its iteration cap, or completes its pass.
	OnLayoutEnd func()
}
