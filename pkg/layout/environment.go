package layout

import (
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// TickMessage is the per-step message emitted when a simulation runs in
// offloaded mode, replacing the OnTick callback with a message-passing
// channel. CurrentTick starts at 1.
type TickMessage struct {
	Type        string        `json:"type"` // always "tick"
	Nodes       []*graph.Node `json:"nodes"`
	CurrentTick int           `json:"currentTick"`
	TotalTicks  int           `json:"totalTicks"`
}

// ExecutionEnvironment describes the capabilities of the context an engine
// runs in: whether a step scheduler is available, and whether a message
// channel exists for offloaded execution. The engines consult this struct
// instead of probing any ambient global state.
type ExecutionEnvironment struct {
	// Scheduler drives iterative stepping. Nil means the engine falls back
	// to an immediate (synchronous) scheduler.
	Scheduler Scheduler

	// Messages receives one TickMessage per step in offloaded mode. Nil
	// means no message channel is available and offloaded execution is
	// downgraded to normal per-step callbacks.
	Messages chan<- TickMessage
}

// CanSchedule reports whether a host scheduler was supplied.
func (e ExecutionEnvironment) CanSchedule() bool { return e.Scheduler != nil }

// CanEmit reports whether an offloaded message channel is available.
func (e ExecutionEnvironment) CanEmit() bool { return e.Messages != nil }
