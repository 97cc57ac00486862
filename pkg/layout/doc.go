// Package layout defines the lifecycle contract shared by every layout
// variant, plus the scheduling and execution-environment abstractions the
// iterative engines are driven by.
//
// # Lifecycle
//
// Every variant moves through the same state machine:
//
//	unconfigured → configured → running ⇄ idle → destroyed
//
// Init binds a graph (transition to configured; may be called again to
// rebind), Execute starts the algorithm (configured/idle → running), Stop
// halts a running simulation without destroying state (running → idle), and
// Destroy releases everything and moves to the terminal destroyed state.
// Calling Execute while already running is a deliberate silent no-op: a UI
// may fire execute repeatedly in response to user interaction.
//
// Two callbacks are part of the contract for every variant: OnTick fires once
// per simulation step (for animated rendering), and OnLayoutEnd fires exactly
// once when the layout reaches convergence, its iteration cap, or a terminal
// state.
//
// # Scheduling
//
// The iterative physics engine never busy-loops in the caller's stack.
// Each step is scheduled as an independent unit of work through a [Scheduler]:
// [NewImmediateScheduler] drives steps synchronously (tests, CLI), and
// [NewTimerScheduler] defers each step to a timer so a host application's
// thread stays responsive between steps. Cancellation only prevents future
// steps; an in-progress step is atomic.
package layout
