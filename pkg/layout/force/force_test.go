package force

import (
	"math"
	"testing"
	"time"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/layout"
)

func testGraph(nodeIDs []string, edges []graph.Edge) *graph.Graph {
	g := &graph.Graph{Edges: edges}
	for _, id := range nodeIDs {
		g.Nodes = append(g.Nodes, &graph.Node{ID: id})
	}
	return g
}

func floatPtr(v float64) *float64 { return &v }

// =============================================================================
// Force symmetry
// =============================================================================

func TestRepulsionAntisymmetry(t *testing.T) {
	tests := []struct {
		name   string
		posA   [2]float64
		posB   [2]float64
		factor float64
	}{
		{name: "horizontal pair", posA: [2]float64{0, 0}, posB: [2]float64{50, 0}, factor: 1},
		{name: "diagonal pair", posA: [2]float64{-10, 3}, posB: [2]float64{7, 40}, factor: 1},
		{name: "scaled factor", posA: [2]float64{1, 2}, posB: [2]float64{3, 4}, factor: 2.5},
		{name: "coincident pair", posA: [2]float64{5, 5}, posB: [2]float64{5, 5}, factor: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := []*graph.Node{
				{ID: "a", X: tt.posA[0], Y: tt.posA[1]},
				{ID: "b", X: tt.posB[0], Y: tt.posB[1]},
			}
			cfg := &stepConfig{
				coulombDisScale: DefaultCoulombDisScale,
				factor:          tt.factor,
				strength:        []float64{DefaultNodeStrength, 500},
				mass:            []float64{1, 3},
			}

			accel := make([]float64, 4)
			applyRepulsion(cfg, nodes, accel)

			if got, want := accel[2], -accel[0]; got != want {
				t.Errorf("accel[b].x = %v, want %v", got, want)
			}
			if got, want := accel[3], -accel[1]; got != want {
				t.Errorf("accel[b].y = %v, want %v", got, want)
			}
		})
	}
}

func TestRepulsionConservesMomentum(t *testing.T) {
	nodes := []*graph.Node{
		{ID: "a", X: 0, Y: 0},
		{ID: "b", X: 13, Y: -7},
		{ID: "c", X: -40, Y: 22},
		{ID: "d", X: 5, Y: 5},
	}
	cfg := &stepConfig{
		coulombDisScale: DefaultCoulombDisScale,
		factor:          1,
		strength:        []float64{1000, 800, 1200, 900},
		mass:            []float64{1, 2, 1, 3},
	}

	accel := make([]float64, 2*len(nodes))
	applyRepulsion(cfg, nodes, accel)

	var sumX, sumY float64
	for i := range nodes {
		sumX += accel[2*i]
		sumY += accel[2*i+1]
	}
	if math.Abs(sumX) > 1e-9 || math.Abs(sumY) > 1e-9 {
		t.Errorf("net repulsion force = (%v, %v), want (0, 0)", sumX, sumY)
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestExecuteBeforeInit(t *testing.T) {
	e := New()
	err := e.Execute()
	if !errors.Is(err, errors.ErrCodeNotConfigured) {
		t.Fatalf("Execute() error = %v, want code %s", err, errors.ErrCodeNotConfigured)
	}
}

func TestDestroyedEngineRejectsEverything(t *testing.T) {
	e := New()
	if err := e.Init(testGraph([]string{"a"}, nil)); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	e.Destroy()

	if got := e.State(); got != layout.StateDestroyed {
		t.Fatalf("State() = %v, want %v", got, layout.StateDestroyed)
	}
	if err := e.Init(testGraph([]string{"a"}, nil)); !errors.Is(err, errors.ErrCodeEngineDestroyed) {
		t.Errorf("Init() error = %v, want code %s", err, errors.ErrCodeEngineDestroyed)
	}
	if err := e.Execute(); !errors.Is(err, errors.ErrCodeEngineDestroyed) {
		t.Errorf("Execute() error = %v, want code %s", err, errors.ErrCodeEngineDestroyed)
	}
}

func TestExecuteConvergesAndFiresEndOnce(t *testing.T) {
	endCalls := 0
	ticks := 0
	e := New(
		WithMaxIteration(200),
		OnTick(func([]*graph.Node) { ticks++ }),
		OnLayoutEnd(func() { endCalls++ }),
	)
	g := testGraph([]string{"a", "b", "c"}, []graph.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
	})
	if err := e.Init(g); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if err := e.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if got := e.State(); got != layout.StateIdle {
		t.Errorf("State() = %v, want %v", got, layout.StateIdle)
	}
	if endCalls != 1 {
		t.Errorf("end callback fired %d times, want 1", endCalls)
	}
	if ticks == 0 || ticks > 200 {
		t.Errorf("tick callback fired %d times, want 1..200", ticks)
	}
	for _, n := range g.Nodes {
		if !n.HasPosition {
			t.Errorf("node %s has no position after layout", n.ID)
		}
	}
}

func TestExecuteWhileRunningIsNoOp(t *testing.T) {
	e := New()
	e.SetEnvironment(layout.ExecutionEnvironment{
		Scheduler: layout.NewTimerScheduler(time.Hour),
	})
	if err := e.Init(testGraph([]string{"a", "b"}, nil)); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := e.State(); got != layout.StateRunning {
		t.Fatalf("State() = %v, want %v", got, layout.StateRunning)
	}

	if err := e.Execute(); err != nil {
		t.Errorf("second Execute() error = %v, want nil", err)
	}
	if got := e.State(); got != layout.StateRunning {
		t.Errorf("State() after second Execute = %v, want %v", got, layout.StateRunning)
	}

	e.Stop()
	if got := e.State(); got != layout.StateIdle {
		t.Errorf("State() after Stop = %v, want %v", got, layout.StateIdle)
	}
}

func TestStopDoesNotFireEndCallback(t *testing.T) {
	endCalls := 0
	e := New(OnLayoutEnd(func() { endCalls++ }))
	e.SetEnvironment(layout.ExecutionEnvironment{
		Scheduler: layout.NewTimerScheduler(time.Hour),
	})
	if err := e.Init(testGraph([]string{"a", "b"}, nil)); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	e.Stop()
	if endCalls != 0 {
		t.Errorf("end callback fired %d times after Stop, want 0", endCalls)
	}
}

func TestUpdateConfigStopsRunningSimulation(t *testing.T) {
	e := New()
	e.SetEnvironment(layout.ExecutionEnvironment{
		Scheduler: layout.NewTimerScheduler(time.Hour),
	})
	if err := e.Init(testGraph([]string{"a", "b"}, nil)); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	e.UpdateConfig(WithGravity(20))
	if got := e.State(); got != layout.StateIdle {
		t.Errorf("State() after UpdateConfig = %v, want %v", got, layout.StateIdle)
	}
	if got := e.opts.Gravity; got != 20 {
		t.Errorf("Gravity = %v, want 20", got)
	}
	if got := e.opts.LinkDistance; got != DefaultLinkDistance {
		t.Errorf("LinkDistance = %v, want untouched default %v", got, DefaultLinkDistance)
	}
}

func TestEmptyGraphCompletesImmediately(t *testing.T) {
	endCalls := 0
	e := New(OnLayoutEnd(func() { endCalls++ }))
	if err := e.Init(&graph.Graph{}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := e.State(); got != layout.StateIdle {
		t.Errorf("State() = %v, want %v", got, layout.StateIdle)
	}
	if endCalls != 1 {
		t.Errorf("end callback fired %d times, want 1", endCalls)
	}
}

func TestInvalidDampingIsNonFatal(t *testing.T) {
	endCalls := 0
	e := New(WithDamping(2), OnLayoutEnd(func() { endCalls++ }))
	if err := e.Init(testGraph([]string{"a"}, nil)); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if err := e.Execute(); err != nil {
		t.Fatalf("Execute() error = %v, want nil (warn and stay idle)", err)
	}
	if got := e.State(); got != layout.StateIdle {
		t.Errorf("State() = %v, want %v", got, layout.StateIdle)
	}
	if endCalls != 0 {
		t.Errorf("end callback fired %d times, want 0", endCalls)
	}
}

// =============================================================================
// Physics behavior
// =============================================================================

func TestPinnedNodeStaysFixed(t *testing.T) {
	pinned := &graph.Node{ID: "pin", FX: floatPtr(123), FY: floatPtr(-45)}
	free := &graph.Node{ID: "free"}
	g := &graph.Graph{
		Nodes: []*graph.Node{pinned, free},
		Edges: []graph.Edge{{Source: "pin", Target: "free"}},
	}

	e := New(WithMaxIteration(100))
	if err := e.Init(g); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if pinned.X != 123 || pinned.Y != -45 {
		t.Errorf("pinned node at (%v, %v), want (123, -45)", pinned.X, pinned.Y)
	}
}

func TestPreventOverlapSeparatesCloseNodes(t *testing.T) {
	a := &graph.Node{ID: "a", X: 0, Y: 0, HasPosition: true, Size: 20}
	b := &graph.Node{ID: "b", X: 1, Y: 0, HasPosition: true, Size: 20}
	g := &graph.Graph{Nodes: []*graph.Node{a, b}}

	e := New(WithMaxIteration(50), WithPreventOverlap(true), WithGravity(0.1))
	if err := e.Init(g); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if dist := math.Hypot(a.X-b.X, a.Y-b.Y); dist <= 1 {
		t.Errorf("distance after layout = %v, want > 1", dist)
	}
}

func TestPreventOverlapSeparatesCoincidentNodes(t *testing.T) {
	a := &graph.Node{ID: "a", X: 0, Y: 0, HasPosition: true, Size: 20}
	b := &graph.Node{ID: "b", X: 0, Y: 0, HasPosition: true, Size: 20}
	g := &graph.Graph{Nodes: []*graph.Node{a, b}}

	e := New(WithMaxIteration(100), WithPreventOverlap(true), WithGravity(0.1))
	if err := e.Init(g); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	dist := math.Hypot(a.X-b.X, a.Y-b.Y)
	if math.IsNaN(dist) {
		t.Fatal("positions became NaN")
	}
	if dist <= 1 {
		t.Errorf("distance after layout = %v, want > 1", dist)
	}
}

func TestCoincidentPairSeparationIsReproducible(t *testing.T) {
	run := func() (float64, float64) {
		a := &graph.Node{ID: "a", X: 5, Y: 5, HasPosition: true}
		b := &graph.Node{ID: "b", X: 5, Y: 5, HasPosition: true}
		g := &graph.Graph{Nodes: []*graph.Node{a, b}}

		e := New(WithMaxIteration(10))
		if err := e.Init(g); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if err := e.Execute(); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		return a.X - b.X, a.Y - b.Y
	}

	dx1, dy1 := run()
	dx2, dy2 := run()
	if dx1 == 0 && dy1 == 0 {
		t.Fatal("coincident pair never separated")
	}
	if dx1 != dx2 || dy1 != dy2 {
		t.Errorf("separation (%v, %v) and (%v, %v) differ across runs", dx1, dy1, dx2, dy2)
	}
}

func TestZeroGravityNodeDoesNotDrift(t *testing.T) {
	n := &graph.Node{ID: "a", X: 500, Y: 500, HasPosition: true}
	g := &graph.Graph{Nodes: []*graph.Node{n}}

	e := New(WithCenterFunc(func(*graph.Node) (float64, float64, float64) {
		return 0, 0, 0
	}))
	if err := e.Init(g); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if n.X != 500 || n.Y != 500 {
		t.Errorf("node moved to (%v, %v), want (500, 500)", n.X, n.Y)
	}
}

func TestSeedingIsReproducible(t *testing.T) {
	run := func() []*graph.Node {
		g := testGraph([]string{"a", "b", "c", "d"}, []graph.Edge{
			{Source: "a", Target: "b"},
			{Source: "c", Target: "d"},
		})
		e := New(WithSeed(7), WithMaxIteration(20), WithMinMovement(1e-9))
		if err := e.Init(g); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if err := e.Execute(); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		return g.Nodes
	}

	first, second := run(), run()
	for i := range first {
		if first[i].X != second[i].X || first[i].Y != second[i].Y {
			t.Errorf("node %s: run 1 at (%v, %v), run 2 at (%v, %v)",
				first[i].ID, first[i].X, first[i].Y, second[i].X, second[i].Y)
		}
	}
}

func TestMaxIterationCapsRun(t *testing.T) {
	ticks := 0
	e := New(
		WithMaxIteration(5),
		WithMinMovement(1e-12),
		OnTick(func([]*graph.Node) { ticks++ }),
	)
	if err := e.Init(testGraph([]string{"a", "b"}, []graph.Edge{{Source: "a", Target: "b"}})); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if ticks != 5 {
		t.Errorf("tick callback fired %d times, want exactly 5", ticks)
	}
}

// =============================================================================
// Offloaded execution
// =============================================================================

func TestOffloadEmitsTickMessages(t *testing.T) {
	const steps = 5
	msgs := make(chan layout.TickMessage, steps)

	e := New(WithOffload(true), WithMaxIteration(steps), WithMinMovement(1e-12))
	e.SetEnvironment(layout.ExecutionEnvironment{Messages: msgs})
	if err := e.Init(testGraph([]string{"a", "b"}, []graph.Edge{{Source: "a", Target: "b"}})); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	close(msgs)

	tick := 0
	for msg := range msgs {
		tick++
		if msg.Type != "tick" {
			t.Errorf("message %d: type = %q, want %q", tick, msg.Type, "tick")
		}
		if msg.CurrentTick != tick {
			t.Errorf("message %d: currentTick = %d, want %d", tick, msg.CurrentTick, tick)
		}
		if msg.TotalTicks != steps {
			t.Errorf("message %d: totalTicks = %d, want %d", tick, msg.TotalTicks, steps)
		}
		if len(msg.Nodes) != 2 {
			t.Errorf("message %d: %d nodes, want 2", tick, len(msg.Nodes))
		}
	}
	if tick != steps {
		t.Errorf("received %d messages, want %d", tick, steps)
	}
	if got := e.State(); got != layout.StateIdle {
		t.Errorf("State() = %v, want %v", got, layout.StateIdle)
	}
}

func TestOffloadWithoutChannelDowngrades(t *testing.T) {
	ticks := 0
	endCalls := 0
	e := New(
		WithOffload(true),
		WithMaxIteration(3),
		WithMinMovement(1e-12),
		OnTick(func([]*graph.Node) { ticks++ }),
		OnLayoutEnd(func() { endCalls++ }),
	)
	if err := e.Init(testGraph([]string{"a", "b"}, nil)); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := e.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if ticks != 3 {
		t.Errorf("tick callback fired %d times, want 3", ticks)
	}
	if endCalls != 1 {
		t.Errorf("end callback fired %d times, want 1", endCalls)
	}
}

// =============================================================================
// Configuration resolution
// =============================================================================

func TestResolveMassPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		getMass func(*graph.Node) float64
		node    *graph.Node
		degree  int
		want    float64
	}{
		{name: "custom function wins", getMass: func(*graph.Node) float64 { return 9 }, node: &graph.Node{Mass: 4}, degree: 2, want: 9},
		{name: "explicit node mass", node: &graph.Node{Mass: 4}, degree: 2, want: 4},
		{name: "degree fallback", node: &graph.Node{}, degree: 3, want: 3},
		{name: "isolated node floors at one", node: &graph.Node{}, degree: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveMass(tt.getMass, tt.node, tt.degree); got != tt.want {
				t.Errorf("resolveMass() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPerEdgeOverridesBeatGlobals(t *testing.T) {
	g := &graph.Graph{
		Nodes: []*graph.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []graph.Edge{
			{Source: "a", Target: "b", Strength: 50, Distance: 30},
			{Source: "b", Target: "c"},
		},
	}
	e := New(WithEdgeStrength(200), WithLinkDistance(100))
	if err := e.Init(g); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	cfg, err := e.resolve()
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if got := cfg.springs[0]; got.strength != 50 || got.length != 30 {
		t.Errorf("spring 0 = {strength: %v, length: %v}, want {50, 30}", got.strength, got.length)
	}
	if got := cfg.springs[1]; got.strength != 200 || got.length != 100 {
		t.Errorf("spring 1 = {strength: %v, length: %v}, want {200, 100}", got.strength, got.length)
	}
}

func TestStepIntervalDecays(t *testing.T) {
	cfg := &stepConfig{interval: 0.1}

	if got := cfg.stepInterval(0); got != 0.1 {
		t.Errorf("stepInterval(0) = %v, want 0.1", got)
	}
	if got := cfg.stepInterval(10); math.Abs(got-0.08) > 1e-12 {
		t.Errorf("stepInterval(10) = %v, want 0.08", got)
	}
	if got := cfg.stepInterval(10000); got != minInterval {
		t.Errorf("stepInterval(10000) = %v, want floor %v", got, minInterval)
	}
}
