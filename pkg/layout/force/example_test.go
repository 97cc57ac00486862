package force_test

import (
	"fmt"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/layout/force"
)

func ExampleEngine() {
	// Simulate a small star graph until it converges or hits the
	// iteration cap. The default immediate scheduler runs the whole
	// simulation synchronously inside Execute.
	g := &graph.Graph{
		Nodes: []*graph.Node{{ID: "hub"}, {ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []graph.Edge{
			{Source: "hub", Target: "a"},
			{Source: "hub", Target: "b"},
			{Source: "hub", Target: "c"},
		},
	}

	engine := force.New(
		force.WithMaxIteration(200),
		force.WithSeed(7),
		force.OnLayoutEnd(func() { fmt.Println("layout complete") }),
	)
	defer engine.Destroy()

	if err := engine.Init(g); err != nil {
		fmt.Println("init:", err)
		return
	}
	if err := engine.Execute(); err != nil {
		fmt.Println("execute:", err)
		return
	}

	fmt.Println("state:", engine.State())
	fmt.Println("positioned nodes:", len(g.Nodes))
	// Output:
	// layout complete
	// state: idle
	// positioned nodes: 4
}

func ExampleEngine_pinned() {
	// A node with both fx and fy set never moves.
	fx, fy := 10.0, 20.0
	g := &graph.Graph{
		Nodes: []*graph.Node{
			{ID: "pinned", FX: &fx, FY: &fy},
			{ID: "free"},
		},
		Edges: []graph.Edge{{Source: "pinned", Target: "free"}},
	}

	engine := force.New(force.WithMaxIteration(50), force.WithSeed(7))
	defer engine.Destroy()

	_ = engine.Init(g)
	_ = engine.Execute()

	fmt.Printf("pinned: (%g, %g)\n", g.Nodes[0].X, g.Nodes[0].Y)
	// Output:
	// pinned: (10, 20)
}
