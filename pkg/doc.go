// Package pkg provides the core libraries for forcegraph layout computation.
//
// # Overview
//
// Forcegraph computes 2D positions for node-link graphs. The pkg directory
// is organized into five main areas:
//
//  1. [layout] - Layout engines (force simulation, circular placement, Graphviz delegation)
//  2. [graph] - Serialization types for graphs (JSON node-link format)
//  3. [cache] - Layout result caching (file, redis, null backends)
//  4. [pipeline] - Orchestration (load → layout → cache) shared by CLI and server
//  5. [errors] / [observability] - Structured errors and instrumentation hooks
//
// # Architecture
//
// The typical data flow through forcegraph:
//
//	graph.json (nodes + edges)
//	         ↓
//	    [graph] package (decode + validate)
//	         ↓
//	    [pipeline] package (cache lookup, algorithm dispatch)
//	         ↓
//	    [layout/force] | [layout/circular] | [layout/dot]
//	         ↓
//	    positioned graph.json output
//
// # Quick Start
//
// Run a force simulation directly:
//
//	import (
//	    "github.com/matzehuels/forcegraph/pkg/graph"
//	    "github.com/matzehuels/forcegraph/pkg/layout/force"
//	)
//
//	g, _ := graph.ReadGraphFile("graph.json")
//	engine := force.New(force.WithMaxIteration(500))
//	defer engine.Destroy()
//	_ = engine.Init(g)
//	_ = engine.Execute() // nodes now carry X/Y positions
//
// Or go through the pipeline to get caching and validation:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, _ := runner.Execute(ctx, pipeline.Options{
//	    Input:     "graph.json",
//	    Algorithm: "force",
//	})
//
// # Main Packages
//
// [layout] - Shared engine contracts: the lifecycle state machine, step
// schedulers, and the execution environment for offloaded runs.
//
// [layout/force] - Iterative force-directed simulation with repulsion,
// spring attraction, gravity, optional overlap avoidance, and pinned nodes.
//
// [layout/circular] - Single-pass ring and spiral placement with degree and
// topology-based node orderings.
//
// [layout/dot] - Delegation to Graphviz engines (dot, neato, fdp) with the
// result scaled into the requested layout area.
//
// [graph] - Node/edge types and the JSON node-link wire format.
//
// [cache] - Content-addressed layout caching keyed by graph hash plus layout
// parameters. File, redis, and null backends.
//
// [pipeline] - The load → layout pipeline used by both the CLI and the HTTP
// server, ensuring consistent behavior across entry points.
//
// [errors] - Structured errors with stable codes and user-facing messages.
//
// [observability] - Hook points for layout and cache instrumentation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/layout/...      # Layout engines only
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/layout
// [layout/force]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/layout/force
// [layout/circular]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/layout/circular
// [layout/dot]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/layout/dot
// [graph]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/graph
// [cache]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/observability
package pkg
