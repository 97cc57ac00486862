// Package circular places graph nodes on one or more angular bands around a
// shared center in a single synchronous pass.
//
// Placement depends only on each node's index in the chosen ordering, the
// radius schedule, and the angular schedule; node sizes are never consulted
// and no collision avoidance is performed. Orderings range from the input
// order through degree sorting to a greedy adjacency-preserving sequence that
// keeps connected nodes next to each other on the ring.
//
//	engine := circular.New(
//		circular.WithRadius(200),
//		circular.WithOrdering(circular.OrderingDegree),
//	)
//	if err := engine.Init(g); err != nil {
//		return err
//	}
//	if err := engine.Execute(); err != nil {
//		return err
//	}
package circular
