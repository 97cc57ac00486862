// Package graph defines the shared graph payload consumed and mutated by the
// layout engines.
//
// The model is serialization-first: the JSON format used by the CLI, the HTTP
// API, and the cache is the same structure the engines operate on. Nodes are
// owned by the caller and mutated in place (the engines write final x/y
// coordinates back onto them); edges are read-only inputs.
//
// # Format
//
//	{
//	  "nodes": [{"id": "a", "x": 10, "y": 20, "size": 8}, {"id": "b"}],
//	  "edges": [{"source": "a", "target": "b", "distance": 120}]
//	}
//
// Node positions are optional on input. A node's size may be a scalar or a
// [width, height] pair; the pair form is stored in Width/Height and the max
// of the two (halved) acts as the collision radius.
//
// Use [ReadGraphFile] / [WriteGraphFile] for files, [UnmarshalGraph] /
// [MarshalGraph] for in-memory data.
package graph
