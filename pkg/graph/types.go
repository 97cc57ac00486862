package graph

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/forcegraph/pkg/errors"
)

// =============================================================================
// Node
// =============================================================================

// Node is a single layout subject. Engines mutate X and Y in place; all other
// fields are caller-supplied inputs.
//
// A node with both FX and FY set is pinned: the physics engine snaps it to
// (FX, FY) on every step regardless of accumulated force.
type Node struct {
	ID string // Unique identifier within one graph

	X, Y float64 // Current position, updated by the engines

	// HasPosition reports whether the input payload carried explicit
	// coordinates. Nodes without a position are randomly seeded by the
	// physics engine before the first step.
	HasPosition bool

	FX, FY *float64 // Pinned position (both must be set to take effect)

	// Size is the scalar collision radius. Width/Height are the pair form;
	// when both are set, max(Width, Height)/2 acts as the radius. Zero means
	// unspecified (engine-level size configuration applies).
	Size          float64
	Width, Height float64

	// Mass overrides the degree-derived mass when positive.
	Mass float64

	// Weight mirrors the node degree after a circular layout run.
	Weight float64
}

// Pinned reports whether the node has a full pinned position.
func (n *Node) Pinned() bool { return n.FX != nil && n.FY != nil }

// Radius resolves the node's own collision radius, or 0 if unspecified.
// Precedence: scalar size, then max of the width/height pair halved.
func (n *Node) Radius() float64 {
	if n.Size > 0 {
		return n.Size
	}
	if n.Width > 0 || n.Height > 0 {
		m := n.Width
		if n.Height > m {
			m = n.Height
		}
		return m / 2
	}
	return 0
}

// nodePayload is the wire form of Node. Pointer fields distinguish absent
// from zero, and size accepts either a scalar or a [width, height] pair.
type nodePayload struct {
	ID     string          `json:"id"`
	X      *float64        `json:"x,omitempty"`
	Y      *float64        `json:"y,omitempty"`
	FX     *float64        `json:"fx,omitempty"`
	FY     *float64        `json:"fy,omitempty"`
	Size   json.RawMessage `json:"size,omitempty"`
	Mass   *float64        `json:"mass,omitempty"`
	Weight *float64        `json:"weight,omitempty"`
}

// MarshalJSON emits the wire form. Positions are always written (they are
// the whole point of a layout run); weight only after a circular run.
func (n *Node) MarshalJSON() ([]byte, error) {
	p := nodePayload{
		ID: n.ID,
		X:  &n.X,
		Y:  &n.Y,
		FX: n.FX,
		FY: n.FY,
	}
	if n.Size > 0 {
		raw, _ := json.Marshal(n.Size)
		p.Size = raw
	} else if n.Width > 0 || n.Height > 0 {
		raw, _ := json.Marshal([2]float64{n.Width, n.Height})
		p.Size = raw
	}
	if n.Mass > 0 {
		p.Mass = &n.Mass
	}
	if n.Weight > 0 {
		p.Weight = &n.Weight
	}
	return json.Marshal(p)
}

// UnmarshalJSON decodes the wire form, recording position presence and
// resolving the scalar-or-pair size variant.
func (n *Node) UnmarshalJSON(data []byte) error {
	var p nodePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	n.ID = p.ID
	n.FX = p.FX
	n.FY = p.FY
	if p.X != nil && p.Y != nil {
		n.X, n.Y = *p.X, *p.Y
		n.HasPosition = true
	}
	if p.Mass != nil {
		n.Mass = *p.Mass
	}
	if p.Weight != nil {
		n.Weight = *p.Weight
	}

	if len(p.Size) > 0 {
		var scalar float64
		if err := json.Unmarshal(p.Size, &scalar); err == nil {
			n.Size = scalar
		} else {
			var pair [2]float64
			if err := json.Unmarshal(p.Size, &pair); err != nil {
				return fmt.Errorf("node %s: size must be a number or [width, height]", p.ID)
			}
			n.Width, n.Height = pair[0], pair[1]
		}
	}

	return nil
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a directed connection between two nodes, identified by ID.
// Edges are read-only inputs; engines copy them before use so that
// caller-supplied edge values are never mutated.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`

	// Strength and Distance override the engine-level edge strength and
	// ideal length for this edge. Zero means no override.
	Strength float64 `json:"strength,omitempty"`
	Distance float64 `json:"distance,omitempty"`

	// Meta carries caller annotations. Geometry keys written by rendering
	// front-ends are stripped when an engine takes its internal copy.
	Meta map[string]any `json:"meta,omitempty"`
}

// geometryMetaKeys are rendering artifacts that must not leak into engine
// state when edges are copied during Init.
var geometryMetaKeys = map[string]bool{
	"startPoint":   true,
	"endPoint":     true,
	"controlPoint": true,
	"x":            true,
	"y":            true,
}

// Sanitize returns a copy of the edge with geometry-only metadata removed.
// The receiver is never modified.
func (e Edge) Sanitize() Edge {
	if e.Meta == nil {
		return e
	}
	clean := make(map[string]any, len(e.Meta))
	for k, v := range e.Meta {
		if !geometryMetaKeys[k] {
			clean[k] = v
		}
	}
	if len(clean) == 0 {
		e.Meta = nil
	} else {
		e.Meta = clean
	}
	return e
}

// SanitizeEdges returns sanitized copies of all edges. The returned slice is
// freshly allocated; the input slice and its edges are left untouched.
func SanitizeEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = e.Sanitize()
	}
	return out
}

// =============================================================================
// Graph
// =============================================================================

// Graph is the payload handed to a layout engine: an ordered node sequence
// and an ordered edge sequence. Node order is significant (it is the
// identity ordering for circular placement).
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []Edge  `json:"edges"`
}

// Validate checks structural integrity: valid unique node IDs and edge
// endpoints that refer to existing nodes. Engines call this during Init so
// malformed payloads fail fast instead of silently corrupting layout state.
func (g *Graph) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return err
		}
		if seen[n.ID] {
			return errors.New(errors.ErrCodeDuplicateNode, "duplicate node id: %s", n.ID)
		}
		seen[n.ID] = true
	}
	for _, e := range g.Edges {
		if !seen[e.Source] {
			return errors.New(errors.ErrCodeUnknownEndpoint, "edge source %q is not a node", e.Source)
		}
		if !seen[e.Target] {
			return errors.New(errors.ErrCodeUnknownEndpoint, "edge target %q is not a node", e.Target)
		}
	}
	return nil
}

// Index returns a node-id → slice-index lookup map.
func (g *Graph) Index() map[string]int {
	m := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		m[n.ID] = i
	}
	return m
}

// Degrees computes the per-node degree (incident edge count, both directions
// counted once) in node order. Unknown endpoints are ignored; Validate
// catches them separately.
func (g *Graph) Degrees() []int {
	return DegreeCounts(g.Index(), len(g.Nodes), g.Edges)
}

// DegreeCounts computes per-node degrees against an existing id-to-index map,
// so callers that already built one avoid a second pass over the nodes.
func DegreeCounts(idx map[string]int, nodeCount int, edges []Edge) []int {
	degrees := make([]int, nodeCount)
	for _, e := range edges {
		if i, ok := idx[e.Source]; ok {
			degrees[i]++
		}
		if i, ok := idx[e.Target]; ok {
			degrees[i]++
		}
	}
	return degrees
}
