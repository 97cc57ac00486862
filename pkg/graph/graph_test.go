package graph

import (
	"strings"
	"testing"

	"github.com/matzehuels/forcegraph/pkg/errors"
)

func TestUnmarshalGraph(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		wantEdges int
		wantErr   errors.Code
		check     func(t *testing.T, g *Graph)
	}{
		{
			name:  "Empty",
			input: `{"nodes": [], "edges": []}`,
		},
		{
			name:      "Simple",
			input:     `{"nodes": [{"id": "a"}, {"id": "b"}], "edges": [{"source": "a", "target": "b"}]}`,
			wantNodes: 2,
			wantEdges: 1,
		},
		{
			name:      "PositionPresence",
			input:     `{"nodes": [{"id": "a", "x": 3, "y": 4}, {"id": "b", "x": 1}], "edges": []}`,
			wantNodes: 2,
			check: func(t *testing.T, g *Graph) {
				if !g.Nodes[0].HasPosition {
					t.Error("node a should have a position")
				}
				if g.Nodes[0].X != 3 || g.Nodes[0].Y != 4 {
					t.Errorf("node a at (%v, %v), want (3, 4)", g.Nodes[0].X, g.Nodes[0].Y)
				}
				if g.Nodes[1].HasPosition {
					t.Error("node b has only x, should not count as positioned")
				}
			},
		},
		{
			name:      "ScalarSize",
			input:     `{"nodes": [{"id": "a", "size": 12}], "edges": []}`,
			wantNodes: 1,
			check: func(t *testing.T, g *Graph) {
				if got := g.Nodes[0].Radius(); got != 12 {
					t.Errorf("Radius() = %v, want 12", got)
				}
			},
		},
		{
			name:      "PairSize",
			input:     `{"nodes": [{"id": "a", "size": [10, 24]}], "edges": []}`,
			wantNodes: 1,
			check: func(t *testing.T, g *Graph) {
				if got := g.Nodes[0].Radius(); got != 12 {
					t.Errorf("Radius() = %v, want max(10,24)/2 = 12", got)
				}
			},
		},
		{
			name:      "PinnedNode",
			input:     `{"nodes": [{"id": "a", "fx": 5, "fy": 6}], "edges": []}`,
			wantNodes: 1,
			check: func(t *testing.T, g *Graph) {
				if !g.Nodes[0].Pinned() {
					t.Error("node with fx and fy should be pinned")
				}
			},
		},
		{
			name:    "DuplicateID",
			input:   `{"nodes": [{"id": "a"}, {"id": "a"}], "edges": []}`,
			wantErr: errors.ErrCodeDuplicateNode,
		},
		{
			name:    "UnknownEndpoint",
			input:   `{"nodes": [{"id": "a"}], "edges": [{"source": "a", "target": "ghost"}]}`,
			wantErr: errors.ErrCodeUnknownEndpoint,
		},
		{
			name:    "EmptyID",
			input:   `{"nodes": [{"id": ""}], "edges": []}`,
			wantErr: errors.ErrCodeInvalidGraph,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := UnmarshalGraph([]byte(tt.input))
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want code %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalGraph: %v", err)
			}
			if got := len(g.Nodes); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := len(g.Edges); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, g)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	fx, fy := 1.5, -2.5
	g := &Graph{
		Nodes: []*Node{
			{ID: "a", X: 10, Y: 20, HasPosition: true, Size: 8},
			{ID: "b", FX: &fx, FY: &fy},
		},
		Edges: []Edge{{Source: "a", Target: "b", Distance: 120}},
	}

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}

	back, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("UnmarshalGraph: %v", err)
	}

	if back.Nodes[0].X != 10 || back.Nodes[0].Y != 20 {
		t.Errorf("node a at (%v, %v), want (10, 20)", back.Nodes[0].X, back.Nodes[0].Y)
	}
	if !back.Nodes[1].Pinned() {
		t.Error("pinned flag lost in round trip")
	}
	if back.Edges[0].Distance != 120 {
		t.Errorf("edge distance = %v, want 120", back.Edges[0].Distance)
	}
}

func TestDegrees(t *testing.T) {
	g := &Graph{
		Nodes: []*Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []Edge{
			{Source: "a", Target: "b"},
			{Source: "a", Target: "c"},
			{Source: "b", Target: "c"},
		},
	}

	got := g.Degrees()
	want := []int{2, 2, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("degree[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDegreeCountsIgnoresUnknownEndpoints(t *testing.T) {
	idx := map[string]int{"a": 0, "b": 1}
	edges := []Edge{
		{Source: "a", Target: "b"},
		{Source: "a", Target: "ghost"},
		{Source: "ghost", Target: "phantom"},
	}

	got := DegreeCounts(idx, 2, edges)
	want := []int{2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("degree[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSanitizeEdges(t *testing.T) {
	edges := []Edge{{
		Source: "a",
		Target: "b",
		Meta: map[string]any{
			"startPoint": map[string]float64{"x": 1, "y": 2},
			"label":      "depends",
		},
	}}

	clean := SanitizeEdges(edges)

	if _, ok := clean[0].Meta["startPoint"]; ok {
		t.Error("geometry key survived sanitization")
	}
	if clean[0].Meta["label"] != "depends" {
		t.Error("caller annotation dropped")
	}
	// Original must be untouched.
	if _, ok := edges[0].Meta["startPoint"]; !ok {
		t.Error("sanitization mutated the caller's edge")
	}
}

func TestReadGraphRejectsGarbage(t *testing.T) {
	_, err := ReadGraph(strings.NewReader("not json"))
	if err == nil {
		t.Fatal("expected decode error")
	}
}
