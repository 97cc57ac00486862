package circular

import (
	"sort"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

// orderByDegree sorts nodes by ascending degree. The sort is stable, so equal
// degrees keep their input order.
func orderByDegree(nodes []*graph.Node, degrees []int) []*graph.Node {
	order := make([]int, len(nodes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return degrees[order[a]] < degrees[order[b]]
	})

	ordered := make([]*graph.Node, len(nodes))
	for i, idx := range order {
		ordered[i] = nodes[idx]
	}
	return ordered
}

// adjacency is the per-node neighbor index the topology orderings walk.
// For directed graphs, children holds edge targets only; otherwise both
// endpoints record each other.
type adjacency struct {
	children [][]int
	pairs    map[[2]int]bool
}

func buildAdjacency(n int, edges []graph.Edge, idx map[string]int, directed bool) *adjacency {
	adj := &adjacency{
		children: make([][]int, n),
		pairs:    make(map[[2]int]bool, len(edges)),
	}
	for _, e := range edges {
		src, okS := idx[e.Source]
		tgt, okT := idx[e.Target]
		if !okS || !okT {
			continue
		}
		adj.pairs[[2]int{src, tgt}] = true
		adj.children[src] = append(adj.children[src], tgt)
		if !directed {
			adj.children[tgt] = append(adj.children[tgt], src)
		}
	}
	return adj
}

// connected reports whether any edge joins a and b, in either direction.
func (a *adjacency) connected(i, j int) bool {
	return a.pairs[[2]int{i, j}] || a.pairs[[2]int{j, i}]
}

// orderByTopology greedily builds a sequence that keeps adjacent nodes next
// to each other on the ring, shortening edge arcs at the cost of being an
// approximation with no global-optimality guarantee.
//
// Starting from node 0, each input node i is appended directly when it is
// still unplaced and is the last node, or differs in degree from its
// successor, or is adjacent to the most recently placed node. Otherwise the
// most recently placed node's recorded neighbors are scanned for an unplaced
// node of equal degree; failing that, the first unplaced node by index is
// taken.
func orderByTopology(nodes []*graph.Node, edges []graph.Edge, idx map[string]int, degrees []int, directed bool) []*graph.Node {
	n := len(nodes)
	adj := buildAdjacency(n, edges, idx, directed)

	ordered := make([]*graph.Node, 0, n)
	placed := make([]bool, n)
	ordered = append(ordered, nodes[0])
	placed[0] = true
	last := 0

	for i := 1; i < n; i++ {
		accept := i == n-1 || degrees[i] != degrees[i+1] || adj.connected(last, i)
		if accept && !placed[i] {
			ordered = append(ordered, nodes[i])
			placed[i] = true
			last = i
			continue
		}

		found := false
		for _, child := range adj.children[last] {
			if !placed[child] && degrees[child] == degrees[i] {
				ordered = append(ordered, nodes[child])
				placed[child] = true
				last = child
				found = true
				break
			}
		}
		if found {
			continue
		}
		for j := 0; j < n; j++ {
			if !placed[j] {
				ordered = append(ordered, nodes[j])
				placed[j] = true
				last = j
				break
			}
		}
	}
	return ordered
}
