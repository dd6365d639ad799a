package reduction

import (
	"sort"

	"github.com/symphorien/nix-du/depgraph"
)

// TransitiveReduction removes every edge u → v for which a longer path
// from u to v exists, preserving the reachability closure.
//
// Cycles are handled by splitting edges along a reverse-DFS-postorder
// ranking: back edges are set aside, the reduction runs on the remaining
// DAG, and the back edges are reapplied afterwards, together with every
// edge out of the root. The result is minimal on the acyclic part only,
// which is fine: back edges are rare in a store.
//
// Panics when some nodes are not reachable from the root.
func TransitiveReduction(di *depgraph.DepInfos) *depgraph.DepInfos {
	g := di.Graph
	n := g.NodeCount()

	post := postorderFrom(g, di.Root)
	if len(post) != n {
		panic("reduction: TransitiveReduction called with unreachable nodes")
	}
	// reverse DFS postorder is a topological order of the forward edges
	rank := make([]int, n)
	byRank := make([]int64, n)
	for i, id := range post {
		r := n - 1 - i
		rank[id] = r
		byRank[r] = id
	}
	isBack := func(e depgraph.Edge) bool { return rank[e.From] >= rank[e.To] }

	// forward adjacency, expressed in ranks
	succ := make([][]int, n)
	for _, e := range g.Edges() {
		if !isBack(e) {
			succ[rank[e.From]] = append(succ[rank[e.From]], rank[e.To])
		}
	}

	// Reduce bottom-up: an edge to a child already known reachable
	// through an earlier-ranked sibling is redundant. reach[u] holds
	// the forward closure of u once u has been processed.
	reach := make([]bitset, n)
	var reduced []depgraph.Edge
	for u := n - 1; u >= 0; u-- {
		reach[u] = newBitset(n)
		sort.Ints(succ[u])
		for _, v := range succ[u] {
			if reach[u].has(v) {
				continue
			}
			reduced = append(reduced, depgraph.Edge{From: byRank[u], To: byRank[v]})
			reach[u].or(reach[v])
			reach[u].set(v)
		}
	}

	// reassemble: all nodes, back edges, root edges, reduced edges
	newGraph := depgraph.NewDepGraph()
	for _, node := range g.Nodes() {
		newGraph.AddNode(node.Description, node.Size)
	}
	for _, e := range g.Edges() {
		if isBack(e) || e.From == di.Root {
			newGraph.AddEdge(e.From, e.To)
		}
	}
	for _, e := range reduced {
		newGraph.AddEdge(e.From, e.To)
	}

	return &depgraph.DepInfos{Graph: newGraph, Root: di.Root, Metadata: di.Metadata}
}

// postorderFrom returns the DFS postorder of the nodes reachable from
// start, expanding neighbors in ascending id order.
func postorderFrom(g *depgraph.DepGraph, start int64) []int64 {
	type frame struct {
		id       int64
		children []int64
		next     int
	}
	seen := make([]bool, g.NodeCount())
	seen[start] = true
	stack := []frame{{id: start, children: g.From(start)}}
	var post []int64
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.next < len(f.children) {
			c := f.children[f.next]
			f.next++
			if !seen[c] {
				seen[c] = true
				stack = append(stack, frame{id: c, children: g.From(c)})
			}
			continue
		}
		post = append(post, f.id)
		stack = stack[:len(stack)-1]
	}
	return post
}

// bitset is a fixed-size bit vector over node ranks.
type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (b bitset) set(i int)      { b[i/64] |= 1 << (uint(i) % 64) }
func (b bitset) has(i int) bool { return b[i/64]&(1<<(uint(i)%64)) != 0 }

func (b bitset) or(o bitset) {
	for i, w := range o {
		b[i] |= w
	}
}
