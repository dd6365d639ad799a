package depgraph

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Edge is a dependency: From needs To.
type Edge struct {
	From, To int64
}

// DepGraph is the dependency graph container. Topology lives in a gonum
// simple.DirectedGraph; on top of it the container keeps insertion-ordered
// node and edge tables, so iteration is deterministic and node ids are
// dense (id == insertion rank). Nodes are never deleted; passes that drop
// nodes build a fresh graph instead.
type DepGraph struct {
	g     *simple.DirectedGraph
	nodes []*DepNode
	edges []Edge
}

// NewDepGraph returns an empty graph.
func NewDepGraph() *DepGraph {
	return &DepGraph{g: simple.NewDirectedGraph()}
}

// AddNode inserts a node and returns its id.
func (dg *DepGraph) AddNode(desc NodeDescription, size uint64) int64 {
	n := &DepNode{Description: desc, Size: size, id: int64(len(dg.nodes))}
	dg.nodes = append(dg.nodes, n)
	dg.g.AddNode(n)
	return n.id
}

// Node returns the node with the given id, or nil if out of range.
func (dg *DepGraph) Node(id int64) *DepNode {
	if id < 0 || id >= int64(len(dg.nodes)) {
		return nil
	}
	return dg.nodes[id]
}

// Nodes returns all nodes in insertion order. The slice is owned by the
// graph; callers must not modify it.
func (dg *DepGraph) Nodes() []*DepNode { return dg.nodes }

// NodeCount returns the number of nodes.
func (dg *DepGraph) NodeCount() int { return len(dg.nodes) }

// EdgeCount returns the number of edges.
func (dg *DepGraph) EdgeCount() int { return len(dg.edges) }

// AddEdge inserts the edge from → to and reports whether it was added.
// Self-loops and edges already present are dropped, so the edge table
// never holds duplicates.
func (dg *DepGraph) AddEdge(from, to int64) bool {
	if from == to || dg.g.HasEdgeFromTo(from, to) {
		return false
	}
	dg.g.SetEdge(dg.g.NewEdge(dg.nodes[from], dg.nodes[to]))
	dg.edges = append(dg.edges, Edge{From: from, To: to})
	return true
}

// RemoveEdge deletes the edge from → to if present. Nodes are untouched.
func (dg *DepGraph) RemoveEdge(from, to int64) {
	if !dg.g.HasEdgeFromTo(from, to) {
		return
	}
	dg.g.RemoveEdge(from, to)
	for i, e := range dg.edges {
		if e.From == from && e.To == to {
			dg.edges = append(dg.edges[:i], dg.edges[i+1:]...)
			break
		}
	}
}

// HasEdge reports whether the edge from → to is present.
func (dg *DepGraph) HasEdge(from, to int64) bool {
	return dg.g.HasEdgeFromTo(from, to)
}

// Edges returns all edges in insertion order. The slice is owned by the
// graph; callers must not modify it.
func (dg *DepGraph) Edges() []Edge { return dg.edges }

// From returns the out-neighbors of id in ascending id order.
func (dg *DepGraph) From(id int64) []int64 {
	return sortedIDs(dg.g.From(id))
}

// To returns the in-neighbors of id in ascending id order.
func (dg *DepGraph) To(id int64) []int64 {
	return sortedIDs(dg.g.To(id))
}

// Directed exposes the underlying gonum graph for algorithms that consume
// the graph.Directed interface. Mutations must go through DepGraph.
func (dg *DepGraph) Directed() *simple.DirectedGraph { return dg.g }

// Clone returns a deep copy of the graph. Node payloads are shared (they
// are immutable); sizes are copied.
func (dg *DepGraph) Clone() *DepGraph {
	out := NewDepGraph()
	for _, n := range dg.nodes {
		out.AddNode(n.Description, n.Size)
	}
	for _, e := range dg.edges {
		out.AddEdge(e.From, e.To)
	}
	return out
}

// BFS visits every node reachable from start in breadth-first order,
// expanding neighbors in ascending id order, and calls visit on each node
// exactly once, start included.
func (dg *DepGraph) BFS(start int64, visit func(id int64)) {
	seen := make([]bool, len(dg.nodes))
	queue := []int64{start}
	seen[start] = true
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		visit(v)
		for _, w := range dg.From(v) {
			if !seen[w] {
				seen[w] = true
				queue = append(queue, w)
			}
		}
	}
}

// DFS visits every node reachable from start with an explicit stack,
// expanding neighbors in ascending id order, and calls visit on each node
// exactly once, start included. Nodes are marked when pushed, so the visit
// order can differ from a recursive depth-first preorder.
func (dg *DepGraph) DFS(start int64, visit func(id int64)) {
	seen := make([]bool, len(dg.nodes))
	stack := []int64{start}
	seen[start] = true
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(v)
		next := dg.From(v)
		// push in reverse so the lowest id is expanded first
		for i := len(next) - 1; i >= 0; i-- {
			if w := next[i]; !seen[w] {
				seen[w] = true
				stack = append(stack, w)
			}
		}
	}
}

// Externals returns, in ascending order, the ids of nodes with no incoming
// edges.
func (dg *DepGraph) Externals() []int64 {
	var out []int64
	for _, n := range dg.nodes {
		if len(graph.NodesOf(dg.g.To(n.id))) == 0 {
			out = append(out, n.id)
		}
	}
	return out
}

func sortedIDs(it graph.Nodes) []int64 {
	nodes := graph.NodesOf(it)
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID()
	}
	slices.Sort(ids)
	return ids
}
