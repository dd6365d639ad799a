package depgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symphorien/nix-du/depgraph"
)

func pathNode(g *depgraph.DepGraph, name string, size uint64) int64 {
	return g.AddNode(depgraph.NewPathDescription("/nix/store/"+name), size)
}

// TestGraph_AddNode checks that ids are dense and insertion-ordered.
func TestGraph_AddNode(t *testing.T) {
	g := depgraph.NewDepGraph()
	a := pathNode(g, "a", 1)
	b := pathNode(g, "b", 2)
	assert.Equal(t, int64(0), a)
	assert.Equal(t, int64(1), b)
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, uint64(2), g.Node(b).Size)
	assert.Nil(t, g.Node(17))
}

// TestGraph_AddEdge checks self-loop and duplicate handling.
func TestGraph_AddEdge(t *testing.T) {
	g := depgraph.NewDepGraph()
	a := pathNode(g, "a", 1)
	b := pathNode(g, "b", 2)

	assert.True(t, g.AddEdge(a, b))
	assert.False(t, g.AddEdge(a, b), "duplicate edge must be dropped")
	assert.False(t, g.AddEdge(a, a), "self-loop must be dropped")
	assert.Equal(t, 1, g.EdgeCount())
	assert.True(t, g.HasEdge(a, b))
	assert.False(t, g.HasEdge(b, a))
}

// TestGraph_Neighbors checks that neighbor iteration is sorted.
func TestGraph_Neighbors(t *testing.T) {
	g := depgraph.NewDepGraph()
	a := pathNode(g, "a", 0)
	b := pathNode(g, "b", 0)
	c := pathNode(g, "c", 0)
	g.AddEdge(a, c)
	g.AddEdge(a, b)
	g.AddEdge(b, c)

	assert.Equal(t, []int64{b, c}, g.From(a))
	assert.Equal(t, []int64{a, b}, g.To(c))
	assert.Empty(t, g.From(c))
}

// TestGraph_RemoveEdge checks removal from both tables.
func TestGraph_RemoveEdge(t *testing.T) {
	g := depgraph.NewDepGraph()
	a := pathNode(g, "a", 0)
	b := pathNode(g, "b", 0)
	g.AddEdge(a, b)
	g.RemoveEdge(a, b)
	assert.False(t, g.HasEdge(a, b))
	assert.Equal(t, 0, g.EdgeCount())
	// removing an absent edge is a no-op
	g.RemoveEdge(a, b)
	assert.Equal(t, 0, g.EdgeCount())
}

// TestGraph_BFSOrder checks layer order and deterministic expansion.
func TestGraph_BFSOrder(t *testing.T) {
	g := depgraph.NewDepGraph()
	// 0 -> {2, 1}, 1 -> 3, 2 -> 3
	n0 := pathNode(g, "n0", 0)
	n1 := pathNode(g, "n1", 0)
	n2 := pathNode(g, "n2", 0)
	n3 := pathNode(g, "n3", 0)
	g.AddEdge(n0, n2)
	g.AddEdge(n0, n1)
	g.AddEdge(n1, n3)
	g.AddEdge(n2, n3)

	var order []int64
	g.BFS(n0, func(id int64) { order = append(order, id) })
	assert.Equal(t, []int64{n0, n1, n2, n3}, order)
}

// TestGraph_DFSVisitsOnce checks each reachable node is seen exactly once.
func TestGraph_DFSVisitsOnce(t *testing.T) {
	g := depgraph.NewDepGraph()
	a := pathNode(g, "a", 0)
	b := pathNode(g, "b", 0)
	c := pathNode(g, "c", 0)
	d := pathNode(g, "d", 0) // unreachable
	g.AddEdge(a, b)
	g.AddEdge(a, c)
	g.AddEdge(b, c)

	seen := map[int64]int{}
	g.DFS(a, func(id int64) { seen[id]++ })
	assert.Equal(t, map[int64]int{a: 1, b: 1, c: 1}, seen)
	assert.NotContains(t, seen, d)
}

// TestGraph_Externals returns nodes without incoming edges.
func TestGraph_Externals(t *testing.T) {
	g := depgraph.NewDepGraph()
	a := pathNode(g, "a", 0)
	b := pathNode(g, "b", 0)
	c := pathNode(g, "c", 0)
	g.AddEdge(a, b)
	g.AddEdge(b, c)
	assert.Equal(t, []int64{a}, g.Externals())
}

// TestGraph_Clone checks independence of the copy.
func TestGraph_Clone(t *testing.T) {
	g := depgraph.NewDepGraph()
	a := pathNode(g, "a", 10)
	b := pathNode(g, "b", 20)
	g.AddEdge(a, b)

	c := g.Clone()
	require.Equal(t, 2, c.NodeCount())
	require.True(t, c.HasEdge(a, b))

	c.Node(a).Size = 99
	c.AddEdge(b, a)
	assert.Equal(t, uint64(10), g.Node(a).Size)
	assert.False(t, g.HasEdge(b, a))
}
