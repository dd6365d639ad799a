package reduction_test

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/symphorien/nix-du/depgraph"
	"github.com/symphorien/nix-du/reduction"
)

// generateRandom builds a random DepInfos where
//   - every node has a distinct path, "0" to strconv(size-1);
//   - the first 62 nodes have size 1<<index, so a merged node's size
//     reveals exactly which original nodes it swallowed;
//   - the expected average out-degree is avgDegree.
//
// When connected is true, every node is made reachable from the root;
// otherwise reachability is random. Half of the time the graph is rooted
// in a store path instead of the synthetic dummy, as under the -r flag.
func generateRandom(rng *rand.Rand, size, avgDegree int, connected bool) *depgraph.DepInfos {
	g := depgraph.NewDepGraph()
	rooted := rng.Intn(2) == 0
	for i := 0; i < size; i++ {
		path := strconv.Itoa(i)
		var desc depgraph.NodeDescription
		switch {
		case rooted || i > 4 || rng.Intn(2) == 0:
			desc = depgraph.NewPathDescription(path)
		case rng.Intn(2) == 0:
			desc = depgraph.NewMemoryDescription(path)
		default:
			desc = depgraph.NewTemporaryDescription(path)
		}
		var sz uint64
		if i < 62 {
			sz = 1 << uint(i)
		} else {
			sz = 3 + 2*uint64(i)
		}
		g.AddNode(desc, sz)
	}
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			if rng.Intn(size-1) < avgDegree && !g.Node(int64(j)).Description.Kind().IsGCRoot() {
				g.AddEdge(int64(i), int64(j))
			}
		}
	}

	var root int64
	if rooted {
		root = g.AddNode(depgraph.NewPathDescription("root"), 42)
	} else {
		root = g.AddNode(depgraph.NewDummyDescription(), 0)
	}
	meta := depgraph.SizeMetadata{Reachable: depgraph.Connected}
	for _, idx := range g.Externals() {
		if idx == root {
			continue
		}
		if !rooted && rng.Intn(2) == 0 && g.Node(idx).Description.Kind() == depgraph.KindPath {
			// promote an orphan path to a symlink root
			p, _ := g.Node(idx).Description.Path()
			g.Node(idx).Description = depgraph.NewLinkDescription(p)
		}
		makeReachable := connected || g.Node(idx).Description.Kind().IsGCRoot() || rng.Intn(2) == 0
		if makeReachable {
			g.AddEdge(root, idx)
		} else {
			meta.Reachable = depgraph.Disconnected
		}
	}

	di := &depgraph.DepInfos{Graph: g, Root: root, Metadata: meta}
	// roots may also depend on each other
	roots := di.Roots()
	for _, i := range roots {
		for _, j := range roots {
			if j > i && rng.Intn(size-1) < avgDegree {
				g.AddEdge(i, j)
			}
		}
	}
	if _, err := topo.Sort(g.Directed()); err != nil {
		panic("the random graph has a cycle")
	}
	di.RecordMetadata()
	return di
}

// checkInvariants applies transform to a copy of di and asserts the
// pipeline invariants: reachable size, root identity, acyclicity, and no
// incoming edges on the root. When sameRoots is set the set of root
// names must also be preserved.
func checkInvariants(t *testing.T, transform func(*depgraph.DepInfos) *depgraph.DepInfos, di *depgraph.DepInfos, sameRoots bool) {
	t.Helper()
	orig := di.Clone()
	orig.CheckMetadata()

	out := transform(di)
	out.CheckMetadata()

	if sameRoots {
		assert.ElementsMatch(t, orig.RootsName(), out.RootsName(), "not the same roots")
	}
	assert.Equal(t, orig.ReachableSize(), out.ReachableSize(), "not the same reachable size")
	assert.True(t,
		out.Graph.Node(out.Root).Description.Equal(orig.Graph.Node(orig.Root).Description),
		"not the same root")
	_, err := topo.Sort(out.Graph.Directed())
	require.NoError(t, err, "the transformed graph has a cycle")
	assert.Empty(t, out.Graph.To(out.Root), "incoming edges to root")
}

// sizeToOldNodes decodes which of the original nodes a merged node
// swallowed, from the bits of its size.
func sizeToOldNodes(n *depgraph.DepNode) map[int64]bool {
	members := make(map[int64]bool)
	for i := 0; i < 62; i++ {
		if n.Size&(1<<uint(i)) != 0 {
			members[int64(i)] = true
		}
	}
	return members
}

// pathToOldID parses the node's path payload back to its id in the
// generating graph.
func pathToOldID(t *testing.T, n *depgraph.DepNode) int64 {
	t.Helper()
	p, ok := n.Description.Path()
	if !ok {
		p = n.Name()
	}
	id, err := strconv.Atoi(p)
	require.NoError(t, err, "cannot convert %v", n.Description)
	return int64(id)
}

// reverseDFS collects the nodes reaching id, id included.
func reverseDFS(g *depgraph.DepGraph, id int64) map[int64]bool {
	seen := map[int64]bool{id: true}
	stack := []int64{id}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, w := range g.To(v) {
			if !seen[w] {
				seen[w] = true
				stack = append(stack, w)
			}
		}
	}
	return seen
}

// reachableSet collects the nodes reachable from id, id included,
// following only edges accepted by edgeOK (nil accepts all).
func reachableSet(g *depgraph.DepGraph, id int64, edgeOK func(from, to int64) bool) map[int64]bool {
	seen := map[int64]bool{id: true}
	stack := []int64{id}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, w := range g.From(v) {
			if edgeOK != nil && !edgeOK(v, w) {
				continue
			}
			if !seen[w] {
				seen[w] = true
				stack = append(stack, w)
			}
		}
	}
	return seen
}

// TestInvariants fuzzes every transformation against checkInvariants.
func TestInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 40; iter++ {
		di := generateRandom(rng, 250, 10, false)
		checkInvariants(t, reduction.MergeTransientRoots, di.Clone(), false)
		checkInvariants(t, reduction.Condense, di.Clone(), true)
		checkInvariants(t, reduction.KeepReachable, di.Clone(), true)

		trimmed := reduction.KeepReachable(di)
		keepNone := func(d *depgraph.DepInfos) *depgraph.DepInfos {
			return reduction.Keep(d, func(*depgraph.DepNode) bool { return false })
		}
		keepAll := func(d *depgraph.DepInfos) *depgraph.DepInfos {
			return reduction.Keep(d, func(*depgraph.DepNode) bool { return true })
		}
		checkInvariants(t, keepNone, trimmed.Clone(), false)
		checkInvariants(t, keepAll, trimmed.Clone(), true)
		checkInvariants(t, reduction.TransitiveReduction, trimmed.Clone(), true)
	}
}
