package reduction

import (
	"sort"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/symphorien/nix-du/depgraph"
)

// weight is a node weight stashed aside while its fate is undecided.
type weight struct {
	desc depgraph.NodeDescription
	size uint64
}

// Keep builds a new graph retaining only the nodes accepted by pred. A
// dropped node is merged into an ancestor: its name disappears but its
// size and connectivity are absorbed upward. Root children (the GC
// roots) that pred rejects are kept anyway as long as one of their
// transitive dependencies survives; the others are coalesced, along with
// everything they absorbed, into a single filtered-out child of the
// root, so the total size of the graph is preserved exactly.
//
// pred is called at most once per node. The input must be connected and
// acyclic; Keep panics otherwise.
func Keep(di *depgraph.DepInfos, pred func(*depgraph.DepNode) bool) *depgraph.DepInfos {
	if di.Metadata.Reachable != depgraph.Connected {
		panic("reduction: Keep requires a graph whose nodes are all reachable from the root")
	}
	g := di.Graph
	newGraph := depgraph.NewDepGraph()
	newIDs := make(map[int64]int64)

	// move the weights of kept nodes, zeroing the originals so that
	// absorption below never double-counts
	for _, n := range g.Nodes() {
		if n.ID() == di.Root || pred(n) {
			newIDs[n.ID()] = newGraph.AddNode(n.Description, n.Size)
			n.Size = 0
		}
	}

	// rejected roots are kept on demand, when a kept descendant turns up
	ondemand := make(map[int64]*weight)
	for _, r := range di.Roots() {
		if _, kept := newIDs[r]; !kept {
			n := g.Node(r)
			ondemand[r] = &weight{desc: n.Description, size: n.Size}
			n.Size = 0
		}
	}

	// Visit nodes in reverse topological order, so that when a node is
	// visited, every on-demand root below it has already been realised
	// or definitely dropped.
	order, err := topo.Sort(g.Directed())
	if err != nil {
		panic("reduction: Keep argument is not acyclic")
	}
	for i := len(order) - 1; i >= 0; i-- {
		old := order[i].ID()
		if old == di.Root {
			continue
		}
		realized, isKept := newIDs[old]
		if _, isCandidate := ondemand[old]; !isKept && !isCandidate {
			continue
		}
		// DFS from old, traversing only through dropped nodes and
		// stopping at kept descendants
		visited := map[int64]bool{old: true}
		stack := []int64{old}
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if v != old {
				if kept, ok := newIDs[v]; ok {
					if w, pending := ondemand[old]; pending {
						realized = newGraph.AddNode(w.desc, w.size)
						isKept = true
						delete(ondemand, old)
					}
					newGraph.AddEdge(realized, kept)
					continue
				}
				// dropped descendant: absorb its size upward
				if sz := g.Node(v).Size; sz != 0 {
					if w, pending := ondemand[old]; pending {
						w.size += sz
					} else {
						newGraph.Node(realized).Size += sz
					}
					g.Node(v).Size = 0
				}
			}
			for _, w := range g.From(v) {
				if !visited[w] {
					visited[w] = true
					stack = append(stack, w)
				}
			}
		}
		if isKept {
			newIDs[old] = realized
		}
	}

	// relink the surviving roots under the root
	newRoot := newIDs[di.Root]
	for _, r := range di.Roots() {
		if nid, ok := newIDs[r]; ok {
			newGraph.AddEdge(newRoot, nid)
		}
	}

	// whatever remains unrealised is summarised in one filtered-out node
	var leftover uint64
	for _, w := range ondemand {
		leftover += w.size
	}
	if leftover > 0 {
		fid := newGraph.AddNode(depgraph.NewFilteredOutDescription(), leftover)
		newGraph.AddEdge(newRoot, fid)
	}

	out := &depgraph.DepInfos{Graph: newGraph, Root: newRoot, Metadata: di.Metadata}
	out.Metadata.Reachable = depgraph.Connected
	return out
}

// KeepSize retains the nodes of at least threshold bytes.
func KeepSize(di *depgraph.DepInfos, threshold uint64) *depgraph.DepInfos {
	return Keep(di, func(n *depgraph.DepNode) bool { return n.Size >= threshold })
}

// KeepCount retains approximately the n largest nodes: the n-th largest
// size becomes the threshold, and every node at least that big is kept.
func KeepCount(di *depgraph.DepInfos, n int) *depgraph.DepInfos {
	if n <= 0 || n >= di.Graph.NodeCount() {
		return Keep(di, func(*depgraph.DepNode) bool { return true })
	}
	sizes := make([]uint64, 0, di.Graph.NodeCount())
	for _, node := range di.Graph.Nodes() {
		sizes = append(sizes, node.Size)
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] > sizes[j] })
	return KeepSize(di, sizes[n-1])
}
