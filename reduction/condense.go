package reduction

import (
	"encoding/binary"

	"github.com/symphorien/nix-du/depgraph"
)

// Condense quotients the graph by the "same set of root ancestors"
// equivalence.
//
// Let roots(v) be the set of GC roots from which v is reachable. Two
// nodes are equivalent when they have the same image by roots: deleting
// or keeping any root affects them jointly, so the user cannot act on
// them individually and they can be rendered as one. The quotient node's
// size is the sum of its members' sizes and an edge joins two quotient
// nodes when any original edge crossed between their members.
//
// Nodes unreachable from the root fall into the root's own class and are
// dropped. The representative of a class, whose description labels the
// quotient node, is its first member in a breadth-first traversal from
// the root.
//
// Complexity: Θ(n+m) space and Θ(r·(n+m)) time for r roots, dominated by
// one BFS per root.
func Condense(di *depgraph.DepInfos) *depgraph.DepInfos {
	g := di.Graph

	// The per-root hashes behave like random variables, but the pass
	// must stay reproducible: seed them with the graph itself. Hashing
	// nodes is enough; if edges change, some store paths change too.
	var seed label
	for _, n := range g.Nodes() {
		seed = mix(seed, nodeBytes(n))
	}

	labels := make([]label, g.NodeCount())
	for i := range labels {
		labels[i] = seed
	}
	for _, root := range di.Roots() {
		rh := mixUint64(seed, uint64(root))
		g.BFS(root, func(id int64) {
			labels[id] = labels[id].xor(rh)
		})
	}

	// Rebuild the quotient. The first node of a class reached from the
	// root donates its description; the others only add their size.
	newGraph := depgraph.NewDepGraph()
	newIDs := make(map[label]int64, g.NodeCount())
	g.BFS(di.Root, func(id int64) {
		n := g.Node(id)
		if nid, ok := newIDs[labels[id]]; ok {
			newGraph.Node(nid).Size += n.Size
		} else {
			newIDs[labels[id]] = newGraph.AddNode(n.Description, n.Size)
		}
	})

	newRoot := newIDs[labels[di.Root]]
	for _, e := range g.Edges() {
		from := newIDs[labels[e.From]]
		if from == newRoot && e.From != di.Root {
			// unreachable source, its class fell into the root's
			continue
		}
		to, ok := newIDs[labels[e.To]]
		if !ok || to == from {
			continue
		}
		newGraph.AddEdge(from, to)
	}

	out := &depgraph.DepInfos{Graph: newGraph, Root: newRoot, Metadata: di.Metadata}
	out.Metadata.Reachable = depgraph.Connected
	return out
}

func nodeBytes(n *depgraph.DepNode) []byte {
	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], n.Size)
	return append(n.Description.Bytes(), size[:]...)
}
