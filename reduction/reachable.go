package reduction

import (
	"github.com/symphorien/nix-du/depgraph"
)

// KeepReachable builds a new graph holding only the nodes reachable from
// the root, with the same edges between them. The result is Connected.
func KeepReachable(di *depgraph.DepInfos) *depgraph.DepInfos {
	g := di.Graph
	newGraph := depgraph.NewDepGraph()
	newIDs := make(map[int64]int64, g.NodeCount())

	g.DFS(di.Root, func(id int64) {
		n := g.Node(id)
		newIDs[id] = newGraph.AddNode(n.Description, n.Size)
	})
	for _, e := range g.Edges() {
		from, okFrom := newIDs[e.From]
		to, okTo := newIDs[e.To]
		if okFrom && okTo {
			newGraph.AddEdge(from, to)
		}
	}

	out := &depgraph.DepInfos{Graph: newGraph, Root: newIDs[di.Root], Metadata: di.Metadata}
	out.Metadata.Reachable = depgraph.Connected
	return out
}
