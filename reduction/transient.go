package reduction

import (
	"github.com/symphorien/nix-du/depgraph"
)

// MergeTransientRoots coalesces all memory and temporary roots under one
// synthetic transient node, so that process-bound pins show up as a
// single subtree of the root. A graph rooted in a store path has no
// transient roots and is returned unchanged, as is a graph without any.
func MergeTransientRoots(di *depgraph.DepInfos) *depgraph.DepInfos {
	g := di.Graph
	if g.Node(di.Root).Description.Kind() != depgraph.KindDummy {
		return di
	}

	var targets []int64
	for _, id := range di.Roots() {
		if g.Node(id).Description.Kind().IsTransient() {
			targets = append(targets, id)
		}
	}
	if len(targets) == 0 {
		return di
	}

	merged := g.AddNode(depgraph.NewTransientDescription(), 0)
	g.AddEdge(di.Root, merged)
	for _, id := range targets {
		g.RemoveEdge(di.Root, id)
		g.AddEdge(merged, id)
	}
	return di
}
