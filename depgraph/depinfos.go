package depgraph

import "fmt"

// Reachability records whether every node of a graph is reachable from
// its root.
type Reachability int

const (
	// Disconnected means some nodes may be unreachable from the root.
	Disconnected Reachability = iota
	// Connected means a traversal from the root covers the whole graph.
	Connected
)

// DedupAwareness records whether node sizes account for hardlink
// deduplication in the store.
type DedupAwareness int

const (
	// Unaware means sizes double-count bytes shared between paths.
	Unaware DedupAwareness = iota
	// Aware means shared bytes have been moved to dedicated nodes.
	Aware
)

// SizeMetadata tracks which totals of the graph have been observed.
// Sizes is indexed by [DedupAwareness][Reachability]; a nil entry has not
// been recorded yet. Entries are written once, by RecordMetadata, the
// first time they become computable.
type SizeMetadata struct {
	Reachable Reachability
	Dedup     DedupAwareness
	Sizes     [2][2]*uint64
}

// DepInfos bundles a dependency graph with its distinguished root and the
// size metadata of the pipeline run. The root never has incoming edges
// and its description is invariant across transformations.
type DepInfos struct {
	Graph    *DepGraph
	Root     int64
	Metadata SizeMetadata
}

// Roots returns the ids of the root's children in ascending order. Under
// the synthetic dummy root these are the GC roots; under a single-path
// root they are the path's direct dependencies, which play the role of
// roots for condensation.
func (di *DepInfos) Roots() []int64 {
	return di.Graph.From(di.Root)
}

// RootsName returns the human-readable names of Roots, in order.
func (di *DepInfos) RootsName() []string {
	ids := di.Roots()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = di.Graph.Node(id).Name()
	}
	return names
}

// ReachableSize sums the sizes of all nodes reachable from the root.
func (di *DepInfos) ReachableSize() uint64 {
	var total uint64
	di.Graph.DFS(di.Root, func(id int64) {
		total += di.Graph.Node(id).Size
	})
	return total
}

// TotalSize sums the sizes of all nodes, reachable or not.
func (di *DepInfos) TotalSize() uint64 {
	var total uint64
	for _, n := range di.Graph.Nodes() {
		total += n.Size
	}
	return total
}

// Clone returns a deep copy.
func (di *DepInfos) Clone() *DepInfos {
	return &DepInfos{
		Graph:    di.Graph.Clone(),
		Root:     di.Root,
		Metadata: di.Metadata,
	}
}

// RecordMetadata fills the size table slots that are computable on the
// current graph and have not been recorded yet. On a disconnected graph
// both the reachable and the full total are retained; on a connected
// graph they coincide and only the Connected slot applies.
func (di *DepInfos) RecordMetadata() {
	record := func(r Reachability, v uint64) {
		if di.Metadata.Sizes[di.Metadata.Dedup][r] == nil {
			di.Metadata.Sizes[di.Metadata.Dedup][r] = &v
		}
	}
	record(Connected, di.ReachableSize())
	if di.Metadata.Reachable == Disconnected {
		record(Disconnected, di.TotalSize())
	}
}

// RecordedSize returns the memoized total for the given flags, or false
// if it was never computable.
func (di *DepInfos) RecordedSize(d DedupAwareness, r Reachability) (uint64, bool) {
	p := di.Metadata.Sizes[d][r]
	if p == nil {
		return 0, false
	}
	return *p, true
}

// CheckMetadata panics if the recorded totals for the current awareness
// disagree with the graph. Only tests call it, after each transformation.
func (di *DepInfos) CheckMetadata() {
	if v, ok := di.RecordedSize(di.Metadata.Dedup, Connected); ok {
		if got := di.ReachableSize(); got != v {
			panic(fmt.Sprintf("depgraph: recorded reachable size %d, graph has %d", v, got))
		}
	}
	if di.Metadata.Reachable == Connected {
		return
	}
	if v, ok := di.RecordedSize(di.Metadata.Dedup, Disconnected); ok {
		if got := di.TotalSize(); got != v {
			panic(fmt.Sprintf("depgraph: recorded total size %d, graph has %d", v, got))
		}
	}
}
