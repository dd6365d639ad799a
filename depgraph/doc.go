// Package depgraph defines the dependency graph of a Nix store and the
// import machinery that builds it from a store adapter.
//
// The graph is a directed acyclic graph of immutable store paths. Each
// node carries a NodeDescription (what kind of object it is and where it
// lives) and a size in bytes. Some nodes are garbage-collection roots:
// symlinks, in-memory references of running processes, or temporary build
// roots. A distinguished root node ties the graph together: either a
// synthetic dummy whose children are all GC roots, or, when the analysis
// is restricted to a single path, that path itself.
//
// Topology is stored in a gonum simple.DirectedGraph; DepGraph adds
// insertion-ordered node and edge tables on top so that traversals and
// reports are deterministic.
//
// DepInfos bundles a graph with its root and with SizeMetadata, a small
// 2×2 memo of recorded totals (reachable/total × dedup-aware/unaware)
// that later pipeline stages consult when printing statistics.
package depgraph
