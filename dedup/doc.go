// Package dedup re-attributes the disk usage of a hardlink-optimised
// store.
//
// When the store is optimised, byte-identical files of distinct store
// paths are hardlinked to a single inode, so summing raw path sizes
// double-counts the shared bytes. RefineOptimizedStore walks the
// filesystem under every store path, spots inodes claimed by more than
// one owner, and moves each such inode's bytes onto a synthetic shared
// node, with an edge from every owner.
//
// StoreIsOptimised is the cheap heuristic used by the auto mode of the
// command line: it peeks at the store's .links directory instead of
// walking anything.
package dedup
