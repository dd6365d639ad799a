// Package reduction implements the graph transformations of the analysis
// pipeline: reachability trimming, transient-root merging, equivalence
// condensation, size and count filtering, and transitive reduction.
//
// Every transformation consumes its input: it may zero node sizes or
// rewire edges of the argument while building its result. Callers that
// need the input afterwards must Clone it first.
//
// The pipeline invariants are:
//
//   - the root never acquires incoming edges and keeps its description;
//   - KeepReachable, Condense and Keep leave the graph connected and
//     acyclic;
//   - every transformation preserves the reachable size, except Keep with
//     a non-trivial filter, which preserves the total size and rolls the
//     difference into a synthetic filtered-out node.
package reduction
