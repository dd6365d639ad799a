// Package store enumerates a Nix store and feeds it to the graph
// importer.
//
// The importer treats this package as a black box behind the
// depgraph.Populator interface: an adapter registers every valid path
// and GC root through the registry callbacks and reports references
// between them. NixStore is the production adapter; it shells out to the
// nix tooling and honors the NIX_STORE_DIR family of environment
// variables, so tests can point it at a scratch store.
package store
