package depgraph

import (
	"errors"
	"fmt"
	"strings"
)

// PathRecord is what the store adapter reports for one valid path or GC
// root.
type PathRecord struct {
	// Path is the raw path, or a brace-delimited identifier for roots
	// that have no filesystem presence ({memory:...}, {temp:...}, ...).
	Path string
	// Size is the path's size in bytes, not accounting for hardlink
	// deduplication.
	Size uint64
	// IsRoot marks paths registered as indirect GC roots.
	IsRoot bool
}

// Registry is the callback surface the importer hands to the store
// adapter. Node ids are implicit in registration order: the adapter
// refers to nodes by the index RegisterNode returned.
type Registry interface {
	// RegisterNode records a path and returns its node id.
	RegisterNode(rec PathRecord) int64
	// RegisterEdge records that from depends on to. Self-loops are
	// dropped silently.
	RegisterEdge(from, to int64)
}

// Populator enumerates the store. Populate must call reg.RegisterNode for
// every valid path and GC root and reg.RegisterEdge for every reference
// between them. When rootPath is non-empty the adapter may restrict
// enumeration to that path's closure. A non-nil error aborts the import.
type Populator interface {
	Populate(reg Registry, rootPath string) error
}

// builder implements Registry over a DepGraph.
type builder struct {
	dg *DepGraph
}

func (b *builder) RegisterNode(rec PathRecord) int64 {
	return b.dg.AddNode(classify(rec), rec.Size)
}

func (b *builder) RegisterEdge(from, to int64) {
	b.dg.AddEdge(from, to)
}

// classify maps a raw path record to a node description. A record that
// matches no known shape is a protocol bug in the adapter, not user
// error, and panics.
func classify(rec PathRecord) NodeDescription {
	switch {
	case strings.HasPrefix(rec.Path, "/proc/"):
		// a path below /proc identifies the process holding the root
		return NewMemoryDescription(rec.Path)
	case strings.HasPrefix(rec.Path, "/") && rec.IsRoot:
		return NewLinkDescription(rec.Path)
	case strings.HasPrefix(rec.Path, "/"):
		return NewPathDescription(rec.Path)
	case strings.HasPrefix(rec.Path, "{memory:"), rec.Path == "{lsof}", rec.Path == "{censored}":
		return NewMemoryDescription(rec.Path)
	case strings.HasPrefix(rec.Path, "{temp:"):
		return NewTemporaryDescription(rec.Path)
	}
	panic(fmt.Sprintf("depgraph: store handed an unclassifiable path %q", rec.Path))
}

// Populate drives the store adapter and assembles the initial DepInfos.
//
// With an empty rootPath a synthetic dummy root is added, with an edge to
// every GC root. With a non-empty rootPath (already canonicalized by the
// caller) the matching store path node becomes the root; ErrRootNotFound
// is returned when the adapter did not register it.
//
// An adapter failure is returned as a *StoreReadError; an adapter that
// returned a bare error is given status code 1.
func Populate(p Populator, rootPath string) (*DepInfos, error) {
	dg := NewDepGraph()
	if err := p.Populate(&builder{dg: dg}, rootPath); err != nil {
		var sre *StoreReadError
		if errors.As(err, &sre) {
			return nil, sre
		}
		return nil, &StoreReadError{Code: 1, Err: err}
	}

	di := &DepInfos{Graph: dg}
	if rootPath == "" {
		di.Root = dg.AddNode(NewDummyDescription(), 0)
		for _, n := range dg.Nodes() {
			if n.Description.Kind().IsGCRoot() {
				dg.AddEdge(di.Root, n.ID())
			}
		}
	} else {
		root, ok := findPath(dg, rootPath)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, rootPath)
		}
		di.Root = root
		di.Metadata.Reachable = Disconnected
	}
	di.RecordMetadata()
	return di, nil
}

func findPath(dg *DepGraph, path string) (int64, bool) {
	for _, n := range dg.Nodes() {
		if n.Description.Kind() != KindPath {
			continue
		}
		if p, _ := n.Description.Path(); p == path {
			return n.ID(), true
		}
	}
	return 0, false
}
