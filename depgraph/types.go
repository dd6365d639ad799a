package depgraph

import (
	"fmt"
)

// NodeKind classifies the objects a node can stand for.
type NodeKind int

const (
	// KindPath is a content-addressed store directory.
	KindPath NodeKind = iota

	// KindLink is a filesystem symlink registered as a GC root.
	KindLink

	// KindMemory is a GC root held by a running process (memory map,
	// open file, or environment reference).
	KindMemory

	// KindTemporary is a GC root registered for the duration of a build.
	KindTemporary

	// KindShared is a synthetic node owning the bytes of a hardlinked
	// inode, introduced by the dedup refinement pass.
	KindShared

	// KindDummy is the synthetic universal root.
	KindDummy

	// KindFilteredOut is a synthetic node absorbing the size of nodes
	// dropped by a filter.
	KindFilteredOut

	// KindTransient is a synthetic node coalescing memory and temporary
	// roots.
	KindTransient
)

// IsGCRoot reports whether nodes of this kind pin their closure against
// garbage collection.
func (k NodeKind) IsGCRoot() bool {
	switch k {
	case KindLink, KindMemory, KindTemporary, KindTransient:
		return true
	}
	return false
}

// IsTransient reports whether this kind of root vanishes with the process
// that holds it.
func (k NodeKind) IsTransient() bool {
	return k == KindMemory || k == KindTemporary
}

func (k NodeKind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindLink:
		return "link"
	case KindMemory:
		return "memory"
	case KindTemporary:
		return "temporary"
	case KindShared:
		return "shared"
	case KindDummy:
		return "dummy"
	case KindFilteredOut:
		return "filtered-out"
	case KindTransient:
		return "transient"
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// NodeDescription is the label of a node: its kind plus the payload the
// kind calls for. The payload is the raw filesystem path for KindPath and
// KindLink, an opaque identifier for KindMemory and KindTemporary, and the
// base name of the first owner for KindShared. Synthetic kinds carry no
// payload.
type NodeDescription struct {
	kind    NodeKind
	payload []byte
}

// NewPathDescription describes a store path.
func NewPathDescription(path string) NodeDescription {
	return NodeDescription{kind: KindPath, payload: []byte(path)}
}

// NewLinkDescription describes a symlink GC root.
func NewLinkDescription(path string) NodeDescription {
	return NodeDescription{kind: KindLink, payload: []byte(path)}
}

// NewMemoryDescription describes an in-memory GC root.
func NewMemoryDescription(ident string) NodeDescription {
	return NodeDescription{kind: KindMemory, payload: []byte(ident)}
}

// NewTemporaryDescription describes a temporary GC root.
func NewTemporaryDescription(ident string) NodeDescription {
	return NodeDescription{kind: KindTemporary, payload: []byte(ident)}
}

// NewSharedDescription describes a synthetic node owning hardlinked bytes.
// base is the human-readable name of the store path that first claimed the
// inode.
func NewSharedDescription(base string) NodeDescription {
	return NodeDescription{kind: KindShared, payload: []byte(base)}
}

// NewDummyDescription describes the synthetic universal root.
func NewDummyDescription() NodeDescription {
	return NodeDescription{kind: KindDummy}
}

// NewFilteredOutDescription describes the synthetic absorber of filtered
// sizes.
func NewFilteredOutDescription() NodeDescription {
	return NodeDescription{kind: KindFilteredOut}
}

// NewTransientDescription describes the synthetic parent of transient
// roots.
func NewTransientDescription() NodeDescription {
	return NodeDescription{kind: KindTransient}
}

// Kind returns the node kind.
func (d NodeDescription) Kind() NodeKind { return d.kind }

// Path returns the raw filesystem path of a KindPath or KindLink node,
// and false for every other kind.
func (d NodeDescription) Path() (string, bool) {
	if d.kind == KindPath || d.kind == KindLink {
		return string(d.payload), true
	}
	return "", false
}

// Bytes returns a stable byte representation of the description, suitable
// for hashing: one kind byte followed by the payload.
func (d NodeDescription) Bytes() []byte {
	buf := make([]byte, 0, 1+len(d.payload))
	buf = append(buf, byte(d.kind))
	return append(buf, d.payload...)
}

// Equal reports whether two descriptions have the same kind and payload.
func (d NodeDescription) Equal(o NodeDescription) bool {
	return d.kind == o.kind && string(d.payload) == string(o.payload)
}

func (d NodeDescription) String() string {
	if len(d.payload) == 0 {
		return d.kind.String()
	}
	return fmt.Sprintf("%s(%s)", d.kind, d.payload)
}

// DepNode is a node of the dependency graph: a description plus a size in
// bytes. It implements gonum's graph.Node; ids are assigned by the graph
// at insertion and stay stable for the graph's lifetime.
type DepNode struct {
	Description NodeDescription
	Size        uint64

	id int64
}

// ID returns the node's stable identifier within its graph.
func (n *DepNode) ID() int64 { return n.id }

// Name returns the human-readable label of the node. See name.go.
func (n *DepNode) Name() string { return n.Description.Name() }
