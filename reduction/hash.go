package reduction

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// label is a 128-bit equivalence-class label. A node's label is the seed
// of the graph XORed with one keyed hash per GC root the node is
// reachable from, so two nodes carry the same label exactly when they
// have the same set of root ancestors (up to a birthday-bound collision
// probability that is negligible at 128 bits).
type label struct {
	lo, hi uint64
}

func (l label) xor(o label) label {
	return label{lo: l.lo ^ o.lo, hi: l.hi ^ o.hi}
}

// mix absorbs data into state, producing both halves from independently
// domain-separated xxhash lanes.
func mix(state label, data []byte) label {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], state.lo)
	binary.LittleEndian.PutUint64(buf[8:], state.hi)

	var d xxhash.Digest
	d.Reset()
	d.WriteString("lo")
	d.Write(buf[:])
	d.Write(data)
	lo := d.Sum64()

	d.Reset()
	d.WriteString("hi")
	d.Write(buf[:])
	d.Write(data)
	hi := d.Sum64()

	return label{lo: lo, hi: hi}
}

// mixUint64 absorbs a single integer into state.
func mixUint64(state label, v uint64) label {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return mix(state, buf[:])
}
