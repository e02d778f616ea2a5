package tree

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Hash returns a 64-bit structural hash of the subtree rooted at n. Equal
// trees hash equal across processes and runs, so hashes can be compared
// over the wire or between restarts. A nil node hashes to 0.
func Hash(n *Node) uint64 {
	if n == nil {
		return 0
	}
	d := xxhash.New()
	hashNode(d, n)
	return d.Sum64()
}

func hashNode(d *xxhash.Digest, n *Node) {
	writeString(d, n.name)
	hashValue(d, n.value)

	writeInt(d, uint64(len(n.attributes)))
	for _, k := range n.AttributeNames() {
		writeString(d, k)
		hashValue(d, n.attributes[k])
	}

	writeInt(d, uint64(len(n.children)))
	var b [8]byte
	for _, c := range n.children {
		// Combining child hashes keeps sibling order significant.
		binary.LittleEndian.PutUint64(b[:], Hash(c))
		d.Write(b[:])
	}
}

func hashValue(d *xxhash.Digest, v any) {
	switch x := v.(type) {
	case nil:
		d.WriteString("z")
	case bool:
		if x {
			d.WriteString("b1")
		} else {
			d.WriteString("b0")
		}
	case int:
		d.WriteString("i")
		writeInt(d, uint64(x))
	case int64:
		d.WriteString("i")
		writeInt(d, uint64(x))
	case uint64:
		d.WriteString("u")
		writeInt(d, x)
	case float64:
		d.WriteString("f")
		writeInt(d, math.Float64bits(x))
	case string:
		d.WriteString("s")
		writeString(d, x)
	default:
		d.WriteString("v")
		writeString(d, fmt.Sprintf("%T:%v", v, v))
	}
}

// writeString length-prefixes so that adjacent strings cannot collide.
func writeString(d *xxhash.Digest, s string) {
	writeInt(d, uint64(len(s)))
	d.WriteString(s)
}

func writeInt(d *xxhash.Digest, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	d.Write(b[:])
}
