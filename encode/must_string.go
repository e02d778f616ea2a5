package encode

import (
	"bytes"
	"strings"

	"github.com/treeconf/treeconf/tree"
)

// MustString returns the YAML encoding of n, panicking on error.  It
// is intended for tests and debug output.
func MustString(n *tree.Node, opts ...EncodeOption) string {
	buf := bytes.NewBuffer(nil)
	if err := Encode(n, buf, opts...); err != nil {
		panic(err)
	}
	return strings.TrimSpace(buf.String())
}

// MarshalJSON returns the JSON encoding of n.
func MarshalJSON(n *tree.Node) ([]byte, error) {
	return Marshal(n, EncodeJSON())
}
