package treeconf

import (
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/treeconf/treeconf/debug"
	"github.com/treeconf/treeconf/encode"
	"github.com/treeconf/treeconf/parse"
	"github.com/treeconf/treeconf/tree"
)

// ApplyJSONPatch applies an RFC 6902 patch document to the tree. The
// current version is encoded to JSON, patched, and reparsed; the result
// is published like any other derived version, so tracked selectors
// re-resolve rather than detach wholesale.
func (m *Model) ApplyJSONPatch(patch []byte) error {
	ops, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return fmt.Errorf("%w: decode: %v", ErrPatch, err)
	}
	return m.mutate(func(st *treeState) (*treeState, error) {
		doc, err := encode.MarshalJSON(st.td.Root())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPatch, err)
		}
		if debug.Patch() {
			debug.Logf("json patch on %s\n", string(doc))
		}
		out, err := ops.Apply(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPatch, err)
		}
		root, err := m.reparse(st, out)
		if err != nil {
			return nil, err
		}
		return m.publish(st, root), nil
	})
}

// ApplyMergePatch applies an RFC 7386 merge patch document to the
// tree, through the same encode, patch, reparse pipeline as
// ApplyJSONPatch.
func (m *Model) ApplyMergePatch(patch []byte) error {
	return m.mutate(func(st *treeState) (*treeState, error) {
		doc, err := encode.MarshalJSON(st.td.Root())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPatch, err)
		}
		if debug.Patch() {
			debug.Logf("merge patch on %s\n", string(doc))
		}
		out, err := jsonpatch.MergePatch(doc, patch)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPatch, err)
		}
		root, err := m.reparse(st, out)
		if err != nil {
			return nil, err
		}
		return m.publish(st, root), nil
	})
}

func (m *Model) reparse(st *treeState, doc []byte) (*tree.Node, error) {
	root, err := parse.Parse(doc, parse.ParseJSON(), parse.ParseRoot(st.td.Root().Name()))
	if err != nil {
		return nil, fmt.Errorf("%w: reparse: %v", ErrPatch, err)
	}
	return root, nil
}
