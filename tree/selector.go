package tree

import (
	"fmt"
	"strings"
)

// selectorSep joins the keys of a sub-selector chain inside the flat spec
// string. The unit separator cannot occur in a configuration key, so the
// encoding is unambiguous and Selector stays a comparable value usable as a
// map key.
const selectorSep = "\x1f"

// Selector addresses a logical node position in a tree by key expression.
// Two selectors built from the same keys are equal, independent of how or
// when they were created.
//
// A selector built with Sub first resolves its parent selector and then
// evaluates the sub-key relative to the nodes found there.
type Selector struct {
	spec string
}

// NewSelector returns a selector for the given key expression, evaluated
// against the root of a tree.
func NewSelector(key string) Selector {
	return Selector{spec: key}
}

// Sub returns a selector that evaluates key relative to the nodes selected
// by s.
func (s Selector) Sub(key string) Selector {
	return Selector{spec: s.spec + selectorSep + key}
}

// Keys returns the key chain of the selector, outermost first.
func (s Selector) Keys() []string {
	return strings.Split(s.spec, selectorSep)
}

func (s Selector) String() string {
	return "Selector(" + strings.Join(s.Keys(), " / ") + ")"
}

// Select evaluates sel against the tree rooted at root. The first key of
// the chain is resolved against root; every further key is resolved against
// all nodes of the previous step, accumulating the hits. Attribute hits are
// dropped at each step.
//
// The node result is valid only if ok is true, which requires the final
// step to yield exactly one node. A non-nil error reports a key the
// resolver could not evaluate.
func Select[T comparable](sel Selector, root T, r KeyResolver[T], h Handler[T]) (node T, ok bool, err error) {
	var zero T
	if r == nil {
		return zero, false, fmt.Errorf("%w: resolver", ErrNilArg)
	}
	if h == nil {
		return zero, false, fmt.Errorf("%w: handler", ErrNilArg)
	}
	keys := sel.Keys()
	nodes, err := selectStep(root, keys[0], r, h)
	if err != nil {
		return zero, false, err
	}
	for _, key := range keys[1:] {
		var next []T
		for _, n := range nodes {
			found, err := selectStep(n, key, r, h)
			if err != nil {
				return zero, false, err
			}
			next = append(next, found...)
		}
		nodes = next
	}
	if len(nodes) != 1 {
		return zero, false, nil
	}
	return nodes[0], true, nil
}

// selectStep resolves one key against one node and keeps the node hits.
func selectStep[T comparable](node T, key string, r KeyResolver[T], h Handler[T]) ([]T, error) {
	results, err := r.ResolveKey(node, key, h)
	if err != nil {
		return nil, err
	}
	var nodes []T
	for _, res := range results {
		if !res.IsAttribute() {
			nodes = append(nodes, res.Node())
		}
	}
	return nodes, nil
}
