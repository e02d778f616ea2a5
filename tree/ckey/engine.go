package ckey

import (
	"strconv"

	"github.com/treeconf/treeconf/tree"
)

// Engine is the default tree.KeyResolver over the ckey syntax. The zero
// value is ready to use; it is stateless and safe for concurrent use.
type Engine[T comparable] struct{}

var _ tree.KeyResolver[*tree.Node] = Engine[*tree.Node]{}

// ResolveKey evaluates key against the subtree rooted at root and returns
// all hits in document order.
func (Engine[T]) ResolveKey(root T, key string, h tree.Handler[T]) ([]tree.Result[T], error) {
	k, err := Parse(key)
	if err != nil {
		return nil, err
	}
	return Query(root, k, h), nil
}

// ResolveNodeKey evaluates key like ResolveKey but keeps node hits only.
func (e Engine[T]) ResolveNodeKey(root T, key string, h tree.Handler[T]) ([]T, error) {
	results, err := e.ResolveKey(root, key, h)
	if err != nil {
		return nil, err
	}
	var nodes []T
	for _, r := range results {
		if !r.IsAttribute() {
			nodes = append(nodes, r.Node())
		}
	}
	return nodes, nil
}

// NodeKey returns the canonical key of node: each ancestor's quoted name
// with its index among same-named siblings, e.g. "tables[0].fields[1]".
// The root has the empty key. Keys are memoized in cache when it is
// non-nil; a cache must not be reused across tree versions.
func (e Engine[T]) NodeKey(node T, cache map[T]string, h tree.Handler[T]) string {
	if key, ok := cache[node]; ok {
		return key
	}
	parent, ok := h.Parent(node)
	if !ok {
		if cache != nil {
			cache[node] = ""
		}
		return ""
	}
	seg := quoteName(h.Name(node)) + "[" + strconv.Itoa(sameNameIndex(parent, node, h)) + "]"
	key := Join(e.NodeKey(parent, cache, h), seg)
	if cache != nil {
		cache[node] = key
	}
	return key
}

// Query evaluates a parsed key against the subtree rooted at root and
// returns the hits in document order. An empty key yields root itself.
// Attribute hits are filtered to attributes that exist.
func Query[T comparable](root T, k Key, h tree.Handler[T]) []tree.Result[T] {
	nodes := []T{root}
	for i, seg := range k {
		if seg.IsAttribute() {
			// The parser rejects non-final attribute segments; a
			// hand-built Key with one matches nothing.
			if i != len(k)-1 {
				return nil
			}
			var res []tree.Result[T]
			for _, n := range nodes {
				if _, ok := h.Attribute(n, seg.Attribute); ok {
					res = append(res, tree.AttributeResult(n, seg.Attribute))
				}
			}
			return res
		}
		var next []T
		for _, n := range nodes {
			next = append(next, segmentChildren(seg, n, h)...)
		}
		if len(next) == 0 {
			return nil
		}
		nodes = next
	}
	res := make([]tree.Result[T], 0, len(nodes))
	for _, n := range nodes {
		res = append(res, tree.NodeResult(n))
	}
	return res
}

func segmentChildren[T comparable](s Segment, node T, h tree.Handler[T]) []T {
	var cands []T
	if s.Wildcard {
		cands = h.Children(node)
	} else {
		cands = h.ChildrenNamed(node, s.Name)
	}
	if s.Index != nil {
		// An index past the matching children is a miss, not an error.
		if *s.Index >= len(cands) {
			return nil
		}
		return cands[*s.Index : *s.Index+1]
	}
	return cands
}

func sameNameIndex[T comparable](parent, node T, h tree.Handler[T]) int {
	name := h.Name(node)
	idx := 0
	for _, c := range h.Children(parent) {
		if c == node {
			break
		}
		if h.Name(c) == name {
			idx++
		}
	}
	return idx
}
