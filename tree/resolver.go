package tree

// Result is one hit of a key query: either a node, or a single attribute
// of a node.
type Result[T comparable] struct {
	node      T
	attribute string
}

// NodeResult returns a Result for a node hit.
func NodeResult[T comparable](node T) Result[T] {
	return Result[T]{node: node}
}

// AttributeResult returns a Result for an attribute hit. The node is the
// one holding the attribute.
func AttributeResult[T comparable](node T, name string) Result[T] {
	return Result[T]{node: node, attribute: name}
}

// IsAttribute reports whether the result is an attribute hit.
func (r Result[T]) IsAttribute() bool {
	return r.attribute != ""
}

// Node returns the result node. For an attribute hit this is the node
// holding the attribute.
func (r Result[T]) Node() T {
	return r.node
}

// AttributeName returns the attribute name of an attribute hit, or "".
func (r Result[T]) AttributeName() string {
	return r.attribute
}

// Value returns the value the result stands for: the node value for a node
// hit, the attribute value for an attribute hit.
func (r Result[T]) Value(h Handler[T]) any {
	if r.IsAttribute() {
		v, _ := h.Attribute(r.node, r.attribute)
		return v
	}
	return h.Value(r.node)
}

// KeyResolver evaluates key expressions against a tree and derives
// canonical keys for nodes. The key syntax is up to the implementation;
// package ckey provides the default one.
type KeyResolver[T comparable] interface {
	// ResolveKey evaluates key against the subtree rooted at root and
	// returns all hits, nodes and attributes.
	ResolveKey(root T, key string, h Handler[T]) ([]Result[T], error)

	// ResolveNodeKey evaluates key like ResolveKey but returns node hits
	// only.
	ResolveNodeKey(root T, key string, h Handler[T]) ([]T, error)

	// NodeKey returns the canonical key of node, unique within its tree.
	// The cache carries keys computed earlier for the same tree version
	// and is updated with every key the call derives. Passing the same
	// cache for a different tree version is invalid.
	NodeKey(node T, cache map[T]string, h Handler[T]) string
}
