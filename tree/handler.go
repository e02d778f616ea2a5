package tree

import (
	"strings"
)

// Handler provides read-only navigation over a tree of nodes of type T.
// The type parameter is comparable so that a zero T can mark "no node" and
// nodes can key maps.
//
// All methods must be safe for concurrent use; implementations over
// immutable trees get this for free.
type Handler[T comparable] interface {
	// Root returns the root node of the tree.
	Root() T

	// Name returns the name of node.
	Name(node T) string

	// Value returns the scalar value of node, or nil.
	Value(node T) any

	// Parent returns the parent of node. The second result is false for
	// the root and for nodes not part of this tree.
	Parent(node T) (T, bool)

	// ChildAt returns the child of node at index i.
	ChildAt(node T, i int) T

	// Children returns all children of node in order.
	Children(node T) []T

	// ChildrenNamed returns the children of node with the given name, in
	// order.
	ChildrenNamed(node T, name string) []T

	// MatchingChildren returns the children of node accepted by m, in
	// order.
	MatchingChildren(node T, m Matcher[T]) []T

	// ChildCount returns the number of children of node with the given
	// name, or the total number of children if name is empty.
	ChildCount(node T, name string) int

	// IndexOf returns the index of child among node's children, or -1.
	IndexOf(node, child T) int

	// AttributeNames returns the attribute names of node in sorted order.
	AttributeNames(node T) []string

	// Attribute returns the value of the named attribute of node and
	// whether it is set.
	Attribute(node T, key string) (any, bool)

	// Matches reports whether node is accepted by m.
	Matches(node T, m Matcher[T]) bool

	// IsDefined reports whether node carries any data.
	IsDefined(node T) bool
}

// Matcher is a predicate on nodes, evaluated with the Handler of the tree
// the node belongs to.
type Matcher[T comparable] interface {
	Matches(node T, h Handler[T]) bool
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc[T comparable] func(node T, h Handler[T]) bool

func (f MatcherFunc[T]) Matches(node T, h Handler[T]) bool {
	return f(node, h)
}

// MatchName matches nodes whose name equals name exactly.
func MatchName[T comparable](name string) Matcher[T] {
	return MatcherFunc[T](func(node T, h Handler[T]) bool {
		return h.Name(node) == name
	})
}

// MatchNameFold matches nodes whose name equals name under Unicode case
// folding.
func MatchNameFold[T comparable](name string) Matcher[T] {
	return MatcherFunc[T](func(node T, h Handler[T]) bool {
		return strings.EqualFold(h.Name(node), name)
	})
}
