package tree

import (
	"fmt"
	"iter"
)

// Visitor observes nodes during a tree walk. VisitBeforeChildren runs
// before a node's children are processed, VisitAfterChildren after. A
// non-nil error from either aborts the walk and is returned unwrapped.
//
// Terminate is consulted after every visit call; once it reports true the
// walk stops without further visits.
type Visitor[T comparable] interface {
	VisitBeforeChildren(node T, h Handler[T]) error
	VisitAfterChildren(node T, h Handler[T]) error
	Terminate() bool
}

// VisitorBase is a Visitor that does nothing and never terminates. Embed
// it to implement only the methods a walk needs.
type VisitorBase[T comparable] struct{}

func (VisitorBase[T]) VisitBeforeChildren(T, Handler[T]) error { return nil }
func (VisitorBase[T]) VisitAfterChildren(T, Handler[T]) error  { return nil }
func (VisitorBase[T]) Terminate() bool                         { return false }

// WalkDFS walks the subtree rooted at root depth first: each node is
// visited before its children, the children in order, then the node again
// after them. A zero root is an empty walk. Termination stops the whole
// walk, including pending after-visits of ancestors.
func WalkDFS[T comparable](root T, visitor Visitor[T], h Handler[T]) error {
	if err := checkWalkArgs(visitor, h); err != nil {
		return err
	}
	var zero T
	if root == zero {
		return nil
	}
	_, err := walkDFS(root, visitor, h)
	return err
}

func walkDFS[T comparable](node T, v Visitor[T], h Handler[T]) (stop bool, err error) {
	if err := v.VisitBeforeChildren(node, h); err != nil {
		return true, err
	}
	if v.Terminate() {
		return true, nil
	}
	for _, c := range h.Children(node) {
		if stop, err := walkDFS(c, v, h); stop {
			return true, err
		}
	}
	if err := v.VisitAfterChildren(node, h); err != nil {
		return true, err
	}
	return v.Terminate(), nil
}

// WalkBFS walks the subtree rooted at root in level order: first every node
// gets its before-visit, nearer the root first, then every visited node
// gets its after-visit in the same order. A zero root is an empty walk.
func WalkBFS[T comparable](root T, visitor Visitor[T], h Handler[T]) error {
	if err := checkWalkArgs(visitor, h); err != nil {
		return err
	}
	var zero T
	if root == zero {
		return nil
	}
	var visited []T
	queue := []T{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if err := visitor.VisitBeforeChildren(node, h); err != nil {
			return err
		}
		if visitor.Terminate() {
			return nil
		}
		visited = append(visited, node)
		queue = append(queue, h.Children(node)...)
	}
	for _, node := range visited {
		if err := visitor.VisitAfterChildren(node, h); err != nil {
			return err
		}
		if visitor.Terminate() {
			return nil
		}
	}
	return nil
}

func checkWalkArgs[T comparable](v Visitor[T], h Handler[T]) error {
	if v == nil {
		return fmt.Errorf("%w: visitor", ErrNilArg)
	}
	if h == nil {
		return fmt.Errorf("%w: handler", ErrNilArg)
	}
	return nil
}

// PreOrder returns an iterator over the subtree rooted at root in
// depth-first pre-order: each node before its children, children in order.
// A zero root yields nothing.
func PreOrder[T comparable](root T, h Handler[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		var zero T
		if root == zero || h == nil {
			return
		}
		preOrder(root, h, yield)
	}
}

func preOrder[T comparable](node T, h Handler[T], yield func(T) bool) bool {
	if !yield(node) {
		return false
	}
	for _, c := range h.Children(node) {
		if !preOrder(c, h, yield) {
			return false
		}
	}
	return true
}

// LevelOrder returns an iterator over the subtree rooted at root in breadth
// first order: all nodes at depth d before any node at depth d+1, siblings
// in order. A zero root yields nothing.
func LevelOrder[T comparable](root T, h Handler[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		var zero T
		if root == zero || h == nil {
			return
		}
		queue := []T{root}
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			if !yield(node) {
				return
			}
			queue = append(queue, h.Children(node)...)
		}
	}
}
