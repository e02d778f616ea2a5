// Package tree provides the immutable node trees underlying treeconf
// configurations.
//
// # Overview
//
// A configuration is represented as a tree of Node values. Each node has a
// name, an optional scalar value, an ordered list of children, and a set of
// named attributes. Nodes are immutable: every update operation returns a new
// node, and updating a node deep in a tree produces a new tree that shares
// all untouched subtrees with its predecessor.
//
// Because nodes never change, a *Node can be handed out freely: no lock is
// needed to read it, and a reader holding a node keeps a consistent snapshot
// no matter how many updates happen elsewhere.
//
// # Handlers
//
// Navigation is decoupled from the node representation through the Handler
// interface. A Handler answers structural questions (parent, children,
// attributes) about nodes of some comparable type T. TreeData is the Handler
// for *Node trees; it is bound to one tree version and adds the parent index
// that immutable nodes cannot carry themselves.
//
// # Selectors and tracking
//
// Immutability means node identity is not stable across updates: after a
// change, the "same" logical node is a different *Node. A Selector names a
// node position by key expression, and a Tracker maintains the mapping from
// selectors to the current node in each tree version. Entries whose selector
// no longer resolves become detached and keep their last known node.
//
// # Walking
//
// WalkDFS and WalkBFS traverse trees with a Visitor that can observe nodes
// before and after their children and stop a traversal early. PreOrder and
// LevelOrder expose the same orders as plain iterators.
package tree
