package treeconf

import (
	"fmt"
	"sync/atomic"

	"github.com/treeconf/treeconf/debug"
	"github.com/treeconf/treeconf/tree"
	"github.com/treeconf/treeconf/tree/ckey"
)

// treeState is one published version: the indexed tree and the tracker
// aligned with it.
type treeState struct {
	td      *tree.TreeData
	tracker *tree.Tracker[*tree.Node]
}

// Model owns a configuration tree and publishes its versions. All
// methods are safe for concurrent use; reads never block and always see
// a complete version.
type Model struct {
	state    atomic.Pointer[treeState]
	resolver tree.KeyResolver[*tree.Node]
}

// Option configures a Model.
type Option func(*Model)

// WithResolver replaces the default ckey resolver.
func WithResolver(r tree.KeyResolver[*tree.Node]) Option {
	return func(m *Model) { m.resolver = r }
}

// New returns a model publishing root as its first version. A nil root
// publishes an empty, undefined root node.
func New(root *tree.Node, opts ...Option) *Model {
	m := &Model{resolver: ckey.Engine[*tree.Node]{}}
	for _, opt := range opts {
		opt(m)
	}
	if root == nil {
		root = tree.NewNode("")
	}
	m.state.Store(&treeState{
		td:      tree.NewTreeData(root),
		tracker: tree.NewTracker[*tree.Node](),
	})
	return m
}

// Root returns the root of the current version.
func (m *Model) Root() *tree.Node {
	return m.state.Load().td.Root()
}

// Handler returns the handler of the current version. The snapshot
// stays valid as later versions are published.
func (m *Model) Handler() *tree.TreeData {
	return m.state.Load().td
}

// Query evaluates key against the current version and returns all hits.
func (m *Model) Query(key string) ([]tree.Result[*tree.Node], error) {
	st := m.state.Load()
	return m.resolver.ResolveKey(st.td.Root(), key, st.td)
}

// Get returns the values of all hits of key: node values for node hits,
// attribute values for attribute hits.
func (m *Model) Get(key string) ([]any, error) {
	st := m.state.Load()
	results, err := m.resolver.ResolveKey(st.td.Root(), key, st.td)
	if err != nil {
		return nil, err
	}
	values := make([]any, 0, len(results))
	for _, r := range results {
		values = append(values, r.Value(st.td))
	}
	return values, nil
}

// Track registers an observer for sel, resolving it against the current
// version. Tracking an already tracked selector only adds an observer.
func (m *Model) Track(sel tree.Selector) error {
	if debug.Track() {
		debug.Logf("track %s\n", sel)
	}
	return m.mutate(func(st *treeState) (*treeState, error) {
		tracker, err := st.tracker.Track(st.td.Root(), sel, m.resolver, st.td)
		if err != nil {
			return nil, err
		}
		return &treeState{td: st.td, tracker: tracker}, nil
	})
}

// Untrack removes one observer for sel.
func (m *Model) Untrack(sel tree.Selector) error {
	if debug.Track() {
		debug.Logf("untrack %s\n", sel)
	}
	return m.mutate(func(st *treeState) (*treeState, error) {
		tracker, err := st.tracker.Untrack(sel)
		if err != nil {
			return nil, err
		}
		return &treeState{td: st.td, tracker: tracker}, nil
	})
}

// TrackedNode returns the node sel stands for, the last known one when
// detached.
func (m *Model) TrackedNode(sel tree.Selector) (*tree.Node, error) {
	return m.state.Load().tracker.TrackedNode(sel)
}

// Detached reports whether sel is detached from the current version.
func (m *Model) Detached(sel tree.Selector) (bool, error) {
	return m.state.Load().tracker.Detached(sel)
}

// TrackedHandler returns a handler rooted at the node sel stands for,
// covering that subtree only. It works for detached entries too, serving
// the last known subtree.
func (m *Model) TrackedHandler(sel tree.Selector) (*tree.TreeData, error) {
	n, err := m.state.Load().tracker.TrackedNode(sel)
	if err != nil {
		return nil, err
	}
	return tree.NewTreeData(n), nil
}

// Selectors returns the tracked selectors, sorted.
func (m *Model) Selectors() []tree.Selector {
	return m.state.Load().tracker.Selectors()
}

// mutate publishes the state produced by fn with a compare and swap
// loop, re-running fn on contention. fn must not have side effects
// beyond building the next state.
func (m *Model) mutate(fn func(st *treeState) (*treeState, error)) error {
	for {
		st := m.state.Load()
		next, err := fn(st)
		if err != nil {
			return err
		}
		if next == st {
			return nil
		}
		if m.state.CompareAndSwap(st, next) {
			return nil
		}
	}
}

// publish builds the next state from a derived root: the tracker
// re-resolves every selector against it.
func (m *Model) publish(st *treeState, root *tree.Node) *treeState {
	td := tree.NewTreeData(root)
	return &treeState{td: td, tracker: st.tracker.Update(root, m.resolver, td)}
}

// SetRoot replaces the whole tree. Tracked entries all detach, keeping
// their last known nodes: a wholesale replacement severs the derivation
// between versions that tracking relies on.
func (m *Model) SetRoot(root *tree.Node) error {
	if root == nil {
		return fmt.Errorf("set root: %w", tree.ErrNilArg)
	}
	return m.mutate(func(st *treeState) (*treeState, error) {
		return &treeState{
			td:      tree.NewTreeData(root),
			tracker: st.tracker.DetachAll(),
		}, nil
	})
}

// Transform publishes the tree produced by fn from the current root.
// fn may run several times on contention. Returning the root unchanged
// publishes nothing.
func (m *Model) Transform(fn func(root *tree.Node) (*tree.Node, error)) error {
	return m.mutate(func(st *treeState) (*treeState, error) {
		root, err := fn(st.td.Root())
		if err != nil {
			return nil, err
		}
		if root == nil {
			return nil, fmt.Errorf("transform: %w", tree.ErrNilArg)
		}
		if root == st.td.Root() {
			return st, nil
		}
		return m.publish(st, root), nil
	})
}

// AddProperty appends one child named by the key's last segment per
// value, creating missing interior nodes along the way. A key ending in
// an attribute segment sets that attribute and takes exactly one value.
// The key must be a plain dotted name path: indexes and wildcards are
// rejected, and an ambiguous interior name is an error.
func (m *Model) AddProperty(key string, values ...any) error {
	if len(values) == 0 {
		return nil
	}
	return m.mutate(func(st *treeState) (*treeState, error) {
		root, err := addByKey(st.td.Root(), key, values)
		if err != nil {
			return nil, err
		}
		return m.publish(st, root), nil
	})
}

// SetProperty assigns value to everything key resolves to: node hits
// get their value replaced, attribute hits are reassigned. When nothing
// matches the key is added like AddProperty.
func (m *Model) SetProperty(key string, value any) error {
	return m.mutate(func(st *treeState) (*treeState, error) {
		results, err := m.resolver.ResolveKey(st.td.Root(), key, st.td)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			root, err := addByKey(st.td.Root(), key, []any{value})
			if err != nil {
				return nil, err
			}
			return m.publish(st, root), nil
		}
		root, td := st.td.Root(), st.td
		for _, r := range results {
			old := r.Node()
			var repl *tree.Node
			if r.IsAttribute() {
				repl = old.WithAttribute(r.AttributeName(), value)
			} else {
				repl = old.WithValue(value)
			}
			root, _ = td.ReplaceNode(old, repl)
			td = tree.NewTreeData(root)
		}
		if root == st.td.Root() {
			return st, nil
		}
		return m.publish(st, root), nil
	})
}

// ClearProperty removes the values key stands for: node hits get their
// value cleared and are removed entirely when nothing else is left on
// them; attribute hits are unset. Zero matches is a no-op.
func (m *Model) ClearProperty(key string) error {
	return m.clear(key, false)
}

// ClearTree removes the nodes key matches with their whole subtrees.
// Attribute hits are unset. Zero matches is a no-op.
func (m *Model) ClearTree(key string) error {
	return m.clear(key, true)
}

func (m *Model) clear(key string, subtree bool) error {
	return m.mutate(func(st *treeState) (*treeState, error) {
		results, err := m.resolver.ResolveKey(st.td.Root(), key, st.td)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return st, nil
		}
		root, td := st.td.Root(), st.td
		for _, r := range results {
			old := r.Node()
			switch {
			case r.IsAttribute():
				root, _ = td.ReplaceNode(old, old.WithoutAttribute(r.AttributeName()))
			case subtree:
				root, _ = td.RemoveNode(old)
			default:
				repl := old.WithValue(nil)
				if repl.IsDefined() {
					root, _ = td.ReplaceNode(old, repl)
				} else {
					root, _ = td.RemoveNode(old)
				}
			}
			if root == nil {
				// The whole tree went away; keep an empty root.
				root = tree.NewNode(st.td.Root().Name())
			}
			td = tree.NewTreeData(root)
		}
		if root == st.td.Root() {
			return st, nil
		}
		return m.publish(st, root), nil
	})
}

func addByKey(root *tree.Node, key string, values []any) (*tree.Node, error) {
	k, err := ckey.Parse(key)
	if err != nil {
		return nil, err
	}
	if len(k) == 0 {
		return nil, fmt.Errorf("%w: empty key", ErrAddKey)
	}
	for _, seg := range k {
		if seg.Wildcard || seg.IndexAll || seg.Index != nil {
			return nil, fmt.Errorf("%w: %q", ErrAddKey, key)
		}
	}
	if k[len(k)-1].IsAttribute() && len(values) != 1 {
		return nil, fmt.Errorf("%w: attribute key %q takes one value, got %d", ErrAddKey, key, len(values))
	}
	return addSegs(root, k, values)
}

func addSegs(n *tree.Node, k ckey.Key, values []any) (*tree.Node, error) {
	seg := k[0]
	if seg.IsAttribute() {
		return n.WithAttribute(seg.Attribute, values[0]), nil
	}
	if len(k) == 1 {
		for _, v := range values {
			n = n.AppendChild(tree.NewValueNode(seg.Name, v))
		}
		return n, nil
	}
	var target *tree.Node
	for _, c := range n.Children() {
		if c.Name() != seg.Name {
			continue
		}
		if target != nil {
			return nil, fmt.Errorf("%w: %s", tree.ErrSelectorNotUnique, seg.Name)
		}
		target = c
	}
	if target == nil {
		child, err := addSegs(tree.NewNode(seg.Name), k[1:], values)
		if err != nil {
			return nil, err
		}
		return n.AppendChild(child), nil
	}
	child, err := addSegs(target, k[1:], values)
	if err != nil {
		return nil, err
	}
	return n.ReplaceChildNode(target, child), nil
}
