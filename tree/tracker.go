package tree

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// trackedData is the state of one tracked selector: the node it currently
// stands for, how many observers track it, and whether it is detached from
// the live tree.
type trackedData[T comparable] struct {
	node      T
	observers int
	detached  bool
}

// Tracker keeps node references stable across tree versions. Each entry
// maps a Selector to the node it selected in the version the tracker was
// last updated against.
//
// A Tracker is immutable; updates return a new tracker sharing state with
// the receiver. The owner of the current version, typically a Model, swaps
// trackers together with tree roots.
//
// An entry becomes detached when its selector stops resolving to exactly
// one node. Detached entries keep their last known node, so observers can
// still read the subtree they were tracking. A later Update whose root
// again resolves the selector to a single node reattaches the entry.
type Tracker[T comparable] struct {
	tracked map[Selector]trackedData[T]
}

// NewTracker returns a tracker with no tracked nodes.
func NewTracker[T comparable]() *Tracker[T] {
	return &Tracker[T]{}
}

func (t *Tracker[T]) clone() *Tracker[T] {
	next := &Tracker[T]{tracked: make(map[Selector]trackedData[T], len(t.tracked)+1)}
	maps.Copy(next.tracked, t.tracked)
	return next
}

// Track adds an observer for sel. If sel is already tracked, only the
// observer count grows; the entry's node and detached state are untouched.
// Otherwise sel is resolved against root and must select exactly one node,
// else ErrSelectorNotUnique.
//
// On error the returned tracker is the receiver, unchanged.
func (t *Tracker[T]) Track(root T, sel Selector, r KeyResolver[T], h Handler[T]) (*Tracker[T], error) {
	if data, ok := t.tracked[sel]; ok {
		next := t.clone()
		data.observers++
		next.tracked[sel] = data
		return next, nil
	}
	node, ok, err := Select(sel, root, r, h)
	if err != nil {
		return t, fmt.Errorf("track %s: %w", sel, err)
	}
	if !ok {
		return t, fmt.Errorf("%w: %s", ErrSelectorNotUnique, sel)
	}
	next := t.clone()
	next.tracked[sel] = trackedData[T]{node: node, observers: 1}
	return next, nil
}

// Untrack removes one observer for sel. The entry disappears when the last
// observer is gone. Returns ErrNotTracked if sel has no entry; the
// returned tracker is then the receiver, unchanged.
func (t *Tracker[T]) Untrack(sel Selector) (*Tracker[T], error) {
	data, ok := t.tracked[sel]
	if !ok {
		return t, fmt.Errorf("%w: %s", ErrNotTracked, sel)
	}
	next := t.clone()
	if data.observers <= 1 {
		delete(next.tracked, sel)
	} else {
		data.observers--
		next.tracked[sel] = data
	}
	return next, nil
}

// TrackedNode returns the node sel currently stands for. For a detached
// entry this is the last known node. Returns ErrNotTracked if sel has no
// entry.
func (t *Tracker[T]) TrackedNode(sel Selector) (T, error) {
	data, ok := t.tracked[sel]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotTracked, sel)
	}
	return data.node, nil
}

// Detached reports whether the entry for sel is detached. Returns
// ErrNotTracked if sel has no entry.
func (t *Tracker[T]) Detached(sel Selector) (bool, error) {
	data, ok := t.tracked[sel]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotTracked, sel)
	}
	return data.detached, nil
}

// Update re-resolves every entry against root, the new current tree
// version. Entries whose selector selects exactly one node are attached to
// that node afterwards, reattaching entries that were detached. Entries
// whose selector does not are detached and keep their last known node.
//
// With no tracked nodes the receiver itself is returned.
func (t *Tracker[T]) Update(root T, r KeyResolver[T], h Handler[T]) *Tracker[T] {
	if len(t.tracked) == 0 {
		return t
	}
	next := &Tracker[T]{tracked: make(map[Selector]trackedData[T], len(t.tracked))}
	for sel, data := range t.tracked {
		next.tracked[sel] = updateTrackedData(root, sel, data, r, h)
	}
	return next
}

func updateTrackedData[T comparable](root T, sel Selector, data trackedData[T], r KeyResolver[T], h Handler[T]) trackedData[T] {
	// A key that fails to resolve detaches like a key with no match.
	node, ok, err := Select(sel, root, r, h)
	if err != nil || !ok {
		data.detached = true
		return data
	}
	data.node = node
	data.detached = false
	return data
}

// DetachAll detaches every entry, keeping each entry's current node as its
// last known node. Used when the tree root is replaced wholesale and no
// selector can be assumed to address the same position in the new tree.
// Idempotent; with no tracked nodes the receiver itself is returned.
func (t *Tracker[T]) DetachAll() *Tracker[T] {
	if len(t.tracked) == 0 {
		return t
	}
	next := &Tracker[T]{tracked: make(map[Selector]trackedData[T], len(t.tracked))}
	for sel, data := range t.tracked {
		data.detached = true
		next.tracked[sel] = data
	}
	return next
}

// Len returns the number of tracked selectors.
func (t *Tracker[T]) Len() int {
	return len(t.tracked)
}

// Selectors returns the tracked selectors in a stable order.
func (t *Tracker[T]) Selectors() []Selector {
	sels := slices.Collect(maps.Keys(t.tracked))
	slices.SortFunc(sels, func(a, b Selector) int {
		return strings.Compare(a.spec, b.spec)
	})
	return sels
}
