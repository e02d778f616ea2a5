package tree

import (
	"errors"
	"testing"
)

func TestTrackerTrackAndGet(t *testing.T) {
	root := testTree()
	td := NewTreeData(root)
	r := pathResolver{}
	sel := NewSelector("A.A1")

	tr, err := NewTracker[*Node]().Track(root, sel, r, td)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	want := root.ChildAt(0).ChildAt(0)
	got, err := tr.TrackedNode(sel)
	if err != nil {
		t.Fatalf("TrackedNode: %v", err)
	}
	if got != want {
		t.Fatalf("TrackedNode = %v, want %v", got, want)
	}
	detached, err := tr.Detached(sel)
	if err != nil || detached {
		t.Fatalf("Detached = %v, %v; want false, nil", detached, err)
	}
	if tr.Len() != 1 {
		t.Fatalf("Len = %d", tr.Len())
	}
}

func TestTrackerObserverCounting(t *testing.T) {
	root := testTree()
	td := NewTreeData(root)
	r := pathResolver{}
	sel := NewSelector("B")

	tr := NewTracker[*Node]()
	const n = 3
	for i := 0; i < n; i++ {
		var err error
		tr, err = tr.Track(root, sel, r, td)
		if err != nil {
			t.Fatalf("Track #%d: %v", i+1, err)
		}
	}
	for i := 0; i < n; i++ {
		var err error
		tr, err = tr.Untrack(sel)
		if err != nil {
			t.Fatalf("Untrack #%d: %v", i+1, err)
		}
	}
	if tr.Len() != 0 {
		t.Fatalf("entry survived %d untracks", n)
	}
	if _, err := tr.Untrack(sel); !errors.Is(err, ErrNotTracked) {
		t.Fatalf("extra Untrack err = %v, want ErrNotTracked", err)
	}
	if _, err := tr.TrackedNode(sel); !errors.Is(err, ErrNotTracked) {
		t.Fatalf("TrackedNode err = %v, want ErrNotTracked", err)
	}
	if _, err := tr.Detached(sel); !errors.Is(err, ErrNotTracked) {
		t.Fatalf("Detached err = %v, want ErrNotTracked", err)
	}
}

func TestTrackerTrackExistingDoesNotResolve(t *testing.T) {
	root := testTree()
	td := NewTreeData(root)
	r := pathResolver{}
	sel := NewSelector("A.A2")

	tr, err := NewTracker[*Node]().Track(root, sel, r, td)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	// Second observer against a root where the selector cannot resolve;
	// with an existing entry nothing is resolved, so this must succeed.
	tr, err = tr.Track(nil, sel, r, NewTreeData(nil))
	if err != nil {
		t.Fatalf("second Track resolved the selector: %v", err)
	}
	tr, err = tr.Untrack(sel)
	if err != nil {
		t.Fatalf("Untrack: %v", err)
	}
	// One observer left from the second Track.
	if _, err := tr.TrackedNode(sel); err != nil {
		t.Fatalf("entry gone after one of two untracks: %v", err)
	}
}

func TestTrackerNotUnique(t *testing.T) {
	root := NewNode("root").
		AppendChild(NewNode("A").AppendChild(NewNode("C"))).
		AppendChild(NewNode("A").AppendChild(NewNode("C")))
	td := NewTreeData(root)
	r := pathResolver{}

	tr := NewTracker[*Node]()
	for _, key := range []string{"A", "A.C", "missing"} {
		sel := NewSelector(key)
		tr2, err := tr.Track(root, sel, r, td)
		if !errors.Is(err, ErrSelectorNotUnique) {
			t.Fatalf("Track(%q) err = %v, want ErrSelectorNotUnique", key, err)
		}
		if tr2 != tr {
			t.Fatalf("failed Track(%q) changed the tracker", key)
		}
		if _, err := tr2.Untrack(sel); !errors.Is(err, ErrNotTracked) {
			t.Fatalf("Untrack after failed Track(%q) err = %v", key, err)
		}
	}
	if tr.Len() != 0 {
		t.Fatalf("failed tracks left %d entries", tr.Len())
	}
}

func TestTrackerResolutionError(t *testing.T) {
	root := testTree()
	td := NewTreeData(root)
	tr, err := NewTracker[*Node]().Track(root, NewSelector("A!"), pathResolver{}, td)
	if !errors.Is(err, errBadKey) {
		t.Fatalf("err = %v, want errBadKey", err)
	}
	if tr.Len() != 0 {
		t.Fatalf("failed track created an entry")
	}
}

func TestTrackerUpdateStability(t *testing.T) {
	root := testTree()
	td := NewTreeData(root)
	r := pathResolver{}
	sel := NewSelector("A.A1")

	tr, err := NewTracker[*Node]().Track(root, sel, r, td)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}

	// Replace A1's value. The spine root->A is copied, A1 is a fresh
	// instance at the same logical position.
	a1 := root.ChildAt(0).ChildAt(0)
	newRoot, ok := td.ReplaceNode(a1, a1.WithValue(42))
	if !ok {
		t.Fatalf("ReplaceNode failed")
	}
	tr = tr.Update(newRoot, r, NewTreeData(newRoot))

	got, err := tr.TrackedNode(sel)
	if err != nil {
		t.Fatalf("TrackedNode: %v", err)
	}
	if got == a1 {
		t.Fatalf("tracked node not re-resolved")
	}
	if got.Value() != 42 {
		t.Fatalf("tracked node value = %v, want 42", got.Value())
	}
	if detached, _ := tr.Detached(sel); detached {
		t.Fatalf("entry detached after a resolvable update")
	}
}

func TestTrackerDetachOnRemovedParent(t *testing.T) {
	root := testTree()
	td := NewTreeData(root)
	r := pathResolver{}
	sel := NewSelector("A.A1")

	tr, err := NewTracker[*Node]().Track(root, sel, r, td)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	a1 := root.ChildAt(0).ChildAt(0)

	// Remove A entirely; A1's position is gone.
	newRoot, ok := td.RemoveNode(root.ChildAt(0))
	if !ok {
		t.Fatalf("RemoveNode failed")
	}
	tr = tr.Update(newRoot, r, NewTreeData(newRoot))

	detached, err := tr.Detached(sel)
	if err != nil {
		t.Fatalf("Detached: %v", err)
	}
	if !detached {
		t.Fatalf("entry still attached after its position vanished")
	}
	got, err := tr.TrackedNode(sel)
	if err != nil {
		t.Fatalf("TrackedNode: %v", err)
	}
	if got != a1 {
		t.Fatalf("detached entry lost its last known node: %v", got)
	}

	// Further updates that still miss keep the entry as is.
	tr = tr.Update(newRoot, r, NewTreeData(newRoot))
	if got2, _ := tr.TrackedNode(sel); got2 != a1 {
		t.Fatalf("second update changed a detached entry")
	}
}

func TestTrackerReattach(t *testing.T) {
	root := testTree()
	td := NewTreeData(root)
	r := pathResolver{}
	sel := NewSelector("A.A1")

	tr, err := NewTracker[*Node]().Track(root, sel, r, td)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}

	a := root.ChildAt(0)
	withoutA, ok := td.RemoveNode(a)
	if !ok {
		t.Fatalf("RemoveNode failed")
	}
	tr = tr.Update(withoutA, r, NewTreeData(withoutA))
	if detached, _ := tr.Detached(sel); !detached {
		t.Fatalf("not detached after removal")
	}

	// Bring a node back at the same logical position.
	restored := withoutA.InsertChild(0, NewNode("A").
		AppendChild(NewValueNode("A1", "back")))
	tr = tr.Update(restored, r, NewTreeData(restored))

	detached, err := tr.Detached(sel)
	if err != nil {
		t.Fatalf("Detached: %v", err)
	}
	if detached {
		t.Fatalf("entry did not reattach on a unique match")
	}
	got, _ := tr.TrackedNode(sel)
	if got.Value() != "back" {
		t.Fatalf("reattached node value = %v, want back", got.Value())
	}
}

func TestTrackerDetachAll(t *testing.T) {
	root := testTree()
	td := NewTreeData(root)
	r := pathResolver{}

	tr := NewTracker[*Node]()
	sels := []Selector{NewSelector("A.A1"), NewSelector("B")}
	for _, sel := range sels {
		var err error
		tr, err = tr.Track(root, sel, r, td)
		if err != nil {
			t.Fatalf("Track(%v): %v", sel, err)
		}
	}
	nodes := make(map[Selector]*Node)
	for _, sel := range sels {
		nodes[sel], _ = tr.TrackedNode(sel)
	}

	once := tr.DetachAll()
	twice := once.DetachAll()
	for _, tr2 := range []*Tracker[*Node]{once, twice} {
		for _, sel := range sels {
			detached, err := tr2.Detached(sel)
			if err != nil || !detached {
				t.Fatalf("%v: detached=%v err=%v", sel, detached, err)
			}
			if got, _ := tr2.TrackedNode(sel); got != nodes[sel] {
				t.Fatalf("%v: node changed on DetachAll", sel)
			}
		}
	}

	// Empty tracker short-circuits.
	empty := NewTracker[*Node]()
	if empty.DetachAll() != empty {
		t.Fatalf("DetachAll on empty tracker allocated")
	}
	if empty.Update(root, r, td) != empty {
		t.Fatalf("Update on empty tracker allocated")
	}
}

func TestTrackerSelectors(t *testing.T) {
	root := testTree()
	td := NewTreeData(root)
	r := pathResolver{}

	tr := NewTracker[*Node]()
	for _, key := range []string{"B", "A.A1", "A.A2"} {
		var err error
		tr, err = tr.Track(root, NewSelector(key), r, td)
		if err != nil {
			t.Fatalf("Track(%q): %v", key, err)
		}
	}
	got := tr.Selectors()
	want := []Selector{NewSelector("A.A1"), NewSelector("A.A2"), NewSelector("B")}
	if len(got) != len(want) {
		t.Fatalf("Selectors = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Selectors[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTrackerImmutability(t *testing.T) {
	root := testTree()
	td := NewTreeData(root)
	r := pathResolver{}
	sel := NewSelector("B")

	t0 := NewTracker[*Node]()
	t1, err := t0.Track(root, sel, r, td)
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if t0.Len() != 0 {
		t.Fatalf("Track mutated the receiver")
	}
	t2, err := t1.Untrack(sel)
	if err != nil {
		t.Fatalf("Untrack: %v", err)
	}
	if t1.Len() != 1 || t2.Len() != 0 {
		t.Fatalf("Untrack mutated the receiver")
	}
	t3 := t1.DetachAll()
	if d, _ := t1.Detached(sel); d {
		t.Fatalf("DetachAll mutated the receiver")
	}
	if d, _ := t3.Detached(sel); !d {
		t.Fatalf("DetachAll had no effect")
	}
}
