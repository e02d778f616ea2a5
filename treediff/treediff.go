// Package treediff computes structural differences between two
// configuration trees.
//
// Children are aligned with a sequence diff: each child maps to a rune
// through a summary of its name and scalar shape, the rune sequences of
// both sides are diffed, and matching runs recurse.  A delete run next
// to an insert run pairs up position by position, so a changed leaf
// reports as a value change instead of a remove plus an add.
package treediff

import (
	"fmt"
	"reflect"
	"slices"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/treeconf/treeconf/tree"
	"github.com/treeconf/treeconf/tree/ckey"
)

// Kind classifies a single change.
type Kind int

const (
	Add Kind = iota
	Remove
	Replace
	Value
	Attr
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Replace:
		return "replace"
	case Value:
		return "value"
	case Attr:
		return "attr"
	}
	return fmt.Sprintf("<kind %d>", int(k))
}

// Change is one difference between two trees.  Path is the canonical
// key of the changed node: in the new tree for adds, replaces and
// modifications, in the old tree for removals.  For Replace changes Old
// and New hold the swapped nodes, otherwise the scalar values.
type Change struct {
	Path string
	Kind Kind
	Attr string
	Old  any
	New  any
}

// Diff returns the changes turning a into b.  A nil result means the
// trees are equal.
func Diff(a, b *tree.Node) []Change {
	switch {
	case a == b:
		return nil
	case a == nil || b == nil || a.Name() != b.Name():
		return []Change{{Path: "", Kind: Replace, Old: a, New: b}}
	}
	d := &differ{
		ha:     tree.NewTreeData(a),
		hb:     tree.NewTreeData(b),
		cacheA: map[*tree.Node]string{},
		cacheB: map[*tree.Node]string{},
	}
	d.nodes(a, b)
	return d.changes
}

type differ struct {
	eng            ckey.Engine[*tree.Node]
	ha, hb         *tree.TreeData
	cacheA, cacheB map[*tree.Node]string
	changes        []Change
}

func (d *differ) pathA(n *tree.Node) string {
	return d.eng.NodeKey(n, d.cacheA, d.ha)
}

func (d *differ) pathB(n *tree.Node) string {
	return d.eng.NodeKey(n, d.cacheB, d.hb)
}

// nodes diffs two same named nodes.  Shared subtrees are skipped by
// pointer, which keeps diffs of versions of a persistent tree cheap.
func (d *differ) nodes(a, b *tree.Node) {
	if a == b {
		return
	}
	if !reflect.DeepEqual(a.Value(), b.Value()) {
		d.changes = append(d.changes, Change{
			Path: d.pathB(b), Kind: Value, Old: a.Value(), New: b.Value(),
		})
	}
	names := append(a.AttributeNames(), b.AttributeNames()...)
	slices.Sort(names)
	names = slices.Compact(names)
	for _, k := range names {
		av, aok := a.Attribute(k)
		bv, bok := b.Attribute(k)
		if aok == bok && reflect.DeepEqual(av, bv) {
			continue
		}
		d.changes = append(d.changes, Change{
			Path: d.pathB(b), Kind: Attr, Attr: k, Old: av, New: bv,
		})
	}
	d.children(a, b)
}

func (d *differ) children(a, b *tree.Node) {
	m := map[string]rune{}
	ar := summarize(m, a)
	br := summarize(m, b)
	diffs := diffpatch.New().DiffMainRunes(ar, br, false)

	ai, bi := 0, 0
	var dels, inss []*tree.Node
	flush := func() {
		n := min(len(dels), len(inss))
		for i := 0; i < n; i++ {
			if dels[i].Name() == inss[i].Name() {
				d.nodes(dels[i], inss[i])
				continue
			}
			d.changes = append(d.changes, Change{
				Path: d.pathB(inss[i]), Kind: Replace, Old: dels[i], New: inss[i],
			})
		}
		for _, od := range dels[n:] {
			d.changes = append(d.changes, Change{Path: d.pathA(od), Kind: Remove, Old: od})
		}
		for _, in := range inss[n:] {
			d.changes = append(d.changes, Change{Path: d.pathB(in), Kind: Add, New: in})
		}
		dels, inss = nil, nil
	}
	for _, diff := range diffs {
		n := len([]rune(diff.Text))
		switch diff.Type {
		case diffpatch.DiffEqual:
			flush()
			for k := 0; k < n; k++ {
				d.nodes(a.ChildAt(ai), b.ChildAt(bi))
				ai++
				bi++
			}
		case diffpatch.DiffDelete:
			for k := 0; k < n; k++ {
				dels = append(dels, a.ChildAt(ai))
				ai++
			}
		case diffpatch.DiffInsert:
			for k := 0; k < n; k++ {
				inss = append(inss, b.ChildAt(bi))
				bi++
			}
		}
	}
	flush()
}

// summarize maps each child of n to a rune keyed by a summary of its
// name and shape.  Both sides share m so equal children map to equal
// runes.
func summarize(m map[string]rune, n *tree.Node) []rune {
	rs := make([]rune, n.ChildCount())
	for i, c := range n.Children() {
		sum := summaryStr(c)
		r, ok := m[sum]
		if !ok {
			r = rune(len(m))
			m[sum] = r
		}
		rs[i] = r
	}
	return rs
}

// summaryStr fingerprints a node for alignment.  Complex nodes collapse
// to their name so that interior edits are found by recursion rather
// than treated as whole subtree swaps.
func summaryStr(n *tree.Node) string {
	if n.ChildCount() > 0 || n.HasAttributes() {
		return n.Name() + "\x00c"
	}
	return n.Name() + "\x00v" + fmt.Sprintf("%T:%v", n.Value(), n.Value())
}
