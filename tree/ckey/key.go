// Package ckey implements the configuration key syntax and the default
// tree.KeyResolver built on it.
//
// Key syntax:
//   - "a.b.c": names separated by dots
//   - "srv[2]": third child named srv (index counts same-named siblings)
//   - "srv[*]": all children named srv (same as bare "srv")
//   - "*": all children, any name
//   - "a.@id": attribute id of the nodes named a (attribute segment last)
//   - "'a.b'.c" / "\"a b\"": quoted names with backslash escapes
//
// The empty key addresses the root. Canonical node keys as produced by
// Engine.NodeKey always carry the index, e.g. "tables[0].fields[1]".
package ckey

import (
	"fmt"
	"strings"
)

// Segment is one step of a parsed key: an attribute access, or a name (or
// any-name wildcard) with an optional index among the matching siblings.
type Segment struct {
	Name      string // node name; empty when Wildcard or Attribute is set
	Wildcard  bool   // "*": any name
	Index     *int   // "name[i]": only the i-th matching child
	IndexAll  bool   // "name[*]": all matching children, explicit form
	Attribute string // "@name": attribute access, final segment only
}

// IsAttribute reports whether s is an attribute segment.
func (s Segment) IsAttribute() bool {
	return s.Attribute != ""
}

// String returns the segment in key syntax.
func (s Segment) String() string {
	if s.IsAttribute() {
		return "@" + quoteName(s.Attribute)
	}
	var b strings.Builder
	if s.Wildcard {
		b.WriteByte('*')
	} else {
		b.WriteString(quoteName(s.Name))
	}
	switch {
	case s.IndexAll:
		b.WriteString("[*]")
	case s.Index != nil:
		fmt.Fprintf(&b, "[%d]", *s.Index)
	}
	return b.String()
}

// Key is a parsed key expression, outermost segment first. An empty key
// addresses the root.
type Key []Segment

// String returns the key in key syntax; Parse(k.String()) reproduces k.
func (k Key) String() string {
	var b strings.Builder
	for i, s := range k {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// Append returns a key with segs added at the end. The receiver is not
// modified.
func (k Key) Append(segs ...Segment) Key {
	res := make(Key, 0, len(k)+len(segs))
	res = append(res, k...)
	res = append(res, segs...)
	return res
}

// Named returns a name segment.
func Named(name string) Segment {
	return Segment{Name: name}
}

// Indexed returns a name segment selecting the i-th same-named child.
func Indexed(name string, i int) Segment {
	return Segment{Name: name, Index: &i}
}

// Attr returns an attribute segment.
func Attr(name string) Segment {
	return Segment{Attribute: name}
}

// Join joins a parent key and a relative key in key syntax. Either part
// may be empty.
func Join(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}

// AttributeKey returns the canonical key of an attribute given its node's
// canonical key.
func AttributeKey(nodeKey, attribute string) string {
	return Join(nodeKey, "@"+quoteName(attribute))
}

// quoteName returns name in key syntax, single-quoted with backslash
// escapes when it contains syntax characters or is empty.
func quoteName(name string) string {
	if !needsQuote(name) {
		return name
	}
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range name {
		if r == '\'' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('\'')
	return b.String()
}

func needsQuote(name string) bool {
	if name == "" {
		return true
	}
	return strings.ContainsAny(name, ".[]*@'\"\\ \t\n")
}
