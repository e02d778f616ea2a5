// Package filter matches nodes against compiled expressions.
//
// Expressions use expr-lang syntax and see one node at a time through a
// small environment:
//
//	name        node name
//	value       node value (nil when unset)
//	attrs       attribute map
//	childCount  number of children
//	path        dotted name path from the root, root name included
//	attr(k)     attribute k, nil when unset
//	hasChild(n) whether a child named n exists
//
// Compiled programs are cached by source, so repeated Select calls with
// the same expression skip compilation.
package filter

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/treeconf/treeconf/tree"
)

// ErrFilter is wrapped by compile and evaluation errors.
var ErrFilter = errors.New("filter error")

// Program is a compiled node predicate.
type Program struct {
	src string
	prg *vm.Program
}

func (p *Program) String() string { return p.src }

// progCache holds compiled programs keyed by source.
var progCache, _ = lru.New[string, *vm.Program](256)

// Compile compiles src into a reusable predicate.
func Compile(src string) (*Program, error) {
	if prg, ok := progCache.Get(src); ok {
		return &Program{src: src, prg: prg}, nil
	}
	prg, err := expr.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: compile %q: %v", ErrFilter, src, err)
	}
	progCache.Add(src, prg)
	return &Program{src: src, prg: prg}, nil
}

// Env builds the expression environment for one node.
func Env[T comparable](node T, h tree.Handler[T]) map[string]any {
	attrs := map[string]any{}
	for _, k := range h.AttributeNames(node) {
		v, _ := h.Attribute(node, k)
		attrs[k] = v
	}
	return map[string]any{
		"name":       h.Name(node),
		"value":      h.Value(node),
		"attrs":      attrs,
		"childCount": h.ChildCount(node, ""),
		"path":       nodePath(node, h),
		"attr": func(k string) any {
			v, _ := h.Attribute(node, k)
			return v
		},
		"hasChild": func(name string) bool {
			return h.ChildCount(node, name) > 0
		},
	}
}

func nodePath[T comparable](node T, h tree.Handler[T]) string {
	var parts []string
	for n := node; ; {
		parts = append(parts, h.Name(n))
		p, ok := h.Parent(n)
		if !ok {
			break
		}
		n = p
	}
	slices.Reverse(parts)
	return strings.Join(parts, ".")
}

// Match evaluates p against one node.  A non boolean result is an
// error.
func Match[T comparable](p *Program, node T, h tree.Handler[T]) (bool, error) {
	if p == nil || h == nil {
		return false, fmt.Errorf("filter: %w", tree.ErrNilArg)
	}
	res, err := expr.Run(p.prg, Env(node, h))
	if err != nil {
		return false, fmt.Errorf("%w: run %q: %v", ErrFilter, p.src, err)
	}
	b, ok := res.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q returned %T, want bool", ErrFilter, p.src, res)
	}
	return b, nil
}

// Select returns the nodes under root matching src, in preorder.
func Select[T comparable](root T, src string, h tree.Handler[T]) ([]T, error) {
	p, err := Compile(src)
	if err != nil {
		return nil, err
	}
	var out []T
	for n := range tree.PreOrder(root, h) {
		ok, err := Match(p, n, h)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, n)
		}
	}
	return out, nil
}
