package tree

import (
	"maps"
	"slices"
)

// Node is one node of a configuration tree: a name, an optional scalar
// value, an ordered list of children, and named attributes.
//
// A Node is immutable. All update methods leave the receiver untouched and
// return a new node; unchanged children and attribute maps are shared
// between the old and the new node. Within a single tree every *Node
// instance must occur at most once, otherwise parent lookup is ambiguous.
type Node struct {
	name       string
	value      any
	children   []*Node
	attributes map[string]any
}

// NewNode returns a node with the given name and no value, children or
// attributes.
func NewNode(name string) *Node {
	return &Node{name: name}
}

// NewValueNode returns a node with the given name and scalar value.
func NewValueNode(name string, value any) *Node {
	return &Node{name: name, value: value}
}

// Name returns the node name. Names need not be unique among siblings.
func (n *Node) Name() string {
	return n.name
}

// Value returns the scalar value, or nil if the node has none.
func (n *Node) Value() any {
	return n.value
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// ChildAt returns the child at index i. It panics if i is out of range.
func (n *Node) ChildAt(i int) *Node {
	if i < 0 || i >= len(n.children) {
		panic("tree: child index out of range")
	}
	return n.children[i]
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// IndexOf returns the index of child among n's children, or -1.
func (n *Node) IndexOf(child *Node) int {
	return slices.Index(n.children, child)
}

// Attribute returns the value of the named attribute and whether it is set.
func (n *Node) Attribute(key string) (any, bool) {
	v, ok := n.attributes[key]
	return v, ok
}

// AttributeNames returns the attribute names in sorted order.
func (n *Node) AttributeNames() []string {
	return slices.Sorted(maps.Keys(n.attributes))
}

// HasAttributes reports whether any attribute is set.
func (n *Node) HasAttributes() bool {
	return len(n.attributes) > 0
}

// Attributes returns a copy of the attribute map.
func (n *Node) Attributes() map[string]any {
	if len(n.attributes) == 0 {
		return nil
	}
	return maps.Clone(n.attributes)
}

// IsDefined reports whether the node carries any data: a value, children or
// attributes. The name alone does not make a node defined.
func (n *Node) IsDefined() bool {
	return n.value != nil || len(n.children) > 0 || len(n.attributes) > 0
}

func (n *Node) String() string {
	return "Node(" + n.name + ")"
}

func (n *Node) copy() *Node {
	return &Node{
		name:       n.name,
		value:      n.value,
		children:   n.children,
		attributes: n.attributes,
	}
}

// WithName returns a node like n with the given name.
func (n *Node) WithName(name string) *Node {
	if name == n.name {
		return n
	}
	c := n.copy()
	c.name = name
	return c
}

// WithValue returns a node like n with the given value.
func (n *Node) WithValue(value any) *Node {
	c := n.copy()
	c.value = value
	return c
}

// AppendChild returns a node like n with child appended to its children.
// A nil child is ignored.
func (n *Node) AppendChild(child *Node) *Node {
	if child == nil {
		return n
	}
	c := n.copy()
	c.children = make([]*Node, len(n.children)+1)
	copy(c.children, n.children)
	c.children[len(n.children)] = child
	return c
}

// InsertChild returns a node like n with child inserted at index i, shifting
// later children right. A nil child is ignored. It panics if i is out of
// range; i == ChildCount() appends.
func (n *Node) InsertChild(i int, child *Node) *Node {
	if child == nil {
		return n
	}
	if i < 0 || i > len(n.children) {
		panic("tree: child index out of range")
	}
	c := n.copy()
	c.children = make([]*Node, 0, len(n.children)+1)
	c.children = append(c.children, n.children[:i]...)
	c.children = append(c.children, child)
	c.children = append(c.children, n.children[i:]...)
	return c
}

// ReplaceChild returns a node like n with the child at index i replaced.
// It panics if i is out of range or child is nil.
func (n *Node) ReplaceChild(i int, child *Node) *Node {
	if i < 0 || i >= len(n.children) {
		panic("tree: child index out of range")
	}
	if child == nil {
		panic("tree: nil replacement child")
	}
	if n.children[i] == child {
		return n
	}
	c := n.copy()
	c.children = slices.Clone(n.children)
	c.children[i] = child
	return c
}

// ReplaceChildNode returns a node like n with old replaced by new among its
// children. If old is not a child of n, n is returned unchanged.
func (n *Node) ReplaceChildNode(old, new *Node) *Node {
	i := slices.Index(n.children, old)
	if i < 0 {
		return n
	}
	return n.ReplaceChild(i, new)
}

// RemoveChild returns a node like n with the child at index i removed.
// It panics if i is out of range.
func (n *Node) RemoveChild(i int) *Node {
	if i < 0 || i >= len(n.children) {
		panic("tree: child index out of range")
	}
	c := n.copy()
	c.children = make([]*Node, 0, len(n.children)-1)
	c.children = append(c.children, n.children[:i]...)
	c.children = append(c.children, n.children[i+1:]...)
	return c
}

// RemoveChildNode returns a node like n with child removed from its
// children. If child is not a child of n, n is returned unchanged.
func (n *Node) RemoveChildNode(child *Node) *Node {
	i := slices.Index(n.children, child)
	if i < 0 {
		return n
	}
	return n.RemoveChild(i)
}

// WithChildren returns a node like n whose children are exactly the given
// ones. The slice is copied; nil entries are dropped.
func (n *Node) WithChildren(children []*Node) *Node {
	c := n.copy()
	c.children = nil
	if len(children) > 0 {
		c.children = make([]*Node, 0, len(children))
		for _, ch := range children {
			if ch != nil {
				c.children = append(c.children, ch)
			}
		}
	}
	return c
}

// WithAttribute returns a node like n with the named attribute set to value,
// overwriting any previous value.
func (n *Node) WithAttribute(key string, value any) *Node {
	c := n.copy()
	c.attributes = maps.Clone(n.attributes)
	if c.attributes == nil {
		c.attributes = map[string]any{}
	}
	c.attributes[key] = value
	return c
}

// WithoutAttribute returns a node like n with the named attribute removed.
// If the attribute is not set, n is returned unchanged.
func (n *Node) WithoutAttribute(key string) *Node {
	if _, ok := n.attributes[key]; !ok {
		return n
	}
	c := n.copy()
	c.attributes = maps.Clone(n.attributes)
	delete(c.attributes, key)
	return c
}

// WithAttributes returns a node like n whose attributes are exactly the
// given map. The map is copied; nil or empty clears all attributes.
func (n *Node) WithAttributes(attributes map[string]any) *Node {
	c := n.copy()
	c.attributes = nil
	if len(attributes) > 0 {
		c.attributes = maps.Clone(attributes)
	}
	return c
}
