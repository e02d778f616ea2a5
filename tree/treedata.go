package tree

// TreeData is the Handler for one version of a *Node tree. It holds the
// parent index that immutable nodes cannot carry themselves.
//
// A TreeData describes exactly the tree it was built from. After an update
// produced a new root, build a new TreeData; the old one keeps describing
// the old version.
type TreeData struct {
	root    *Node
	parents map[*Node]*Node
}

var _ Handler[*Node] = (*TreeData)(nil)

// NewTreeData returns a TreeData for the tree rooted at root.
func NewTreeData(root *Node) *TreeData {
	td := &TreeData{
		root:    root,
		parents: map[*Node]*Node{},
	}
	if root != nil {
		td.index(root)
	}
	return td
}

func (td *TreeData) index(n *Node) {
	for _, c := range n.children {
		td.parents[c] = n
		td.index(c)
	}
}

// Root returns the root node, which may be nil for an empty tree.
func (td *TreeData) Root() *Node {
	return td.root
}

// Contains reports whether node is part of this tree version.
func (td *TreeData) Contains(node *Node) bool {
	if node == nil {
		return false
	}
	if node == td.root {
		return true
	}
	_, ok := td.parents[node]
	return ok
}

func (td *TreeData) Name(node *Node) string {
	return node.name
}

func (td *TreeData) Value(node *Node) any {
	return node.value
}

// Parent returns the parent of node. The second result is false for the
// root and for nodes not part of this tree version.
func (td *TreeData) Parent(node *Node) (*Node, bool) {
	p, ok := td.parents[node]
	return p, ok
}

func (td *TreeData) ChildAt(node *Node, i int) *Node {
	return node.ChildAt(i)
}

func (td *TreeData) Children(node *Node) []*Node {
	return node.Children()
}

func (td *TreeData) ChildrenNamed(node *Node, name string) []*Node {
	var res []*Node
	for _, c := range node.children {
		if c.name == name {
			res = append(res, c)
		}
	}
	return res
}

func (td *TreeData) MatchingChildren(node *Node, m Matcher[*Node]) []*Node {
	var res []*Node
	for _, c := range node.children {
		if m.Matches(c, td) {
			res = append(res, c)
		}
	}
	return res
}

func (td *TreeData) ChildCount(node *Node, name string) int {
	if name == "" {
		return len(node.children)
	}
	n := 0
	for _, c := range node.children {
		if c.name == name {
			n++
		}
	}
	return n
}

func (td *TreeData) IndexOf(node, child *Node) int {
	return node.IndexOf(child)
}

func (td *TreeData) AttributeNames(node *Node) []string {
	return node.AttributeNames()
}

func (td *TreeData) Attribute(node *Node, key string) (any, bool) {
	return node.Attribute(key)
}

func (td *TreeData) Matches(node *Node, m Matcher[*Node]) bool {
	return m.Matches(node, td)
}

func (td *TreeData) IsDefined(node *Node) bool {
	return node.IsDefined()
}

// ReplaceNode returns the root of a new tree in which old is replaced by
// new. The parents on the path from old up to the root are copied, all
// other nodes are shared with the receiver's tree. The second result is
// false if old is not part of this tree.
//
// The receiver still describes the old version afterwards.
func (td *TreeData) ReplaceNode(old, new *Node) (*Node, bool) {
	if old == td.root {
		return new, true
	}
	p, ok := td.parents[old]
	if !ok {
		return nil, false
	}
	for {
		up := p.ReplaceChildNode(old, new)
		pp, ok := td.parents[p]
		if !ok {
			return up, true
		}
		old, new, p = p, up, pp
	}
}

// RemoveNode returns the root of a new tree in which node is removed from
// its parent, copying the path to the root. Removing the root yields a nil
// root. The second result is false if node is not part of this tree.
func (td *TreeData) RemoveNode(node *Node) (*Node, bool) {
	if node == td.root {
		return nil, true
	}
	p, ok := td.parents[node]
	if !ok {
		return nil, false
	}
	return td.ReplaceNode(p, p.RemoveChildNode(node))
}
