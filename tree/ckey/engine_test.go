package ckey

import (
	"errors"
	"testing"

	"github.com/treeconf/treeconf/tree"
)

// configTree builds
//
//	config
//	└── tables
//	    ├── table  [@type = "system"]
//	    │   ├── name = "users"
//	    │   └── fields
//	    │       ├── field = "uid"
//	    │       └── field = "uname"
//	    └── table
//	        ├── name = "documents"
//	        └── fields
//	            └── field = "docid"
func configTree() *tree.Node {
	return tree.NewNode("config").
		AppendChild(tree.NewNode("tables").
			AppendChild(tree.NewNode("table").
				WithAttribute("type", "system").
				AppendChild(tree.NewValueNode("name", "users")).
				AppendChild(tree.NewNode("fields").
					AppendChild(tree.NewValueNode("field", "uid")).
					AppendChild(tree.NewValueNode("field", "uname")))).
			AppendChild(tree.NewNode("table").
				AppendChild(tree.NewValueNode("name", "documents")).
				AppendChild(tree.NewNode("fields").
					AppendChild(tree.NewValueNode("field", "docid")))))
}

func TestEngineResolveKey(t *testing.T) {
	root := configTree()
	td := tree.NewTreeData(root)
	e := Engine[*tree.Node]{}

	tests := []struct {
		name       string
		key        string
		wantValues []any
	}{
		{name: "root", key: "", wantValues: []any{nil}},
		{name: "all tables", key: "tables.table", wantValues: []any{nil, nil}},
		{name: "indexed table name", key: "tables.table[1].name", wantValues: []any{"documents"}},
		{name: "all fields of first table", key: "tables.table[0].fields.field", wantValues: []any{"uid", "uname"}},
		{name: "index all form", key: "tables.table[0].fields.field[*]", wantValues: []any{"uid", "uname"}},
		{name: "wildcard", key: "tables.table[0].fields.*", wantValues: []any{"uid", "uname"}},
		{name: "indexed wildcard", key: "tables.table[0].*[2]", wantValues: nil},
		{name: "attribute", key: "tables.table[0].@type", wantValues: []any{"system"}},
		{name: "missing attribute", key: "tables.table[1].@type", wantValues: nil},
		{name: "index out of range", key: "tables.table[5]", wantValues: nil},
		{name: "no match", key: "missing", wantValues: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := e.ResolveKey(root, tt.key, td)
			if err != nil {
				t.Fatalf("ResolveKey(%q): %v", tt.key, err)
			}
			if len(results) != len(tt.wantValues) {
				t.Fatalf("ResolveKey(%q) = %d results, want %d", tt.key, len(results), len(tt.wantValues))
			}
			for i, want := range tt.wantValues {
				if got := results[i].Value(td); got != want {
					t.Errorf("result[%d].Value = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestEngineResolveKeySyntaxError(t *testing.T) {
	root := configTree()
	td := tree.NewTreeData(root)
	e := Engine[*tree.Node]{}
	if _, err := e.ResolveKey(root, "tables..x", td); !errors.Is(err, ErrSyntax) {
		t.Fatalf("err = %v, want ErrSyntax", err)
	}
	if _, err := e.ResolveNodeKey(root, "a[", td); !errors.Is(err, ErrSyntax) {
		t.Fatalf("err = %v, want ErrSyntax", err)
	}
}

func TestEngineResolveNodeKeyDropsAttributes(t *testing.T) {
	root := configTree()
	td := tree.NewTreeData(root)
	e := Engine[*tree.Node]{}

	nodes, err := e.ResolveNodeKey(root, "tables.table[0].@type", td)
	if err != nil {
		t.Fatalf("ResolveNodeKey: %v", err)
	}
	if len(nodes) != 0 {
		t.Fatalf("attribute hit leaked into node results: %v", nodes)
	}
	nodes, err = e.ResolveNodeKey(root, "tables.table", td)
	if err != nil || len(nodes) != 2 {
		t.Fatalf("ResolveNodeKey(tables.table) = %v, %v", nodes, err)
	}
}

func TestEngineNodeKey(t *testing.T) {
	root := configTree()
	td := tree.NewTreeData(root)
	e := Engine[*tree.Node]{}
	cache := map[*tree.Node]string{}

	if got := e.NodeKey(root, cache, td); got != "" {
		t.Fatalf("root key = %q", got)
	}
	uname := root.ChildAt(0).ChildAt(0).ChildAt(1).ChildAt(1)
	want := "tables[0].table[0].fields[0].field[1]"
	if got := e.NodeKey(uname, cache, td); got != want {
		t.Fatalf("NodeKey = %q, want %q", got, want)
	}
	// Ancestor keys land in the cache on the way up.
	if len(cache) < 4 {
		t.Fatalf("cache has %d entries", len(cache))
	}
	// A cached key wins over recomputation.
	cache[uname] = "seeded"
	if got := e.NodeKey(uname, cache, td); got != "seeded" {
		t.Fatalf("cache ignored: %q", got)
	}
	// nil cache works.
	if got := e.NodeKey(uname, nil, td); got != want {
		t.Fatalf("NodeKey without cache = %q", got)
	}
}

func TestEngineNodeKeyRoundTrip(t *testing.T) {
	// Every node's canonical key resolves back to exactly that node,
	// including nodes with names needing quotes.
	root := configTree().
		AppendChild(tree.NewNode("a.b").
			AppendChild(tree.NewValueNode("x y", 1)))
	td := tree.NewTreeData(root)
	e := Engine[*tree.Node]{}
	cache := map[*tree.Node]string{}

	for n := range tree.PreOrder(root, td) {
		key := e.NodeKey(n, cache, td)
		nodes, err := e.ResolveNodeKey(root, key, td)
		if err != nil {
			t.Fatalf("ResolveNodeKey(%q): %v", key, err)
		}
		if len(nodes) != 1 || nodes[0] != n {
			t.Fatalf("key %q resolved to %v, want the node itself", key, nodes)
		}
	}
}
