package treediff

import (
	"fmt"
	"io"
	"strconv"

	"github.com/treeconf/treeconf/format"
	"github.com/treeconf/treeconf/tree"
)

// Format writes changes one per line:
//
//	+ added[0]              added node
//	- removed[0]            removed node
//	! swapped[0]: a -> b    replaced node
//	~ leaf[0]: 1 -> 2       changed value
//	@ node[0] @k: a -> b    changed attribute
func Format(w io.Writer, changes []Change) error {
	for _, c := range changes {
		var line string
		switch c.Kind {
		case Add:
			line = "+ " + display(c.Path)
		case Remove:
			line = "- " + display(c.Path)
		case Replace:
			line = fmt.Sprintf("! %s: %s -> %s", display(c.Path), nodeLabel(c.Old), nodeLabel(c.New))
		case Value:
			line = fmt.Sprintf("~ %s: %s -> %s", display(c.Path), valueLabel(c.Old), valueLabel(c.New))
		case Attr:
			line = fmt.Sprintf("@ %s %s%s: %s -> %s",
				display(c.Path), format.AttributePrefix, c.Attr, valueLabel(c.Old), valueLabel(c.New))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func display(path string) string {
	if path == "" {
		return "."
	}
	return path
}

func valueLabel(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	}
	return fmt.Sprint(v)
}

func nodeLabel(v any) string {
	n, ok := v.(*tree.Node)
	if !ok || n == nil {
		return "null"
	}
	return n.String()
}
