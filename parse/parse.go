package parse

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/treeconf/treeconf/format"
	"github.com/treeconf/treeconf/tree"
)

// Parse reads a YAML or JSON document into a node tree. Key order is
// preserved.
func Parse(data []byte, opts ...Option) (*tree.Node, error) {
	o := &parseOpts{}
	for _, f := range opts {
		f(o)
	}
	if o.format.IsJSON() && !json.Valid(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrParse)
	}
	var doc any
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	switch v := doc.(type) {
	case nil:
		return tree.NewNode(o.rootName), nil
	case yaml.MapSlice:
		return buildNode(o.rootName, v)
	case []any:
		return nil, fmt.Errorf("%w: top-level sequence has no key to name its elements", ErrParse)
	default:
		return tree.NewValueNode(o.rootName, normalize(v)), nil
	}
}

// ParseFile reads path and parses it, picking the format from the file
// extension.
func ParseFile(path string, opts ...Option) (*tree.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	withFmt := make([]Option, 0, len(opts)+1)
	withFmt = append(withFmt, ParseFormat(format.ForPath(path)))
	withFmt = append(withFmt, opts...)
	return Parse(data, withFmt...)
}

func buildNode(name string, items yaml.MapSlice) (*tree.Node, error) {
	n := tree.NewNode(name)
	for _, item := range items {
		key := fmt.Sprint(item.Key)
		switch {
		case key == format.ValueKey:
			v, ok := scalar(item.Value)
			if !ok {
				return nil, fmt.Errorf("%w: %q value must be a scalar", ErrParse, format.ValueKey)
			}
			n = n.WithValue(v)
		case strings.HasPrefix(key, format.AttributePrefix):
			v, ok := scalar(item.Value)
			if !ok {
				return nil, fmt.Errorf("%w: attribute %q must be a scalar", ErrParse, key)
			}
			n = n.WithAttribute(strings.TrimPrefix(key, format.AttributePrefix), v)
		default:
			var err error
			n, err = appendValue(n, key, item.Value)
			if err != nil {
				return nil, err
			}
		}
	}
	return n, nil
}

// appendValue adds the children a mapping entry stands for: one child for
// a mapping or scalar, one per element for a sequence.
func appendValue(parent *tree.Node, name string, v any) (*tree.Node, error) {
	switch x := v.(type) {
	case []any:
		var err error
		for _, elem := range x {
			parent, err = appendValue(parent, name, elem)
			if err != nil {
				return nil, err
			}
		}
		return parent, nil
	case yaml.MapSlice:
		child, err := buildNode(name, x)
		if err != nil {
			return nil, err
		}
		return parent.AppendChild(child), nil
	case nil:
		return parent.AppendChild(tree.NewNode(name)), nil
	default:
		return parent.AppendChild(tree.NewValueNode(name, normalize(x))), nil
	}
}

func scalar(v any) (any, bool) {
	switch v.(type) {
	case yaml.MapSlice, []any:
		return nil, false
	}
	return normalize(v), true
}

// normalize folds the decoder's unsigned integers into int64 so that
// values compare predictably across parse, patch and encode.
func normalize(v any) any {
	switch x := v.(type) {
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x)
		}
	case int:
		return int64(x)
	}
	return v
}
