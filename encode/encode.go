package encode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/treeconf/treeconf/format"
	"github.com/treeconf/treeconf/tree"
)

// ErrEncode is wrapped by all errors returned from Encode.
var ErrEncode = errors.New("encode error")

// EncState holds the encoder configuration assembled from EncodeOptions.
type EncState struct {
	indent int
	format format.Format
	color  func(Class, string) string
}

// Encode writes node to w in the configured format.  The default is
// YAML with a 2 space indent and no color.
func Encode(node *tree.Node, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{indent: 2}
	for _, opt := range opts {
		opt(es)
	}
	if es.color == nil {
		es.color = func(_ Class, s string) string { return s }
	}
	var lines []string
	var err error
	if es.format.IsJSON() {
		lines, err = es.jsonValue(node)
	} else {
		lines, err = es.yamlBody(node)
		if err == nil && len(lines) == 0 {
			lines = []string{es.color(SepClass, "{}")}
		}
	}
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Marshal returns the encoding of node as a byte slice.
func Marshal(node *tree.Node, opts ...EncodeOption) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := Encode(node, buf, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (es *EncState) pad() string {
	return strings.Repeat(" ", es.indent)
}

// childGroup collects the same named children of a node, in document
// order within the group.
type childGroup struct {
	name  string
	nodes []*tree.Node
}

// groups partitions the children of n by name, groups ordered by the
// first occurrence of each name.
func groups(n *tree.Node) []childGroup {
	var gs []childGroup
	index := map[string]int{}
	for _, c := range n.Children() {
		i, ok := index[c.Name()]
		if !ok {
			i = len(gs)
			index[c.Name()] = i
			gs = append(gs, childGroup{name: c.Name()})
		}
		gs[i].nodes = append(gs[i].nodes, c)
	}
	return gs
}

// isLeaf reports whether n renders as a bare scalar: a value with no
// attributes and no children.
func isLeaf(n *tree.Node) bool {
	return n.Value() != nil && n.ChildCount() == 0 && !n.HasAttributes()
}

// yamlBody renders the entries of n (value, attributes, children) at
// relative indent zero.  An undefined node yields no lines.
func (es *EncState) yamlBody(n *tree.Node) ([]string, error) {
	var lines []string
	if n.Value() != nil {
		tok, err := es.scalar(n.Value())
		if err != nil {
			return nil, err
		}
		lines = append(lines, es.yamlKey(format.ValueKey, SepClass)+" "+tok)
	}
	for _, name := range n.AttributeNames() {
		v, _ := n.Attribute(name)
		tok, err := es.scalar(v)
		if err != nil {
			return nil, err
		}
		lines = append(lines, es.yamlKey(format.AttributePrefix+name, AttrClass)+" "+tok)
	}
	for _, g := range groups(n) {
		key := es.yamlKey(g.name, NameClass)
		if len(g.nodes) == 1 {
			c := g.nodes[0]
			switch {
			case isLeaf(c):
				tok, err := es.scalar(c.Value())
				if err != nil {
					return nil, err
				}
				lines = append(lines, key+" "+tok)
			case !c.IsDefined():
				lines = append(lines, key+" "+es.color(NullClass, "null"))
			default:
				body, err := es.yamlBody(c)
				if err != nil {
					return nil, err
				}
				lines = append(lines, key)
				for _, line := range body {
					lines = append(lines, es.pad()+line)
				}
			}
			continue
		}
		lines = append(lines, key)
		for _, c := range g.nodes {
			elem, err := es.yamlElem(c)
			if err != nil {
				return nil, err
			}
			for _, line := range elem {
				lines = append(lines, es.pad()+line)
			}
		}
	}
	return lines, nil
}

// yamlElem renders one sequence element.  Continuation lines hang
// under the first character after the dash.
func (es *EncState) yamlElem(c *tree.Node) ([]string, error) {
	dash := es.color(SepClass, "-") + " "
	switch {
	case isLeaf(c):
		tok, err := es.scalar(c.Value())
		if err != nil {
			return nil, err
		}
		return []string{dash + tok}, nil
	case !c.IsDefined():
		return []string{dash + es.color(NullClass, "null")}, nil
	}
	body, err := es.yamlBody(c)
	if err != nil {
		return nil, err
	}
	lines := []string{dash + body[0]}
	for _, line := range body[1:] {
		lines = append(lines, "  "+line)
	}
	return lines, nil
}

func (es *EncState) yamlKey(key string, cl Class) string {
	tok := key
	if yamlNeedsQuote(key) {
		d, _ := json.Marshal(key)
		tok = string(d)
	}
	return es.color(cl, tok) + es.color(SepClass, ":")
}

// jsonValue renders n as a JSON value: null for an undefined node, a
// bare scalar for a leaf, an object otherwise.
func (es *EncState) jsonValue(n *tree.Node) ([]string, error) {
	switch {
	case n == nil || !n.IsDefined():
		return []string{es.color(NullClass, "null")}, nil
	case isLeaf(n):
		tok, err := es.scalar(n.Value())
		if err != nil {
			return nil, err
		}
		return []string{tok}, nil
	}
	type entry struct {
		key   string
		cl    Class
		lines []string
	}
	var entries []entry
	if n.Value() != nil {
		tok, err := es.scalar(n.Value())
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{format.ValueKey, SepClass, []string{tok}})
	}
	for _, name := range n.AttributeNames() {
		v, _ := n.Attribute(name)
		tok, err := es.scalar(v)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{format.AttributePrefix + name, AttrClass, []string{tok}})
	}
	for _, g := range groups(n) {
		var vlines []string
		var err error
		if len(g.nodes) == 1 {
			vlines, err = es.jsonValue(g.nodes[0])
		} else {
			vlines, err = es.jsonArray(g.nodes)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{g.name, NameClass, vlines})
	}
	lines := []string{es.color(SepClass, "{")}
	for i, e := range entries {
		d, _ := json.Marshal(e.key)
		head := es.pad() + es.color(e.cl, string(d)) + es.color(SepClass, ":") + " " + e.lines[0]
		rest := e.lines[1:]
		if len(rest) == 0 {
			if i < len(entries)-1 {
				head += es.color(SepClass, ",")
			}
			lines = append(lines, head)
			continue
		}
		lines = append(lines, head)
		for j, line := range rest {
			line = es.pad() + line
			if j == len(rest)-1 && i < len(entries)-1 {
				line += es.color(SepClass, ",")
			}
			lines = append(lines, line)
		}
	}
	lines = append(lines, es.color(SepClass, "}"))
	return lines, nil
}

func (es *EncState) jsonArray(nodes []*tree.Node) ([]string, error) {
	lines := []string{es.color(SepClass, "[")}
	for i, c := range nodes {
		vlines, err := es.jsonValue(c)
		if err != nil {
			return nil, err
		}
		for j, line := range vlines {
			line = es.pad() + line
			if j == len(vlines)-1 && i < len(nodes)-1 {
				line += es.color(SepClass, ",")
			}
			lines = append(lines, line)
		}
	}
	lines = append(lines, es.color(SepClass, "]"))
	return lines, nil
}

func (es *EncState) scalar(v any) (string, error) {
	tok, cl, err := scalarToken(v, es.format.IsJSON())
	if err != nil {
		return "", err
	}
	return es.color(cl, tok), nil
}

// scalarToken renders a scalar value.  JSON quoting doubles as YAML
// double quoted style, so json.Marshal serves both formats.
func scalarToken(v any, jsonMode bool) (string, Class, error) {
	switch x := v.(type) {
	case nil:
		return "null", NullClass, nil
	case string:
		if jsonMode || yamlNeedsQuote(x) {
			d, err := json.Marshal(x)
			if err != nil {
				return "", 0, fmt.Errorf("%w: %v", ErrEncode, err)
			}
			return string(d), ValueClass, nil
		}
		return x, ValueClass, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			if jsonMode {
				return "", 0, fmt.Errorf("%w: %v has no JSON form", ErrEncode, x)
			}
			return yamlSpecialFloat(x), ValueClass, nil
		}
	}
	d, err := json.Marshal(v)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return string(d), ValueClass, nil
}

func yamlSpecialFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	}
	return "-.inf"
}

// yamlNeedsQuote reports whether s is unsafe as a YAML plain scalar.
// The check is conservative: quoting a safe string costs nothing,
// while a missed unsafe one changes meaning on re-parse.
func yamlNeedsQuote(s string) bool {
	if s == "" {
		return true
	}
	switch strings.ToLower(s) {
	case "null", "~", "true", "false", "yes", "no", "on", "off":
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	if strings.ContainsAny(s, ":#{}[],&*?!|>'\"%@=`\r\n\t\\") {
		return true
	}
	if s[0] == ' ' || s[0] == '-' {
		return true
	}
	return s[len(s)-1] == ' '
}
