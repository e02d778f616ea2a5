package encode

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/treeconf/treeconf/format"
	"github.com/treeconf/treeconf/parse"
	"github.com/treeconf/treeconf/tree"
)

func testConfig() *tree.Node {
	return tree.NewNode("config").
		AppendChild(
			tree.NewNode("server").
				WithAttribute("env", "prod").
				AppendChild(tree.NewValueNode("host", "example.com")).
				AppendChild(tree.NewValueNode("port", int64(8080))),
		).
		AppendChild(tree.NewValueNode("region", "us-east-1")).
		AppendChild(tree.NewValueNode("region", "eu-west-2")).
		AppendChild(tree.NewNode("empty"))
}

func TestEncodeYAML(t *testing.T) {
	want := strings.TrimSpace(`
server:
  "@env": prod
  host: example.com
  port: 8080
region:
  - us-east-1
  - eu-west-2
empty: null
`)
	if got := MustString(testConfig()); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeJSON(t *testing.T) {
	d, err := Marshal(testConfig(), EncodeJSON())
	if err != nil {
		t.Fatal(err)
	}
	want := `{
  "server": {
    "@env": "prod",
    "host": "example.com",
    "port": 8080
  },
  "region": [
    "us-east-1",
    "eu-west-2"
  ],
  "empty": null
}
`
	if got := string(d); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeEmpty(t *testing.T) {
	n := tree.NewNode("root")
	if got := MustString(n); got != "{}" {
		t.Errorf("yaml: got %q, want %q", got, "{}")
	}
	d, err := Marshal(n, EncodeJSON())
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(d)); got != "null" {
		t.Errorf("json: got %q, want %q", got, "null")
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	root := tree.NewNode("config").
		WithAttribute("version", int64(2)).
		AppendChild(
			tree.NewNode("rules").
				AppendChild(
					tree.NewNode("rule").
						WithAttribute("id", int64(1)).
						AppendChild(tree.NewValueNode("match", "*.log")),
				).
				AppendChild(tree.NewValueNode("rule", "deny")),
		).
		AppendChild(tree.NewValueNode("enabled", true)).
		AppendChild(tree.NewValueNode("ratio", 0.25)).
		AppendChild(tree.NewValueNode("count", int64(-3))).
		AppendChild(tree.NewValueNode("keyword", "on")).
		AppendChild(tree.NewValueNode("numeric", "10")).
		AppendChild(tree.NewValueNode("blank", "")).
		AppendChild(tree.NewValueNode("text", "multi word value")).
		AppendChild(tree.NewNode("hole"))
	for _, f := range format.AllFormats() {
		d, err := Marshal(root, EncodeFormat(f))
		if err != nil {
			t.Fatalf("%v: %v", f, err)
		}
		back, err := parse.Parse(d, parse.ParseFormat(f), parse.ParseRoot("config"))
		if err != nil {
			t.Fatalf("%v: parse back: %v\n%s", f, err, d)
		}
		if tree.Hash(back) != tree.Hash(root) {
			t.Errorf("%v round trip changed the tree:\n%s\n!=\n%s", f, MustString(back), MustString(root))
		}
	}
}

// Interleaved same named siblings come back grouped: per name order is
// kept, the cross name interleaving is not.
func TestEncodeGroupsInterleaved(t *testing.T) {
	root := tree.NewNode("r").
		AppendChild(tree.NewValueNode("a", int64(1))).
		AppendChild(tree.NewValueNode("b", int64(2))).
		AppendChild(tree.NewValueNode("a", int64(3)))
	d, err := Marshal(root)
	if err != nil {
		t.Fatal(err)
	}
	back, err := parse.Parse(d)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	var values []any
	for _, c := range back.Children() {
		names = append(names, c.Name())
		values = append(values, c.Value())
	}
	if strings.Join(names, " ") != "a a b" {
		t.Errorf("got names %v, want [a a b]", names)
	}
	if values[0] != int64(1) || values[1] != int64(3) || values[2] != int64(2) {
		t.Errorf("got values %v", values)
	}
}

func TestEncodeQuoting(t *testing.T) {
	cases := []struct {
		value any
		want  string
	}{
		{"plain", "v: plain"},
		{"", `v: ""`},
		{"true", `v: "true"`},
		{"10", `v: "10"`},
		{"1e3", `v: "1e3"`},
		{"a: b", `v: "a: b"`},
		{"-lead", `v: "-lead"`},
		{"trail ", `v: "trail "`},
		{"has#hash", `v: "has#hash"`},
		{int64(10), "v: 10"},
		{true, "v: true"},
		{nil, "v: null"},
	}
	for _, c := range cases {
		n := tree.NewNode("r").AppendChild(tree.NewValueNode("v", c.value))
		if got := MustString(n); got != c.want {
			t.Errorf("value %#v: got %q, want %q", c.value, got, c.want)
		}
	}
}

func TestEncodeSpecialFloats(t *testing.T) {
	n := tree.NewValueNode("x", math.Inf(1))
	if got := MustString(n); got != `"=": .inf` {
		t.Errorf("yaml: got %q", got)
	}
	if _, err := Marshal(n, EncodeJSON()); !errors.Is(err, ErrEncode) {
		t.Errorf("json: got %v, want ErrEncode", err)
	}
}

func TestEncodeColorsPercent(t *testing.T) {
	n := tree.NewNode("r").AppendChild(tree.NewValueNode("v", "100%"))
	got := MustString(n, EncodeColors(NewColors()))
	if !strings.Contains(got, "100%") {
		t.Errorf("percent mangled: %q", got)
	}
}

func TestEncodeIndent(t *testing.T) {
	n := tree.NewNode("r").
		AppendChild(tree.NewNode("a").AppendChild(tree.NewValueNode("b", int64(1))))
	want := "a:\n    b: 1"
	if got := MustString(n, Indent(4)); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
