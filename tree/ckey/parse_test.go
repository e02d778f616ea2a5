package ckey

import (
	"errors"
	"reflect"
	"testing"
)

func intPtr(i int) *int { return &i }

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Key
	}{
		{
			name:  "empty key",
			input: "",
			want:  nil,
		},
		{
			name:  "single name",
			input: "a",
			want:  Key{{Name: "a"}},
		},
		{
			name:  "dotted names",
			input: "a.b.c",
			want:  Key{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		},
		{
			name:  "indexed name",
			input: "srv[2]",
			want:  Key{{Name: "srv", Index: intPtr(2)}},
		},
		{
			name:  "index all",
			input: "srv[*]",
			want:  Key{{Name: "srv", IndexAll: true}},
		},
		{
			name:  "wildcard",
			input: "*",
			want:  Key{{Wildcard: true}},
		},
		{
			name:  "indexed wildcard",
			input: "*[1]",
			want:  Key{{Wildcard: true, Index: intPtr(1)}},
		},
		{
			name:  "attribute",
			input: "a.@id",
			want:  Key{{Name: "a"}, {Attribute: "id"}},
		},
		{
			name:  "root attribute",
			input: "@id",
			want:  Key{{Attribute: "id"}},
		},
		{
			name:  "single quoted name",
			input: "'a.b'.c",
			want:  Key{{Name: "a.b"}, {Name: "c"}},
		},
		{
			name:  "double quoted name",
			input: `"a b"[0]`,
			want:  Key{{Name: "a b", Index: intPtr(0)}},
		},
		{
			name:  "escaped quote",
			input: `'it\'s'`,
			want:  Key{{Name: "it's"}},
		},
		{
			name:  "escaped backslash",
			input: `'a\\b'`,
			want:  Key{{Name: `a\b`}},
		},
		{
			name:  "quoted empty name",
			input: "''",
			want:  Key{{Name: ""}},
		},
		{
			name:  "canonical key",
			input: "tables[0].table[1].fields[0].field[1]",
			want: Key{
				{Name: "tables", Index: intPtr(0)},
				{Name: "table", Index: intPtr(1)},
				{Name: "fields", Index: intPtr(0)},
				{Name: "field", Index: intPtr(1)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			// String must reproduce a key that parses to the same value.
			again, err := Parse(got.String())
			if err != nil {
				t.Fatalf("reparse %q: %v", got.String(), err)
			}
			if !reflect.DeepEqual(again, tt.want) {
				t.Fatalf("round trip %q -> %q changed the key", tt.input, got.String())
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"a..b",
		".a",
		"a.",
		"a[",
		"a[x]",
		"a[-1]",
		"a[]",
		"a.@id.b",
		"'unterminated",
		`'bad\`,
		"a]",
		"@",
		"a b",
		"[0]",
	}
	for _, in := range inputs {
		if _, err := Parse(in); !errors.Is(err, ErrSyntax) {
			t.Errorf("Parse(%q) err = %v, want ErrSyntax", in, err)
		}
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{Key{Named("a"), Named("b")}, "a.b"},
		{Key{Indexed("srv", 2)}, "srv[2]"},
		{Key{Named("a.b")}, "'a.b'"},
		{Key{Named("it's")}, `'it\'s'`},
		{Key{Named("a"), Attr("id")}, "a.@id"},
		{Key{{Wildcard: true}, {Name: "x", IndexAll: true}}, "*.x[*]"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestKeyAppendAndJoin(t *testing.T) {
	base := Key{Named("a")}
	ext := base.Append(Indexed("b", 1))
	if got := ext.String(); got != "a.b[1]" {
		t.Fatalf("Append = %q", got)
	}
	if len(base) != 1 {
		t.Fatalf("Append mutated the receiver")
	}

	if got := Join("a.b", "c"); got != "a.b.c" {
		t.Fatalf("Join = %q", got)
	}
	if got := Join("", "c"); got != "c" {
		t.Fatalf("Join empty parent = %q", got)
	}
	if got := Join("a", ""); got != "a" {
		t.Fatalf("Join empty child = %q", got)
	}
	if got := AttributeKey("a.b[0]", "id"); got != "a.b[0].@id" {
		t.Fatalf("AttributeKey = %q", got)
	}
	if got := AttributeKey("", "id"); got != "@id" {
		t.Fatalf("root AttributeKey = %q", got)
	}
}
