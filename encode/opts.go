package encode

import (
	"github.com/treeconf/treeconf/format"
)

type EncodeOption func(*EncState)

func EncodeFormat(f format.Format) EncodeOption {
	return func(es *EncState) { es.format = f }
}

func EncodeYAML() EncodeOption {
	return EncodeFormat(format.YAMLFormat)
}

func EncodeJSON() EncodeOption {
	return EncodeFormat(format.JSONFormat)
}

// Indent sets the indent width in spaces. The default is 2.
func Indent(n int) EncodeOption {
	return func(es *EncState) {
		if n > 0 {
			es.indent = n
		}
	}
}

// EncodeColors enables colored output. Colored output is for terminals;
// it is not valid input for parsers.
func EncodeColors(c *Colors) EncodeOption {
	return func(es *EncState) { es.color = c.Color }
}
