package parse

import (
	"github.com/treeconf/treeconf/format"
)

type parseOpts struct {
	format   format.Format
	rootName string
}

type Option func(*parseOpts)

func ParseYAML() Option {
	return ParseFormat(format.YAMLFormat)
}

func ParseJSON() Option {
	return ParseFormat(format.JSONFormat)
}

func ParseFormat(f format.Format) Option {
	return func(o *parseOpts) { o.format = f }
}

// ParseRoot sets the name of the root node; the default is the empty
// name.
func ParseRoot(name string) Option {
	return func(o *parseOpts) { o.rootName = name }
}
