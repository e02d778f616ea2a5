// Package format names the file syntaxes treeconf reads and writes.
//
// The Format type is a flag-friendly enum (it implements
// encoding.TextMarshaler and TextUnmarshaler) shared by the parse and
// encode packages and the tc command line.
package format
