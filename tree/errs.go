package tree

import (
	"errors"
)

var (
	// ErrNilArg reports a nil visitor, handler or resolver where a
	// non-nil one is required.
	ErrNilArg = errors.New("nil argument")

	// ErrSelectorNotUnique reports a selector that matched zero nodes or
	// more than one node where exactly one is required.
	ErrSelectorNotUnique = errors.New("selector does not select a single node")

	// ErrNotTracked reports an operation on a selector with no tracker
	// entry.
	ErrNotTracked = errors.New("node not tracked")
)
