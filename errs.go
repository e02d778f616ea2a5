package treeconf

import "errors"

var (
	// ErrAddKey rejects add keys that carry indexes or wildcards.
	ErrAddKey = errors.New("add key must be a plain path")
	// ErrPatch is wrapped by patch application failures.
	ErrPatch = errors.New("patch error")
)
