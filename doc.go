// Package treeconf maintains hierarchical configuration data as
// versions of an immutable tree.
//
// A Model holds the current version and publishes new ones atomically:
// every mutation builds a derived tree sharing unchanged branches with
// its predecessor and swaps it in with a compare and swap, so readers
// always see a complete, consistent version and never block.
//
// Node positions of interest are tracked across versions with
// selectors; see [Model.Track]. Trees are read from and written to YAML
// or JSON through the parse and encode packages, and modified wholesale
// with RFC 6902 and RFC 7386 patches.
package treeconf
