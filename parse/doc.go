// Package parse reads YAML and JSON documents into treeconf node trees.
//
// Mappings become nodes, keys in document order. A key starting with "@"
// sets an attribute on the enclosing node; the reserved key "=" sets the
// enclosing node's own value. Both take scalars only. A sequence value
// produces one child per element, all with the key's name; nested
// sequences flatten into the same run of children. A null value produces
// an empty node.
//
//	server:
//	  "@env": prod
//	  host: db1
//	  port: [5432, 5433]
//
// parses to a "server" node with attribute env=prod, one "host" child and
// two "port" children.
//
// JSON input is accepted by the same pipeline. With ParseJSON the input
// must additionally be valid JSON.
package parse
