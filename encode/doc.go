// Package encode renders node trees as YAML or JSON text.
//
// The output mirrors what package parse reads: attributes as "@" keys, a
// node's own value as the "=" key, repeated same-named children as
// sequences. Encoding groups same-named siblings under one key in
// first-occurrence order, so interleavings of different names
// canonicalize; parse(encode(t)) preserves every value, attribute and
// per-name child order.
//
//	// Render for a terminal
//	err := encode.Encode(root, os.Stdout, encode.EncodeColors(encode.NewColors()))
//
//	// JSON bytes for patching
//	data, err := encode.Marshal(root, encode.EncodeJSON())
package encode
