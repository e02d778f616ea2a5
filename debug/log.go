package debug

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/treeconf/treeconf/encode"
	"github.com/treeconf/treeconf/tree"
)

// Logf writes a formatted message to stderr.  Node arguments render as
// YAML, maps and slices as indented JSON.
func Logf(msg string, args ...any) {
	for i := range args {
		a := args[i]
		switch x := a.(type) {
		case map[string]any, []any, json.Number:
			d, err := json.MarshalIndent(a, "   |", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		case *tree.Node:
			d, err := encode.Marshal(x)
			if err != nil {
				args[i] = fmt.Sprintf("[raw node] %v", x)
				continue
			}
			args[i] = string(d)
		case bool, string, float64, int:

		default:
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
