package document

import (
	"fmt"
	"io"

	yaml "github.com/goccy/go-yaml"

	"github.com/jacoelho/treeq/internal/tree"
)

// ToValue converts node into plain Go values: containers and entries become
// map[string]any, lists become []any of their entries and leaves give their
// value.
func ToValue(node tree.Node) any {
	switch n := node.(type) {
	case nil:
		return nil
	case tree.LeafNode:
		return n.Value()
	case tree.ListNode:
		out := make([]any, 0, n.Len())
		for i := range n.Len() {
			out = append(out, ToValue(n.At(i)))
		}
		return out
	case tree.ContainerNode:
		out := make(map[string]any, n.Len())
		for i := range n.Len() {
			child := n.At(i)
			out[child.Identifier().Name] = ToValue(child)
		}
		return out
	default:
		return nil
	}
}

// Ordered is ToValue keeping the child order of containers, which become
// yaml.MapSlice values.
func Ordered(node tree.Node) any {
	switch n := node.(type) {
	case tree.ListNode:
		out := make([]any, 0, n.Len())
		for i := range n.Len() {
			out = append(out, Ordered(n.At(i)))
		}
		return out
	case tree.ContainerNode:
		out := make(yaml.MapSlice, 0, n.Len())
		for i := range n.Len() {
			child := n.At(i)
			out = append(out, yaml.MapItem{Key: child.Identifier().Name, Value: Ordered(child)})
		}
		return out
	default:
		return ToValue(node)
	}
}

// Encode writes node as YAML, children in tree order.
func Encode(w io.Writer, node tree.Node, opts ...yaml.EncodeOption) error {
	if err := yaml.NewEncoder(w, opts...).Encode(Ordered(node)); err != nil {
		return fmt.Errorf("%w: encode: %v", ErrDocument, err)
	}
	return nil
}

// EncodeJSON writes node as a single line of JSON, children in tree order.
func EncodeJSON(w io.Writer, node tree.Node) error {
	return Encode(w, node, yaml.JSON())
}
