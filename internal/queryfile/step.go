package queryfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml/ast"

	"github.com/jacoelho/treeq/internal/document"
	"github.com/jacoelho/treeq/internal/tree"
)

// Path is a sequence of steps. A single name is a one step path.
type Path tree.Path

// UnmarshalYAML supports these forms:
//
//	path: active
//	path: [meta, owner]
//	path:
//	  - items
//	  - name: items
//	    key: {id: 2}
func (p *Path) UnmarshalYAML(node ast.Node) error {
	switch n := node.(type) {
	case *ast.NullNode:
		*p = nil
		return nil
	case *ast.StringNode:
		step, err := namedStep(n)
		if err != nil {
			return err
		}
		*p = Path{step}
		return nil
	case *ast.SequenceNode:
		out := make(Path, 0, len(n.Values))
		for i, item := range n.Values {
			step, err := parseStep(item)
			if err != nil {
				return fmt.Errorf("%w: step %d: %v", ErrParser, i, err)
			}
			out = append(out, step)
		}
		*p = out
		return nil
	default:
		return fmt.Errorf("%w: path must be a name or a sequence of steps", ErrParser)
	}
}

func parseStep(node ast.Node) (tree.Step, error) {
	switch n := node.(type) {
	case *ast.StringNode:
		return namedStep(n)
	case *ast.MappingNode:
		return keyedStep(n.Values)
	case *ast.MappingValueNode:
		return keyedStep([]*ast.MappingValueNode{n})
	default:
		return tree.Step{}, errors.New("step must be a name or a mapping")
	}
}

func namedStep(n *ast.StringNode) (tree.Step, error) {
	name := strings.TrimSpace(n.Value)
	if name == "" {
		return tree.Step{}, errors.New("step name must not be empty")
	}
	return tree.Named(name), nil
}

// keyedStep decodes {name: <list>, key: {<field>: <value>, ...}}. The key is
// optional, a step without one is named.
func keyedStep(pairs []*ast.MappingValueNode) (tree.Step, error) {
	var (
		name string
		key  tree.Key
	)

	for _, pair := range pairs {
		k, ok := pair.Key.(*ast.StringNode)
		if !ok {
			return tree.Step{}, errors.New("step key must be a string")
		}

		switch k.Value {
		case "name":
			n, ok := pair.Value.(*ast.StringNode)
			if !ok {
				return tree.Step{}, errors.New("step name must be a string")
			}
			step, err := namedStep(n)
			if err != nil {
				return tree.Step{}, err
			}
			name = step.Name
		case "key":
			parsed, err := parseKey(pair.Value)
			if err != nil {
				return tree.Step{}, err
			}
			key = parsed
		default:
			return tree.Step{}, fmt.Errorf("unsupported step key %q: use 'name' and optional 'key'", k.Value)
		}
	}

	if name == "" {
		return tree.Step{}, errors.New("step must specify a name")
	}
	return tree.Keyed(name, key), nil
}

func parseKey(node ast.Node) (tree.Key, error) {
	var pairs []*ast.MappingValueNode
	switch n := node.(type) {
	case *ast.MappingNode:
		pairs = n.Values
	case *ast.MappingValueNode:
		pairs = []*ast.MappingValueNode{n}
	default:
		return tree.Key{}, errors.New("key must be a mapping of field to value")
	}
	if len(pairs) == 0 {
		return tree.Key{}, errors.New("key must not be empty")
	}

	fields := make([]tree.KeyField, 0, len(pairs))
	for _, pair := range pairs {
		k, ok := pair.Key.(*ast.StringNode)
		if !ok {
			return tree.Key{}, errors.New("key field name must be a string")
		}
		value, err := document.NodeValue(pair.Value)
		if err != nil {
			return tree.Key{}, fmt.Errorf("key field %q: %w", k.Value, err)
		}
		switch value.(type) {
		case []any, map[string]any:
			return tree.Key{}, fmt.Errorf("key field %q must be a scalar", k.Value)
		}
		fields = append(fields, tree.KeyField{Name: k.Value, Value: value})
	}
	return tree.NewKey(fields...), nil
}
