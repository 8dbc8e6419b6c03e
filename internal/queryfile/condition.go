package queryfile

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml/ast"

	"github.com/jacoelho/treeq/internal/document"
	"github.com/jacoelho/treeq/internal/predicate"
	"github.com/jacoelho/treeq/internal/query"
	"github.com/jacoelho/treeq/internal/tree"
)

// Condition is one predicate of a query file.
type Condition struct {
	Path     Path
	Op       string
	Value    any
	HasValue bool
	Not      bool
}

// UnmarshalYAML decodes a condition. Syntax is strict:
//
//	path: <path>   # optional, defaults to the candidate itself
//	op: <operator>
//	value: <any>   # optional only for "exists"
//	not: <bool>    # optional
func (c *Condition) UnmarshalYAML(node ast.Node) error {
	mapNode, ok := node.(*ast.MappingNode)
	if !ok {
		if single, isPair := node.(*ast.MappingValueNode); isPair {
			mapNode = &ast.MappingNode{Values: []*ast.MappingValueNode{single}}
		} else {
			return fmt.Errorf("%w: condition must be a mapping", ErrParser)
		}
	}

	for _, valNode := range mapNode.Values {
		key, ok := valNode.Key.(*ast.StringNode)
		if !ok {
			return fmt.Errorf("%w: condition key must be a string", ErrParser)
		}

		switch key.Value {
		case "path":
			if err := c.Path.UnmarshalYAML(valNode.Value); err != nil {
				return err
			}
		case "op":
			opNode, ok := valNode.Value.(*ast.StringNode)
			if !ok {
				return fmt.Errorf("%w: op value must be a string", ErrParser)
			}
			c.Op = strings.TrimSpace(opNode.Value)
		case "value":
			value, err := document.NodeValue(valNode.Value)
			if err != nil {
				return fmt.Errorf("%w: failed to parse value: %v", ErrParser, err)
			}
			c.Value = value
			c.HasValue = true
		case "not":
			b, ok := valNode.Value.(*ast.BoolNode)
			if !ok {
				return fmt.Errorf("%w: not must be a boolean", ErrParser)
			}
			c.Not = b.Value
		default:
			return fmt.Errorf("%w: unsupported condition key %q: use 'path', 'op', 'value' and 'not'", ErrParser, key.Value)
		}
	}

	if c.Op == "" {
		return fmt.Errorf("%w: condition must specify an op", ErrParser)
	}
	return nil
}

func (c Condition) predicate(compiler *predicate.Compiler) (query.Predicate, error) {
	op, err := predicate.ParseOperator(c.Op)
	if err != nil {
		return query.Predicate{}, err
	}

	test, err := compiler.Compile(predicate.Expr{Op: op, Value: c.Value, HasValue: c.HasValue})
	if err != nil {
		return query.Predicate{}, err
	}

	if c.Not {
		return query.Not(tree.Path(c.Path), test), nil
	}
	return query.Where(tree.Path(c.Path), test), nil
}

