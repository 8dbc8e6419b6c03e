// Package document converts YAML and JSON documents into trees and back.
//
// Mappings become containers. A sequence of mappings becomes a list whose
// entries are keyed by the fields the Schema names for it, or by position when
// the schema names none. Any other sequence is a single leaf holding a []any.
package document

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/hashicorp/go-multierror"

	"github.com/jacoelho/treeq/internal/number"
	"github.com/jacoelho/treeq/internal/tree"
)

// ErrDocument is the sentinel error for documents that cannot be turned into
// a tree.
var ErrDocument = errors.New("document error")

const (
	// RootName identifies the node a document decodes into.
	RootName = "data"
	// IndexKey keys entries of lists the schema declares no key for.
	IndexKey = "@index"
)

// Decode parses the first document of r and builds its tree. Every
// structural problem found is reported, aggregated in one error.
func Decode(r io.Reader, schema Schema) (tree.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrDocument, err)
	}

	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrDocument, err)
	}

	var body ast.Node
	for _, doc := range file.Docs {
		if doc != nil && doc.Body != nil {
			body = doc.Body
			break
		}
	}
	if body == nil {
		return nil, fmt.Errorf("%w: empty document", ErrDocument)
	}

	b := &builder{schema: schema}
	node := b.node(RootName, body, nil)
	if err := b.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return node, nil
}

type builder struct {
	schema Schema
	errs   *multierror.Error
}

func (b *builder) fail(at tree.Path, format string, args ...any) {
	b.errs = multierror.Append(b.errs, fmt.Errorf("%w: %s: %s", ErrDocument, at, fmt.Sprintf(format, args...)))
}

// node converts n into a tree node called name. at is the path of the node
// for error messages. A nil result means n was rejected.
func (b *builder) node(name string, n ast.Node, at tree.Path) tree.Node {
	switch v := unwrap(n).(type) {
	case *ast.MappingNode:
		return tree.NewContainer(name, b.fields(v.Values, at)...)
	case *ast.MappingValueNode:
		return tree.NewContainer(name, b.fields([]*ast.MappingValueNode{v}, at)...)
	case *ast.SequenceNode:
		return b.sequence(name, v, at)
	default:
		value, err := toValue(n)
		if err != nil {
			b.fail(at, "%v", err)
			return nil
		}
		return tree.NewLeaf(name, value)
	}
}

func (b *builder) fields(pairs []*ast.MappingValueNode, at tree.Path) []tree.Node {
	nodes := make([]tree.Node, 0, len(pairs))
	seen := make(map[string]struct{}, len(pairs))

	for _, pair := range pairs {
		name, err := keyName(pair.Key)
		if err != nil {
			b.fail(at, "%v", err)
			continue
		}
		if _, dup := seen[name]; dup {
			b.fail(at, "duplicate field %q", name)
			continue
		}
		seen[name] = struct{}{}

		if child := b.node(name, pair.Value, at.Append(tree.Named(name))); child != nil {
			nodes = append(nodes, child)
		}
	}
	return nodes
}

func (b *builder) sequence(name string, seq *ast.SequenceNode, at tree.Path) tree.Node {
	mappings := 0
	for _, item := range seq.Values {
		if isMapping(item) {
			mappings++
		}
	}

	_, declared := b.schema.Keys[name]
	switch {
	case mappings == 0 && !(declared && len(seq.Values) == 0):
		value, err := toValue(seq)
		if err != nil {
			b.fail(at, "%v", err)
			return nil
		}
		return tree.NewLeaf(name, value)
	case mappings != len(seq.Values):
		b.fail(at, "sequence mixes mappings with other values")
		return nil
	}

	keys := b.schema.Keys[name]
	entries := make([]*tree.Entry, 0, len(seq.Values))
	seen := make(map[string]int, len(seq.Values))

	for i, item := range seq.Values {
		itemAt := at.Append(tree.Named(name + "[" + strconv.Itoa(i) + "]"))
		children := b.entryFields(item, itemAt)

		key, ok := b.entryKey(keys, i, children, itemAt)
		if !ok {
			continue
		}
		if prev, dup := seen[key.Canonical()]; dup {
			b.fail(itemAt, "duplicate key %s, first used by entry %d", key, prev)
			continue
		}
		seen[key.Canonical()] = i

		entries = append(entries, tree.NewEntry(name, key, children...))
	}
	return tree.NewList(name, entries...)
}

func (b *builder) entryFields(item ast.Node, at tree.Path) []tree.Node {
	switch v := unwrap(item).(type) {
	case *ast.MappingNode:
		return b.fields(v.Values, at)
	case *ast.MappingValueNode:
		return b.fields([]*ast.MappingValueNode{v}, at)
	default:
		return nil
	}
}

// entryKey reads the key fields of an entry from its leaf children.
func (b *builder) entryKey(keys []string, index int, children []tree.Node, at tree.Path) (tree.Key, bool) {
	if len(keys) == 0 {
		return tree.KeyOf(IndexKey, int64(index)), true
	}

	byName := make(map[string]tree.Node, len(children))
	for _, c := range children {
		byName[c.Identifier().Name] = c
	}

	fields := make([]tree.KeyField, 0, len(keys))
	for _, k := range keys {
		leaf, ok := byName[k].(tree.LeafNode)
		if !ok {
			b.fail(at, "missing key field %q", k)
			return tree.Key{}, false
		}
		if _, isSeq := leaf.Value().([]any); isSeq {
			b.fail(at, "key field %q must be a scalar", k)
			return tree.Key{}, false
		}
		fields = append(fields, tree.KeyField{Name: k, Value: leaf.Value()})
	}
	return tree.NewKey(fields...), true
}

func isMapping(n ast.Node) bool {
	switch unwrap(n).(type) {
	case *ast.MappingNode, *ast.MappingValueNode:
		return true
	default:
		return false
	}
}

// unwrap strips tags and anchors.
func unwrap(n ast.Node) ast.Node {
	for {
		switch v := n.(type) {
		case *ast.TagNode:
			n = v.Value
		case *ast.AnchorNode:
			n = v.Value
		default:
			return n
		}
	}
}

func keyName(n ast.Node) (string, error) {
	switch v := unwrap(n).(type) {
	case *ast.StringNode:
		return v.Value, nil
	case *ast.MappingKeyNode:
		return keyName(v.Value)
	default:
		value, err := toValue(v)
		if err != nil {
			return "", fmt.Errorf("invalid mapping key: %w", err)
		}
		if value == nil {
			return "", errors.New("mapping key must not be null")
		}
		return fmt.Sprint(value), nil
	}
}

// NodeValue converts a YAML node holding a scalar or a nested structure into
// the plain value a leaf would store.
func NodeValue(n ast.Node) (any, error) {
	return toValue(n)
}

// toValue converts a scalar or a nested structure into a plain value.
// Integers are normalized to int64, floats are float64.
func toValue(n ast.Node) (any, error) {
	switch v := unwrap(n).(type) {
	case nil:
		return nil, nil
	case *ast.IntegerNode:
		if i, ok := number.ToInt64(v.Value); ok {
			return i, nil
		}
		if u, ok := v.Value.(uint64); ok {
			return u, nil
		}
		return nil, fmt.Errorf("unexpected integer value type %T", v.Value)
	case *ast.FloatNode:
		return v.Value, nil
	case *ast.InfinityNode:
		return v.Value, nil
	case *ast.NanNode:
		return math.NaN(), nil
	case *ast.StringNode:
		return v.Value, nil
	case *ast.LiteralNode:
		if v.Value == nil {
			return "", nil
		}
		return v.Value.Value, nil
	case *ast.BoolNode:
		return v.Value, nil
	case *ast.NullNode:
		return nil, nil
	case *ast.SequenceNode:
		out := make([]any, 0, len(v.Values))
		for i, item := range v.Values {
			value, err := toValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, value)
		}
		return out, nil
	case *ast.MappingNode:
		return mappingValue(v.Values)
	case *ast.MappingValueNode:
		return mappingValue([]*ast.MappingValueNode{v})
	case *ast.AliasNode:
		return nil, errors.New("aliases are not supported")
	default:
		return nil, fmt.Errorf("unsupported node type %T", n)
	}
}

func mappingValue(pairs []*ast.MappingValueNode) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, err := keyName(pair.Key)
		if err != nil {
			return nil, err
		}
		value, err := toValue(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = value
	}
	return out, nil
}
