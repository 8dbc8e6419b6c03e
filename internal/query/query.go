package query

import (
	"fmt"
	"slices"

	"github.com/jacoelho/treeq/internal/predicate"
	"github.com/jacoelho/treeq/internal/tree"
)

// Query selects nodes below a root path. The zero value selects the
// whole-tree root without predicates.
type Query struct {
	root       tree.Path
	sel        tree.Path
	predicates []Predicate
}

// New builds a query. The inputs are copied.
func New(root, sel tree.Path, predicates ...Predicate) Query {
	return Query{
		root:       slices.Clone(root),
		sel:        slices.Clone(sel),
		predicates: slices.Clone(predicates),
	}
}

// Root is the absolute path of the node the select path starts from.
func (q Query) Root() tree.Path { return slices.Clone(q.root) }

// Select is the path walked from the root node to reach candidates.
func (q Query) Select() tree.Path { return slices.Clone(q.sel) }

func (q Query) Predicates() []Predicate { return slices.Clone(q.predicates) }

func (q Query) String() string {
	return fmt.Sprintf("root=%s select=%s predicates=%d", q.root, q.sel, len(q.predicates))
}

// Predicate tests the node found at Path, relative to a candidate.
type Predicate struct {
	Path    tree.Path
	Negated bool
	Test    predicate.Test
}

// Where builds a predicate that accepts a candidate when test accepts the node
// at path. A nil test checks presence.
func Where(path tree.Path, test predicate.Test) Predicate {
	if test == nil {
		test = predicate.Exists()
	}
	return Predicate{Path: slices.Clone(path), Test: test}
}

// Not builds the negation of Where(path, test). Absence is fed to test first,
// so Not(path, predicate.Exists()) accepts candidates lacking path.
func Not(path tree.Path, test predicate.Test) Predicate {
	p := Where(path, test)
	p.Negated = true
	return p
}

func (p Predicate) String() string {
	if p.Negated {
		return "not " + p.Path.String()
	}
	return p.Path.String()
}

// Match is a node satisfying a query together with its absolute path.
type Match struct {
	Path tree.Path
	Node tree.Node
}

func (m Match) String() string {
	return m.Path.String()
}
