package query

import (
	"slices"

	"github.com/jacoelho/treeq/internal/tree"
)

// eager collects every match of a query by recursive descent.
type eager struct {
	q       Query
	path    tree.Path
	matches []Match
}

func evaluateEager(q Query, root tree.Node) []Match {
	if root == nil {
		return nil
	}

	if len(q.sel) == 0 {
		if matches(root, q.predicates) {
			return []Match{{Path: slices.Clone(q.root), Node: root}}
		}
		return nil
	}

	e := &eager{
		q:    q,
		path: make(tree.Path, 0, len(q.root)+len(q.sel)+1),
	}
	e.path = append(e.path, q.root...)
	e.descend(root, 0)
	return e.matches
}

func (e *eager) descend(node tree.Node, depth int) {
	if depth == len(e.q.sel) {
		e.collect(node)
		return
	}

	step := e.q.sel[depth]
	if tree.IsWildcard(node, step) {
		list := node.(tree.ListNode)
		for i := range list.Len() {
			e.visit(list.At(i), depth+1)
		}
		return
	}

	if child, ok := tree.Lookup(node, step); ok {
		e.visit(child, depth+1)
	}
}

func (e *eager) visit(node tree.Node, depth int) {
	e.path = append(e.path, node.Identifier())
	e.descend(node, depth)
	e.path = e.path[:len(e.path)-1]
}

// collect tests the node reached by the select path. A list stands for its
// entries.
func (e *eager) collect(node tree.Node) {
	list, ok := node.(tree.ListNode)
	if !ok {
		e.accept(node)
		return
	}

	for i := range list.Len() {
		entry := list.At(i)
		e.path = append(e.path, entry.Identifier())
		e.accept(entry)
		e.path = e.path[:len(e.path)-1]
	}
}

func (e *eager) accept(node tree.Node) {
	if matches(node, e.q.predicates) {
		e.matches = append(e.matches, Match{Path: slices.Clone(e.path), Node: node})
	}
}
