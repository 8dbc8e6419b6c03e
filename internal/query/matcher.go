package query

import "github.com/jacoelho/treeq/internal/tree"

// matches reports whether node satisfies every predicate, stopping at the
// first one that fails.
func matches(node tree.Node, predicates []Predicate) bool {
	for _, p := range predicates {
		if !p.matches(node) {
			return false
		}
	}
	return true
}

func (p Predicate) matches(node tree.Node) bool {
	var ok bool
	if len(p.Path) <= 1 {
		ok = p.Test(directChild(node, p.Path))
	} else {
		ok = matchesAny(node, p.Path, p)
	}
	return ok != p.Negated
}

// directChild resolves a path of at most one step without enumerating lists.
// A miss yields nil.
func directChild(node tree.Node, path tree.Path) tree.Node {
	if len(path) == 0 {
		return node
	}
	child, ok := tree.Lookup(node, path[0])
	if !ok {
		return nil
	}
	return child
}

// matchesAny walks path from node, trying every entry at a wildcard step until
// one branch passes the test. Any miss, including an empty list at a wildcard,
// is tested as absence.
func matchesAny(node tree.Node, path tree.Path, p Predicate) bool {
	if len(path) == 0 {
		return p.Test(node)
	}

	step, rest := path[0], path[1:]
	if tree.IsWildcard(node, step) {
		list := node.(tree.ListNode)
		if list.Len() == 0 {
			return p.Test(nil)
		}
		for i := range list.Len() {
			if matchesAny(list.At(i), rest, p) {
				return true
			}
		}
		return false
	}

	child, ok := tree.Lookup(node, step)
	if !ok {
		return p.Test(nil)
	}
	return matchesAny(child, rest, p)
}
