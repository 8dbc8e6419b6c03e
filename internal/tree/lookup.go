package tree

// Lookup resolves step as a direct child of parent.
//
// Against a container or entry a named step resolves the child of that name.
// Against a list a keyed step carrying the list name resolves the entry with
// that key. A named step against a list is a wildcard and never resolves
// here; callers enumerate the entries instead. Leaves have no children.
func Lookup(parent Node, step Step) (Node, bool) {
	switch p := parent.(type) {
	case ListNode:
		if !step.IsKeyed() || step.Name != p.Identifier().Name {
			return nil, false
		}
		entry, ok := p.Lookup(step.Key)
		if !ok {
			return nil, false
		}
		return entry, true
	case ContainerNode:
		if step.IsKeyed() {
			return nil, false
		}
		return p.Child(step.Name)
	default:
		return nil, false
	}
}

// Find resolves a relative path from node by direct lookups only.
func Find(node Node, path Path) (Node, bool) {
	current := node
	for _, step := range path {
		next, ok := Lookup(current, step)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// IsWildcard reports whether step, applied to parent, enumerates the entries
// of a list rather than resolving a single child.
func IsWildcard(parent Node, step Step) bool {
	list, ok := parent.(ListNode)
	return ok && !step.IsKeyed() && step.Name == list.Identifier().Name
}
