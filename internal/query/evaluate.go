package query

import "github.com/jacoelho/treeq/internal/tree"

// Evaluate returns every match of q below root, the node at q.Root().
func Evaluate(q Query, root tree.Node) []Match {
	return evaluateEager(q, root)
}

// EvaluateSingle returns the first match in document order, visiting no more
// of the tree than needed to find it.
func EvaluateSingle(q Query, root tree.Node) (Match, bool) {
	return NewEngine(q, root).Next()
}

// EvaluateLazy returns a result that searches on demand.
func EvaluateLazy(q Query, root tree.Node) *LazyResult {
	return &LazyResult{q: q, root: root}
}

// EvaluateFrom resolves q.Root() from the whole-tree root before evaluating.
// An absent root gives no matches.
func EvaluateFrom(q Query, whole tree.Node) []Match {
	return Evaluate(q, resolveRoot(q, whole))
}

func EvaluateSingleFrom(q Query, whole tree.Node) (Match, bool) {
	return EvaluateSingle(q, resolveRoot(q, whole))
}

func EvaluateLazyFrom(q Query, whole tree.Node) *LazyResult {
	return EvaluateLazy(q, resolveRoot(q, whole))
}

func resolveRoot(q Query, whole tree.Node) tree.Node {
	if whole == nil {
		return nil
	}
	node, ok := tree.Find(whole, q.root)
	if !ok {
		return nil
	}
	return node
}
