package query

import (
	"iter"
	"slices"

	"github.com/jacoelho/treeq/internal/tree"
)

// Result is an ordered sequence of matches that can be traversed any number
// of times.
type Result interface {
	// All iterates the matches in document order.
	All() iter.Seq[Match]
	// Iterator starts a new pull style traversal.
	Iterator() *Iterator
	// Collect drains a traversal into a slice.
	Collect() []Match
}

var (
	_ Result = (*EagerResult)(nil)
	_ Result = (*LazyResult)(nil)
)

// EagerResult holds matches computed ahead of time.
type EagerResult struct {
	matches []Match
}

func NewEagerResult(matches []Match) *EagerResult {
	return &EagerResult{matches: slices.Clone(matches)}
}

func (r *EagerResult) All() iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for _, m := range r.matches {
			if !yield(m) {
				return
			}
		}
	}
}

func (r *EagerResult) Iterator() *Iterator {
	i := 0
	return newIterator(func() (Match, bool) {
		if i >= len(r.matches) {
			return Match{}, false
		}
		m := r.matches[i]
		i++
		return m, true
	})
}

func (r *EagerResult) Collect() []Match {
	return slices.Clone(r.matches)
}

func (r *EagerResult) Len() int {
	return len(r.matches)
}

// LazyResult computes matches on demand. Every traversal runs its own Engine
// over the same query and root.
type LazyResult struct {
	q    Query
	root tree.Node
}

func (r *LazyResult) All() iter.Seq[Match] {
	return func(yield func(Match) bool) {
		e := NewEngine(r.q, r.root)
		for {
			m, ok := e.Next()
			if !ok || !yield(m) {
				return
			}
		}
	}
}

func (r *LazyResult) Iterator() *Iterator {
	return newIterator(NewEngine(r.q, r.root).Next)
}

func (r *LazyResult) Collect() []Match {
	return slices.Collect(r.All())
}

// Iterator is a single pass traversal with one match of lookahead. It must
// not be shared between goroutines.
type Iterator struct {
	pull   func() (Match, bool)
	head   Match
	peeked bool
	done   bool
}

func newIterator(pull func() (Match, bool)) *Iterator {
	return &Iterator{pull: pull}
}

// HasNext reports whether Next would return a match.
func (it *Iterator) HasNext() bool {
	if it.peeked {
		return true
	}
	if it.done {
		return false
	}

	m, ok := it.pull()
	if !ok {
		it.done = true
		return false
	}
	it.head = m
	it.peeked = true
	return true
}

func (it *Iterator) Next() (Match, bool) {
	if !it.HasNext() {
		return Match{}, false
	}
	m := it.head
	it.head = Match{}
	it.peeked = false
	return m, true
}

// NextBatch returns up to n matches. A short batch means the traversal is
// exhausted.
func (it *Iterator) NextBatch(n int) []Match {
	if n <= 0 {
		return nil
	}

	batch := make([]Match, 0, min(n, 16))
	for len(batch) < n {
		m, ok := it.Next()
		if !ok {
			break
		}
		batch = append(batch, m)
	}
	return batch
}

// Split never divides a traversal.
func (it *Iterator) Split() (*Iterator, bool) {
	return nil, false
}
