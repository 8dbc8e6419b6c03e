package query

import (
	"github.com/jacoelho/treeq/internal/stack"
	"github.com/jacoelho/treeq/internal/tree"
)

type frameState uint8

const (
	// stateEnter: the next select step has not been applied to the node.
	stateEnter frameState = iota
	// stateScan: the entries of the list are candidates.
	stateScan
	// stateFanOut: the remaining select steps continue in every entry.
	stateFanOut
	stateExhausted
)

// frame is one level of the traversal.
type frame struct {
	node tree.Node
	// step is the select step consumed at this node, restored on unwind.
	step     tree.Step
	consumed bool
	list     tree.ListNode
	next     int
	state    frameState
}

func (f *frame) hasNext() bool {
	switch f.state {
	case stateScan, stateFanOut:
		return f.next < f.list.Len()
	default:
		return false
	}
}

// Engine is a resumable depth first search over one query and root. Each call
// to Next resumes the search past the previous match.
//
// An Engine holds mutable traversal state and must not be used from more than
// one goroutine without external synchronization. Dropping it at any point is
// safe.
type Engine struct {
	root       tree.Path
	predicates []Predicate
	selLen     int
	rootOnly   bool

	remaining *stack.Stack[tree.Step]
	path      *stack.Stack[tree.Step]
	frames    *stack.Stack[frame]
	done      bool
}

// NewEngine positions a search at root, the node found at q.Root(). A nil
// root means the root path is absent and the search is already exhausted.
func NewEngine(q Query, root tree.Node) *Engine {
	e := &Engine{
		root:       q.root,
		predicates: q.predicates,
		selLen:     len(q.sel),
		rootOnly:   len(q.sel) == 0,
		remaining:  stack.NewWithCapacity[tree.Step](len(q.sel)),
		path:       stack.NewWithCapacity[tree.Step](len(q.sel) + 1),
		frames:     stack.NewWithCapacity[frame](len(q.sel) + 1),
	}
	if root == nil {
		e.done = true
		return e
	}

	e.remaining.PushReversed(q.sel...)
	e.frames.Push(frame{node: root})
	return e
}

// Next returns the next match in document order. Once it reports false every
// later call does too.
func (e *Engine) Next() (Match, bool) {
	for {
		e.unwind()
		if e.done {
			return Match{}, false
		}

		f := e.frames.PeekRef()
		switch f.state {
		case stateEnter:
			if m, ok := e.enter(f); ok {
				return m, true
			}
		case stateScan:
			entry := f.list.At(f.next)
			f.next++
			if matches(entry, e.predicates) {
				return e.match(entry, true), true
			}
		case stateFanOut:
			entry := f.list.At(f.next)
			f.next++
			e.descend(entry)
		}
	}
}

// Split always reports that the remaining search cannot be divided.
func (e *Engine) Split() (*Engine, bool) {
	return nil, false
}

// enter applies the next pending select step to the node of f.
func (e *Engine) enter(f *frame) (Match, bool) {
	step, ok := e.remaining.Pop()
	if !ok {
		if list, isList := f.node.(tree.ListNode); isList && !e.rootOnly {
			f.list = list
			f.state = stateScan
			return Match{}, false
		}
		f.state = stateExhausted
		if matches(f.node, e.predicates) {
			return e.match(f.node, false), true
		}
		return Match{}, false
	}

	f.step = step
	f.consumed = true
	if tree.IsWildcard(f.node, step) {
		f.list = f.node.(tree.ListNode)
		f.state = stateFanOut
		return Match{}, false
	}

	f.state = stateExhausted
	if child, ok := tree.Lookup(f.node, step); ok {
		e.descend(child)
	}
	return Match{}, false
}

// descend pushes a frame for node; f must not be used afterwards.
func (e *Engine) descend(node tree.Node) {
	e.frames.Push(frame{node: node})
	e.path.Push(node.Identifier())
}

// unwind discards exhausted frames, restoring the select step each consumed,
// until a frame with work left is on top or the search is over.
func (e *Engine) unwind() {
	for !e.done {
		f := e.frames.PeekRef()
		if f == nil {
			e.finish()
			return
		}
		if f.state == stateEnter || f.hasNext() {
			return
		}

		popped, _ := e.frames.Pop()
		if popped.consumed {
			e.remaining.Push(popped.step)
		}
		if e.frames.IsEmpty() {
			continue
		}
		if _, ok := e.path.Pop(); !ok {
			panic("query: path underflow while unwinding")
		}
	}
}

func (e *Engine) finish() {
	if !e.path.IsEmpty() {
		panic("query: search exhausted with a non-empty path")
	}
	if e.remaining.Size() != e.selLen {
		panic("query: search exhausted without restoring the select path")
	}
	e.remaining.Clear()
	e.done = true
}

// match materialises the absolute path of node. A scanned entry is not on
// the path stack yet.
func (e *Engine) match(node tree.Node, scanned bool) Match {
	n := len(e.root) + e.path.Size()
	if scanned {
		n++
	}

	path := make(tree.Path, 0, n)
	path = append(path, e.root...)
	path = e.path.AppendTo(path)
	if scanned {
		path = append(path, node.Identifier())
	}
	return Match{Path: path, Node: node}
}
