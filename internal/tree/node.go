package tree

import (
	"fmt"
	"slices"
)

// Node is an immutable tree element.
type Node interface {
	// Identifier is the step addressing this node from its parent.
	Identifier() Step
}

// LeafNode carries an opaque value and has no children.
type LeafNode interface {
	Node
	Value() any
}

// ContainerNode has children addressed by a unique name, kept in their
// natural order.
type ContainerNode interface {
	Node
	Child(name string) (Node, bool)
	Len() int
	At(i int) Node
}

// ListNode is an ordered keyed collection of entries.
type ListNode interface {
	Node
	Lookup(key Key) (EntryNode, bool)
	Len() int
	At(i int) EntryNode
}

// EntryNode is one element of a list. Its identifier is a keyed step.
type EntryNode interface {
	ContainerNode
	Key() Key
}

var (
	_ LeafNode      = (*Leaf)(nil)
	_ ContainerNode = (*Container)(nil)
	_ ListNode      = (*List)(nil)
	_ EntryNode     = (*Entry)(nil)
)

type Leaf struct {
	id    Step
	value any
}

func NewLeaf(name string, value any) *Leaf {
	return &Leaf{id: Named(name), value: value}
}

func (l *Leaf) Identifier() Step { return l.id }

func (l *Leaf) Value() any { return l.value }

// children is the name-indexed child set shared by containers and entries.
type children struct {
	nodes []Node
	index map[string]int
}

func newChildren(owner string, nodes []Node) children {
	c := children{
		nodes: slices.Clone(nodes),
		index: make(map[string]int, len(nodes)),
	}
	for i, n := range c.nodes {
		id := n.Identifier()
		if id.IsKeyed() {
			panic(fmt.Sprintf("tree: %s: child %s must be addressed by a named step", owner, id))
		}
		if _, dup := c.index[id.Name]; dup {
			panic(fmt.Sprintf("tree: %s: duplicate child %q", owner, id.Name))
		}
		c.index[id.Name] = i
	}
	return c
}

func (c *children) child(name string) (Node, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.nodes[i], true
}

// Container is the immutable ContainerNode implementation.
type Container struct {
	id Step
	children
}

// NewContainer panics if two children share a name or a child is an entry.
func NewContainer(name string, nodes ...Node) *Container {
	return &Container{
		id:       Named(name),
		children: newChildren(name, nodes),
	}
}

func (c *Container) Identifier() Step { return c.id }

func (c *Container) Child(name string) (Node, bool) { return c.child(name) }

func (c *Container) Len() int { return len(c.nodes) }

func (c *Container) At(i int) Node { return c.nodes[i] }

// Entry is the immutable EntryNode implementation.
type Entry struct {
	id Step
	children
}

// NewEntry builds the entry with key of the list name. It panics on an empty
// key and on duplicate child names.
func NewEntry(name string, key Key, nodes ...Node) *Entry {
	if key.IsEmpty() {
		panic(fmt.Sprintf("tree: entry of %q requires a key", name))
	}
	id := Keyed(name, key)
	return &Entry{
		id:       id,
		children: newChildren(id.String(), nodes),
	}
}

func (e *Entry) Identifier() Step { return e.id }

func (e *Entry) Key() Key { return e.id.Key }

func (e *Entry) Child(name string) (Node, bool) { return e.child(name) }

func (e *Entry) Len() int { return len(e.nodes) }

func (e *Entry) At(i int) Node { return e.nodes[i] }

// List is the immutable ListNode implementation.
type List struct {
	id      Step
	entries []*Entry
	index   map[string]int
}

// NewList keeps entries in the given order. It panics if an entry belongs to
// a different list or two entries share a key.
func NewList(name string, entries ...*Entry) *List {
	l := &List{
		id:      Named(name),
		entries: slices.Clone(entries),
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range l.entries {
		if e.id.Name != name {
			panic(fmt.Sprintf("tree: list %q cannot hold entry %s", name, e.id))
		}
		canon := e.id.Key.Canonical()
		if _, dup := l.index[canon]; dup {
			panic(fmt.Sprintf("tree: list %q: duplicate entry key %s", name, e.id.Key))
		}
		l.index[canon] = i
	}
	return l
}

func (l *List) Identifier() Step { return l.id }

func (l *List) Lookup(key Key) (EntryNode, bool) {
	i, ok := l.index[key.Canonical()]
	if !ok {
		return nil, false
	}
	return l.entries[i], true
}

func (l *List) Len() int { return len(l.entries) }

func (l *List) At(i int) EntryNode { return l.entries[i] }
