// Package tree implements the immutable, labelled document tree that queries
// are evaluated against.
//
// A tree is made of four node shapes:
//   - leaves, carrying an opaque value
//   - containers, whose children are addressed by a unique name
//   - lists, ordered keyed collections of entries
//   - entries, containers identified by a composite key
//
// Every node has an identifier, the Step that addresses it from its parent.
// Containers and leaves are identified by a named step, entries by a keyed step
// whose name is the name of the enclosing list.
//
// Nodes built by this package are never mutated after construction, so a tree
// can be shared by any number of concurrent readers.
package tree
