// Package query evaluates path queries against a tree.
//
// A Query is made of three parts:
//   - a root path, resolved from the whole-tree root by direct lookups
//   - a select path, walked from the root node
//   - predicates, each a relative path plus a test over the node found there
//
// A named select step applied to a list is a wildcard and visits every entry
// of the list in collection order. When the select path ends on a list the
// candidates are its entries. Every candidate that satisfies all predicates
// is reported as a Match carrying its absolute path.
//
// Matches can be collected eagerly with Evaluate or pulled one at a time with
// EvaluateLazy. The lazy form drives an Engine, an explicit-stack depth first
// search that suspends after each match and resumes exactly past it. Both
// forms produce the same sequence in document order.
//
// Lookup misses are never errors: an absent step prunes its branch, and an
// absent predicate path hands a nil node to the predicate test.
package query
