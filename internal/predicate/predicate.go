// Package predicate builds the boolean tests that query predicates apply to
// the node found at a predicate path.
//
// A Test receives nil when the path did not resolve, so absence is an input
// like any other: Exists fails on it, Not(Exists()) passes.
package predicate

import (
	"fmt"

	"github.com/jacoelho/treeq/internal/tree"
)

// Test reports whether node satisfies a condition; node is nil when absent.
type Test func(node tree.Node) bool

// subject is the view of a node that operators compare against.
type subject struct {
	present bool
	isLeaf  bool
	isList  bool
	value   any
	length  int
}

func newSubject(node tree.Node) subject {
	switch n := node.(type) {
	case nil:
		return subject{}
	case tree.LeafNode:
		return subject{present: true, isLeaf: true, value: n.Value()}
	case tree.ListNode:
		return subject{present: true, isList: true, length: n.Len()}
	case tree.ContainerNode:
		return subject{present: true, length: n.Len()}
	default:
		return subject{present: true}
	}
}

func (s subject) kind() string {
	switch {
	case !s.present:
		return "absent"
	case s.isList:
		return "list"
	case !s.isLeaf:
		return "container"
	default:
		return detectTypeValue(s.value)
	}
}

// Compile validates expr and returns its test. Operand type mismatches found
// while testing (a regex against a number, say) make the test fail rather than
// surface as errors.
func (c *Compiler) Compile(expr Expr) (Test, error) {
	if err := ValidateExpr(expr); err != nil {
		return nil, err
	}

	if expr.Op == OpRegex {
		pattern, err := requireStringExpected(OpRegex, expr.Value)
		if err != nil {
			return nil, err
		}
		if _, err := c.regexCompiler.Compile(pattern); err != nil {
			return nil, err
		}
	}

	return func(node tree.Node) bool {
		ok, err := c.evaluate(expr, newSubject(node))
		return err == nil && ok
	}, nil
}

// Evaluate applies expr to node once and reports operand errors.
func (c *Compiler) Evaluate(expr Expr, node tree.Node) (bool, error) {
	if err := ValidateExpr(expr); err != nil {
		return false, err
	}
	return c.evaluate(expr, newSubject(node))
}

var defaultCompiler = NewCompiler()

// Compile uses a package-wide compiler.
func Compile(expr Expr) (Test, error) {
	return defaultCompiler.Compile(expr)
}

// MustCompile is like Compile but panics if the expression is invalid.
func MustCompile(expr Expr) Test {
	t, err := Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("predicate: MustCompile(%s): %v", expr.Op, err))
	}
	return t
}

// Exists passes for any present node.
func Exists() Test {
	return func(node tree.Node) bool { return node != nil }
}

// Equals passes for leaves whose value equals v; numbers compare across types.
func Equals(v any) Test {
	return Value(func(actual any) bool { return equalValues(actual, v) })
}

// Value passes for leaves whose value satisfies fn.
func Value(fn func(any) bool) Test {
	return func(node tree.Node) bool {
		leaf, ok := node.(tree.LeafNode)
		return ok && fn(leaf.Value())
	}
}

func Not(t Test) Test {
	return func(node tree.Node) bool { return !t(node) }
}

// And passes when every test passes; evaluation stops at the first failure.
func And(tests ...Test) Test {
	return func(node tree.Node) bool {
		for _, t := range tests {
			if !t(node) {
				return false
			}
		}
		return true
	}
}

// Or passes when any test passes; evaluation stops at the first success.
func Or(tests ...Test) Test {
	return func(node tree.Node) bool {
		for _, t := range tests {
			if t(node) {
				return true
			}
		}
		return false
	}
}
