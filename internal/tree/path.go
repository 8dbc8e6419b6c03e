package tree

import (
	"slices"
	"strings"
)

// Path is an ordered sequence of steps, either absolute (from the whole-tree
// root) or relative (from some node).
type Path []Step

// PathOf is a convenience for building a path from steps.
func PathOf(steps ...Step) Path {
	return Path(slices.Clone(steps))
}

// Append returns a new path with steps added; p is not modified.
func (p Path) Append(steps ...Step) Path {
	out := make(Path, 0, len(p)+len(steps))
	out = append(out, p...)
	return append(out, steps...)
}

// Last returns the final step of the path.
func (p Path) Last() (Step, bool) {
	if len(p) == 0 {
		return Step{}, false
	}
	return p[len(p)-1], true
}

// Parent returns the path without its final step. The parent of the empty
// path is the empty path.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

func (p Path) Equal(other Path) bool {
	return slices.EqualFunc(p, other, Step.Equal)
}

// String renders the path as /a/b[k=v]; the empty path renders as /.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}

	var b strings.Builder
	for _, s := range p {
		b.WriteByte('/')
		b.WriteString(s.String())
	}
	return b.String()
}
