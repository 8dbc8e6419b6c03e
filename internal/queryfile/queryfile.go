// Package queryfile loads query definitions written as YAML.
//
//	root: [config]
//	select:
//	  - items
//	  - name: items
//	    key: {id: 2}
//	where:
//	  - path: [active]
//	    op: equals
//	    value: true
//	  - path: [meta, owner]
//	    op: exists
//	    not: true
//
// A step is either a name or a mapping with a name and a key. Conditions use
// the operators of package predicate.
package queryfile

import (
	"errors"
	"fmt"
	"io"

	yaml "github.com/goccy/go-yaml"

	"github.com/jacoelho/treeq/internal/predicate"
	"github.com/jacoelho/treeq/internal/query"
	"github.com/jacoelho/treeq/internal/tree"
)

// ErrParser is the sentinel error for all query file failures.
var ErrParser = errors.New("query file error")

// File is a decoded query definition.
type File struct {
	Root   Path        `yaml:"root,omitempty"`
	Select Path        `yaml:"select"`
	Where  []Condition `yaml:"where,omitempty"`
}

// Decode reads a query definition without compiling its conditions.
func Decode(r io.Reader) (File, error) {
	var f File
	if err := yaml.NewDecoder(r, yaml.DisallowUnknownField()).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, fmt.Errorf("%w: empty query file", ErrParser)
		}
		return File{}, fmt.Errorf("%w: failed to decode YAML: %v", ErrParser, err)
	}
	return f, nil
}

// Parse reads a query definition and compiles it.
func Parse(r io.Reader) (query.Query, error) {
	f, err := Decode(r)
	if err != nil {
		return query.Query{}, err
	}
	return f.Query(predicate.NewCompiler())
}

// Query compiles the conditions of f with c.
func (f File) Query(c *predicate.Compiler) (query.Query, error) {
	preds := make([]query.Predicate, 0, len(f.Where))
	for i, cond := range f.Where {
		p, err := cond.predicate(c)
		if err != nil {
			return query.Query{}, fmt.Errorf("%w: where[%d]: %w", ErrParser, i, err)
		}
		preds = append(preds, p)
	}
	return query.New(tree.Path(f.Root), tree.Path(f.Select), preds...), nil
}
