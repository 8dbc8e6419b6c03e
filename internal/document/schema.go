package document

import (
	"errors"
	"fmt"
	"io"

	yaml "github.com/goccy/go-yaml"
)

// Schema names the key fields of lists, by list name.
//
//	keys:
//	  items: [id]
//	  hosts: [name, zone]
type Schema struct {
	Keys map[string][]string `yaml:"keys"`
}

// LoadSchema reads a schema file. An empty file is an empty schema.
func LoadSchema(r io.Reader) (Schema, error) {
	var s Schema
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Schema{}, nil
		}
		return Schema{}, fmt.Errorf("%w: schema: %v", ErrDocument, err)
	}

	for name, fields := range s.Keys {
		seen := make(map[string]struct{}, len(fields))
		for _, f := range fields {
			if f == "" {
				return Schema{}, fmt.Errorf("%w: schema: list %q has an empty key field", ErrDocument, name)
			}
			if _, dup := seen[f]; dup {
				return Schema{}, fmt.Errorf("%w: schema: list %q repeats key field %q", ErrDocument, name, f)
			}
			seen[f] = struct{}{}
		}
	}
	return s, nil
}
