package tree

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jacoelho/treeq/internal/number"
)

// KeyField is one name/value pair of a composite list key.
type KeyField struct {
	Name  string
	Value any
}

// Key is the composite key of a list entry. Two keys are equal when they hold
// the same name/value pairs, regardless of the order the pairs were given in.
// Integer values compare equal across Go integer types.
//
// The zero Key is empty.
type Key struct {
	fields []KeyField
	canon  string
}

// NewKey builds a key from fields. Later fields replace earlier ones with the
// same name.
func NewKey(fields ...KeyField) Key {
	if len(fields) == 0 {
		return Key{}
	}

	out := make([]KeyField, 0, len(fields))
	for _, f := range fields {
		if i := slices.IndexFunc(out, func(e KeyField) bool { return e.Name == f.Name }); i >= 0 {
			out[i] = f
			continue
		}
		out = append(out, f)
	}

	return Key{fields: out, canon: canonicalKey(out)}
}

// KeyOf builds a key from alternating name, value arguments:
//
//	KeyOf("id", 2, "region", "eu")
//
// It panics if a name is not a string or a value is missing.
func KeyOf(pairs ...any) Key {
	if len(pairs)%2 != 0 {
		panic("tree: KeyOf requires name/value pairs")
	}

	fields := make([]KeyField, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("tree: KeyOf name at position %d must be a string, got %T", i, pairs[i]))
		}
		fields = append(fields, KeyField{Name: name, Value: pairs[i+1]})
	}

	return NewKey(fields...)
}

func (k Key) IsEmpty() bool {
	return len(k.fields) == 0
}

func (k Key) Len() int {
	return len(k.fields)
}

// Fields returns a copy of the key fields in the order they were given.
func (k Key) Fields() []KeyField {
	return slices.Clone(k.fields)
}

// Get returns the value of the named key field.
func (k Key) Get(name string) (any, bool) {
	for _, f := range k.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func (k Key) Equal(other Key) bool {
	return k.canon == other.canon
}

// String renders the key as comma separated name=value pairs in the order
// they were given.
func (k Key) String() string {
	var b strings.Builder
	for i, f := range k.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(displayValue(f.Value))
	}
	return b.String()
}

// Canonical is the lookup form of the key, independent of field order. Equal
// keys have the same canonical form.
func (k Key) Canonical() string {
	return k.canon
}

func canonicalKey(fields []KeyField) string {
	sorted := slices.Clone(fields)
	slices.SortFunc(sorted, func(a, b KeyField) int { return strings.Compare(a.Name, b.Name) })

	var b strings.Builder
	for _, f := range sorted {
		b.WriteString(strconv.Quote(f.Name))
		b.WriteByte('=')
		b.WriteString(canonicalValue(f.Value))
		b.WriteByte(';')
	}
	return b.String()
}

func canonicalValue(v any) string {
	if v == nil {
		return "null"
	}
	if i, ok := number.ToInt64(v); ok {
		return "i:" + strconv.FormatInt(i, 10)
	}
	if f, ok := number.ToFloat64(v); ok {
		return "f:" + strconv.FormatFloat(f, 'g', -1, 64)
	}

	switch current := v.(type) {
	case string:
		return "s:" + strconv.Quote(current)
	case bool:
		return "b:" + strconv.FormatBool(current)
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}

func displayValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Step addresses one child of a node. A step without a key is a named step;
// a step with a key is a keyed step and addresses exactly one list entry.
//
// A named step used against a list is a wildcard over all of its entries.
type Step struct {
	Name string
	Key  Key
}

// Named returns a named step.
func Named(name string) Step {
	return Step{Name: name}
}

// Keyed returns a keyed step addressing the entry with key in the list name.
func Keyed(name string, key Key) Step {
	return Step{Name: name, Key: key}
}

func (s Step) IsKeyed() bool {
	return !s.Key.IsEmpty()
}

func (s Step) Equal(other Step) bool {
	return s.Name == other.Name && s.Key.Equal(other.Key)
}

// String renders name or name[k=v,...].
func (s Step) String() string {
	if !s.IsKeyed() {
		return s.Name
	}
	return s.Name + "[" + s.Key.String() + "]"
}
