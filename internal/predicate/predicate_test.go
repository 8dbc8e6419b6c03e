package predicate

import (
	"errors"
	"testing"

	"github.com/jacoelho/treeq/internal/tree"
)

func TestParseOperator(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "supported", input: "equals"},
		{name: "supported_type_is", input: "type_is"},
		{name: "unsupported", input: "bad", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOperator(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOperator() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateExpr(t *testing.T) {
	tests := []struct {
		name    string
		expr    Expr
		wantErr error
	}{
		{name: "exists_without_value", expr: Expr{Op: OpExists}},
		{name: "exists_with_value", expr: Expr{Op: OpExists, Value: true, HasValue: true}, wantErr: ErrInvalidInput},
		{name: "equals_without_value", expr: Expr{Op: OpEquals}, wantErr: ErrInvalidInput},
		{name: "equals_with_value", expr: Expr{Op: OpEquals, Value: "ok", HasValue: true}},
		{name: "type_is_valid", expr: Expr{Op: OpTypeIs, Value: "list", HasValue: true}},
		{name: "type_is_invalid_value", expr: Expr{Op: OpTypeIs, Value: "array", HasValue: true}, wantErr: ErrInvalidInput},
		{name: "length_float_expected", expr: Expr{Op: OpLength, Value: 3.5, HasValue: true}, wantErr: ErrInvalidInput},
		{name: "in_non_collection", expr: Expr{Op: OpIn, Value: "abc", HasValue: true}, wantErr: ErrInvalidInput},
		{name: "unknown_operator", expr: Expr{Op: "nope"}, wantErr: ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExpr(tt.expr)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("ValidateExpr() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateExpr() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	list := tree.NewList("items",
		tree.NewEntry("items", tree.KeyOf("id", 1)),
		tree.NewEntry("items", tree.KeyOf("id", 2)),
	)
	container := tree.NewContainer("c", tree.NewLeaf("a", 1))

	tests := []struct {
		name string
		expr Expr
		node tree.Node
		want bool
	}{
		{name: "equals_numeric_cross_type", expr: Expr{Op: OpEquals, Value: float64(42), HasValue: true}, node: tree.NewLeaf("n", int64(42)), want: true},
		{name: "equals_absent", expr: Expr{Op: OpEquals, Value: 1, HasValue: true}, node: nil, want: false},
		{name: "equals_container", expr: Expr{Op: OpEquals, Value: 1, HasValue: true}, node: container, want: false},
		{name: "not_equals", expr: Expr{Op: OpNotEquals, Value: "a", HasValue: true}, node: tree.NewLeaf("s", "b"), want: true},
		{name: "not_equals_absent", expr: Expr{Op: OpNotEquals, Value: "a", HasValue: true}, node: nil, want: false},
		{name: "contains_string", expr: Expr{Op: OpContains, Value: "John", HasValue: true}, node: tree.NewLeaf("s", "John Doe"), want: true},
		{name: "contains_non_string_actual", expr: Expr{Op: OpContains, Value: "John", HasValue: true}, node: tree.NewLeaf("s", 123), want: false},
		{name: "regex", expr: Expr{Op: OpRegex, Value: `^v\d+`, HasValue: true}, node: tree.NewLeaf("s", "v10"), want: true},
		{name: "exists_leaf", expr: Expr{Op: OpExists}, node: tree.NewLeaf("s", ""), want: true},
		{name: "exists_absent", expr: Expr{Op: OpExists}, node: nil, want: false},
		{name: "length_string", expr: Expr{Op: OpLength, Value: 3, HasValue: true}, node: tree.NewLeaf("s", "abc"), want: true},
		{name: "length_list", expr: Expr{Op: OpLength, Value: int64(2), HasValue: true}, node: list, want: true},
		{name: "length_container", expr: Expr{Op: OpLength, Value: 1, HasValue: true}, node: container, want: true},
		{name: "length_absent", expr: Expr{Op: OpLength, Value: 0, HasValue: true}, node: nil, want: false},
		{name: "greater_than", expr: Expr{Op: OpGreaterThan, Value: 10, HasValue: true}, node: tree.NewLeaf("n", 10.5), want: true},
		{name: "less_than_or_equal", expr: Expr{Op: OpLessThanOrEqual, Value: 10, HasValue: true}, node: tree.NewLeaf("n", 10), want: true},
		{name: "greater_than_string", expr: Expr{Op: OpGreaterThan, Value: 1, HasValue: true}, node: tree.NewLeaf("n", "2"), want: false},
		{name: "starts_with", expr: Expr{Op: OpStartsWith, Value: "eu-", HasValue: true}, node: tree.NewLeaf("s", "eu-west"), want: true},
		{name: "ends_with", expr: Expr{Op: OpEndsWith, Value: "west", HasValue: true}, node: tree.NewLeaf("s", "eu-west"), want: true},
		{name: "not_contains", expr: Expr{Op: OpNotContains, Value: "us", HasValue: true}, node: tree.NewLeaf("s", "eu-west"), want: true},
		{name: "in_collection", expr: Expr{Op: OpIn, Value: []any{"a", "b", "c"}, HasValue: true}, node: tree.NewLeaf("s", "b"), want: true},
		{name: "in_numbers_cross_type", expr: Expr{Op: OpIn, Value: []any{int64(1), int64(2)}, HasValue: true}, node: tree.NewLeaf("n", 2), want: true},
		{name: "type_is_list", expr: Expr{Op: OpTypeIs, Value: "list", HasValue: true}, node: list, want: true},
		{name: "type_is_container_entry", expr: Expr{Op: OpTypeIs, Value: "container", HasValue: true}, node: list.At(0), want: true},
		{name: "type_is_number", expr: Expr{Op: OpTypeIs, Value: "number", HasValue: true}, node: tree.NewLeaf("n", 42), want: true},
		{name: "type_is_boolean", expr: Expr{Op: OpTypeIs, Value: "boolean", HasValue: true}, node: tree.NewLeaf("b", true), want: true},
		{name: "type_is_null", expr: Expr{Op: OpTypeIs, Value: "null", HasValue: true}, node: tree.NewLeaf("z", nil), want: true},
		{name: "type_is_null_absent", expr: Expr{Op: OpTypeIs, Value: "null", HasValue: true}, node: nil, want: false},
		{name: "type_is_sequence", expr: Expr{Op: OpTypeIs, Value: "sequence", HasValue: true}, node: tree.NewLeaf("tags", []any{"a"}), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if got := test(tt.node); got != tt.want {
				t.Fatalf("test(%v) = %v, want %v", tt.node, got, tt.want)
			}
		})
	}
}

func TestCompile_InvalidRegex(t *testing.T) {
	_, err := Compile(Expr{Op: OpRegex, Value: "[invalid", HasValue: true})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Compile() error = %v, want %v", err, ErrInvalidInput)
	}
}

func TestCompiler_EvaluateReportsOperandErrors(t *testing.T) {
	c := NewCompiler()

	_, err := c.Evaluate(Expr{Op: OpContains, Value: "x", HasValue: true}, tree.NewLeaf("n", 1))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Evaluate() error = %v, want %v", err, ErrInvalidInput)
	}

	ok, err := c.Evaluate(Expr{Op: OpEquals, Value: "x", HasValue: true}, tree.NewLeaf("s", "x"))
	if err != nil || !ok {
		t.Fatalf("Evaluate() = %v, %v, want true, nil", ok, err)
	}
}

func TestCombinators(t *testing.T) {
	leaf := tree.NewLeaf("active", true)

	tests := []struct {
		name string
		test Test
		node tree.Node
		want bool
	}{
		{name: "exists_present", test: Exists(), node: leaf, want: true},
		{name: "exists_absent", test: Exists(), node: nil, want: false},
		{name: "not_exists_absent", test: Not(Exists()), node: nil, want: true},
		{name: "equals", test: Equals(true), node: leaf, want: true},
		{name: "equals_absent", test: Equals(true), node: nil, want: false},
		{name: "not_equals_absent", test: Not(Equals(true)), node: nil, want: true},
		{name: "and", test: And(Exists(), Equals(true)), node: leaf, want: true},
		{name: "and_short", test: And(Equals(false), Exists()), node: leaf, want: false},
		{name: "or", test: Or(Equals(false), Equals(true)), node: leaf, want: true},
		{name: "or_none", test: Or(), node: leaf, want: false},
		{name: "value_on_container", test: Value(func(any) bool { return true }), node: tree.NewContainer("c"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.test(tt.node); got != tt.want {
				t.Fatalf("test() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCachedRegexCompilerCachesByPattern(t *testing.T) {
	t.Parallel()

	compiler := newCachedRegexCompiler()

	first, err := compiler.Compile("^a+$")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	second, err := compiler.Compile("^a+$")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if first != second {
		t.Fatalf("Compile() returned different compiled regex pointers for same pattern")
	}

	if _, err := compiler.Compile("[invalid"); err == nil {
		t.Fatal("Compile() expected invalid regex error")
	}
}
