package predicate

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/jacoelho/treeq/internal/number"
)

var (
	ErrInvalidInput = errors.New("invalid predicate input")
	ErrUnsupported  = errors.New("unsupported predicate operation")
)

type Operator string

const (
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "not_equals"
	OpContains           Operator = "contains"
	OpRegex              Operator = "regex"
	OpExists             Operator = "exists"
	OpLength             Operator = "length"
	OpGreaterThan        Operator = "greater_than"
	OpLessThan           Operator = "less_than"
	OpGreaterThanOrEqual Operator = "greater_than_or_equal"
	OpLessThanOrEqual    Operator = "less_than_or_equal"
	OpStartsWith         Operator = "starts_with"
	OpEndsWith           Operator = "ends_with"
	OpNotContains        Operator = "not_contains"
	OpIn                 Operator = "in"
	OpTypeIs             Operator = "type_is"
)

// Expr is one operator applied to the node found at a predicate path.
type Expr struct {
	Op       Operator
	Value    any
	HasValue bool
}

var supportedOperatorSet = map[Operator]struct{}{
	OpEquals:             {},
	OpNotEquals:          {},
	OpContains:           {},
	OpRegex:              {},
	OpExists:             {},
	OpLength:             {},
	OpGreaterThan:        {},
	OpLessThan:           {},
	OpGreaterThanOrEqual: {},
	OpLessThanOrEqual:    {},
	OpStartsWith:         {},
	OpEndsWith:           {},
	OpNotContains:        {},
	OpIn:                 {},
	OpTypeIs:             {},
}

var supportedTypeValues = []string{
	"list",
	"container",
	"string",
	"number",
	"boolean",
	"null",
	"sequence",
}

var supportedTypeValueSet = map[string]struct{}{
	"list":      {},
	"container": {},
	"string":    {},
	"number":    {},
	"boolean":   {},
	"null":      {},
	"sequence":  {},
}

type regexCompiler interface {
	Compile(pattern string) (*regexp.Regexp, error)
}

type cachedRegexCompiler struct {
	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

func newCachedRegexCompiler() *cachedRegexCompiler {
	return &cachedRegexCompiler{
		patterns: make(map[string]*regexp.Regexp),
	}
}

func (c *cachedRegexCompiler) Compile(pattern string) (*regexp.Regexp, error) {
	c.mu.RLock()
	if compiled, ok := c.patterns[pattern]; ok {
		c.mu.RUnlock()
		return compiled, nil
	}
	c.mu.RUnlock()

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid regex %q: %v", ErrInvalidInput, pattern, err)
	}

	c.mu.Lock()
	c.patterns[pattern] = compiled
	c.mu.Unlock()

	return compiled, nil
}

// operationFunc compares the subject found in the tree with the expected
// value of an expression.
type operationFunc func(actual subject, expected any) (bool, error)

// Compiler turns expressions into tests. It is safe for concurrent use; the
// regex cache is shared by every test it compiles.
type Compiler struct {
	regexCompiler regexCompiler
	operations    map[Operator]operationFunc
}

func NewCompiler() *Compiler {
	return newCompiler(newCachedRegexCompiler())
}

func newCompiler(compiler regexCompiler) *Compiler {
	c := &Compiler{
		regexCompiler: compiler,
	}

	c.operations = map[Operator]operationFunc{
		OpEquals: func(actual subject, expected any) (bool, error) {
			return actual.isLeaf && equalValues(actual.value, expected), nil
		},
		OpNotEquals: func(actual subject, expected any) (bool, error) {
			return actual.isLeaf && !equalValues(actual.value, expected), nil
		},
		OpContains: evaluateContains,
		OpRegex:    c.evaluateRegex,
		OpExists: func(actual subject, _ any) (bool, error) {
			return actual.present, nil
		},
		OpLength:             evaluateLength,
		OpGreaterThan:        evaluateGreaterThan,
		OpLessThan:           evaluateLessThan,
		OpGreaterThanOrEqual: evaluateGreaterThanOrEqual,
		OpLessThanOrEqual:    evaluateLessThanOrEqual,
		OpStartsWith:         evaluateStartsWith,
		OpEndsWith:           evaluateEndsWith,
		OpNotContains:        evaluateNotContains,
		OpIn:                 evaluateIn,
		OpTypeIs:             evaluateTypeIs,
	}

	return c
}

func isSupportedOperator(op Operator) bool {
	_, ok := supportedOperatorSet[op]
	return ok
}

// SupportedOperators returns every operator name accepted by ParseOperator, sorted.
func SupportedOperators() []Operator {
	ops := slices.Collect(maps.Keys(supportedOperatorSet))
	slices.Sort(ops)
	return ops
}

func ParseOperator(input string) (Operator, error) {
	op := Operator(input)
	if isSupportedOperator(op) {
		return op, nil
	}
	names := make([]string, 0, len(supportedOperatorSet))
	for _, op := range SupportedOperators() {
		names = append(names, string(op))
	}
	return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupported, input, strings.Join(names, ", "))
}

func ValidateExpr(expr Expr) error {
	if !isSupportedOperator(expr.Op) {
		return fmt.Errorf("%w: %q", ErrUnsupported, expr.Op)
	}

	if expr.Op == OpExists {
		if expr.HasValue {
			return fmt.Errorf("%w: operation %q does not accept a value", ErrInvalidInput, expr.Op)
		}
		return nil
	}

	if !expr.HasValue {
		return fmt.Errorf("%w: operation %q requires a value", ErrInvalidInput, expr.Op)
	}

	switch expr.Op {
	case OpTypeIs:
		if _, err := parseTypeValue(expr.Value); err != nil {
			return err
		}
	case OpLength:
		if _, ok := number.ToInt64(expr.Value); !ok {
			return fmt.Errorf("%w: %q requires integer expected value, got %T", ErrInvalidInput, OpLength, expr.Value)
		}
	case OpIn:
		kind := reflect.ValueOf(expr.Value).Kind()
		if kind != reflect.Slice && kind != reflect.Array {
			return fmt.Errorf("%w: %q requires array/slice expected value, got %T", ErrInvalidInput, OpIn, expr.Value)
		}
	}

	return nil
}

func (c *Compiler) evaluate(expr Expr, actual subject) (bool, error) {
	opFunc, ok := c.operations[expr.Op]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnsupported, expr.Op)
	}

	return opFunc(actual, expr.Value)
}

func equalValues(actual, expected any) bool {
	if reflect.DeepEqual(actual, expected) {
		return true
	}

	actualNumber, actualIsNumber := number.ToFloat64(actual)
	expectedNumber, expectedIsNumber := number.ToFloat64(expected)
	if actualIsNumber && expectedIsNumber {
		return actualNumber == expectedNumber
	}

	return false
}

func evaluateContains(actual subject, expected any) (bool, error) {
	return evaluateStringComparison(OpContains, actual, expected, strings.Contains)
}

func (c *Compiler) evaluateRegex(actual subject, expected any) (bool, error) {
	actualString, err := requireStringActual(OpRegex, actual)
	if err != nil {
		return false, err
	}
	pattern, err := requireStringExpected(OpRegex, expected)
	if err != nil {
		return false, err
	}

	regex, err := c.regexCompiler.Compile(pattern)
	if err != nil {
		return false, err
	}

	return regex.MatchString(actualString), nil
}

func evaluateLength(actual subject, expected any) (bool, error) {
	expectedLength, ok := number.ToInt64(expected)
	if !ok {
		return false, fmt.Errorf("%w: %q requires integer expected value, got %T", ErrInvalidInput, OpLength, expected)
	}

	if !actual.present {
		return false, fmt.Errorf("%w: %q requires a node, got none", ErrInvalidInput, OpLength)
	}

	if !actual.isLeaf {
		return int64(actual.length) == expectedLength, nil
	}

	if actual.value == nil {
		return false, fmt.Errorf("%w: %q requires string or sequence leaf value, got nil", ErrInvalidInput, OpLength)
	}

	actualValue := reflect.ValueOf(actual.value)
	switch actualValue.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return int64(actualValue.Len()) == expectedLength, nil
	default:
		return false, fmt.Errorf("%w: %q requires string or sequence leaf value, got %T", ErrInvalidInput, OpLength, actual.value)
	}
}

func evaluateGreaterThan(actual subject, expected any) (bool, error) {
	return evaluateNumericComparison(OpGreaterThan, actual, expected, func(a, b float64) bool { return a > b })
}

func evaluateLessThan(actual subject, expected any) (bool, error) {
	return evaluateNumericComparison(OpLessThan, actual, expected, func(a, b float64) bool { return a < b })
}

func evaluateGreaterThanOrEqual(actual subject, expected any) (bool, error) {
	return evaluateNumericComparison(OpGreaterThanOrEqual, actual, expected, func(a, b float64) bool { return a >= b })
}

func evaluateLessThanOrEqual(actual subject, expected any) (bool, error) {
	return evaluateNumericComparison(OpLessThanOrEqual, actual, expected, func(a, b float64) bool { return a <= b })
}

func evaluateNumericComparison(op Operator, actual subject, expected any, compare func(float64, float64) bool) (bool, error) {
	if !actual.isLeaf {
		return false, fmt.Errorf("%w: %q requires a leaf, got %s", ErrInvalidInput, op, actual.kind())
	}

	actualNumber, actualIsNumber := number.ToFloat64(actual.value)
	expectedNumber, expectedIsNumber := number.ToFloat64(expected)
	if !actualIsNumber || !expectedIsNumber {
		return false, fmt.Errorf("%w: %q requires numeric values, got %T and %T", ErrInvalidInput, op, actual.value, expected)
	}

	return compare(actualNumber, expectedNumber), nil
}

func evaluateStartsWith(actual subject, expected any) (bool, error) {
	return evaluateStringComparison(OpStartsWith, actual, expected, strings.HasPrefix)
}

func evaluateEndsWith(actual subject, expected any) (bool, error) {
	return evaluateStringComparison(OpEndsWith, actual, expected, strings.HasSuffix)
}

func evaluateNotContains(actual subject, expected any) (bool, error) {
	return evaluateStringComparison(OpNotContains, actual, expected, func(actualString, expectedString string) bool {
		return !strings.Contains(actualString, expectedString)
	})
}

func evaluateIn(actual subject, expected any) (bool, error) {
	expectedValue := reflect.ValueOf(expected)
	if expectedValue.Kind() != reflect.Slice && expectedValue.Kind() != reflect.Array {
		return false, fmt.Errorf("%w: %q requires array/slice expected value, got %T", ErrInvalidInput, OpIn, expected)
	}

	if !actual.isLeaf {
		return false, nil
	}

	for i := 0; i < expectedValue.Len(); i++ {
		if equalValues(actual.value, expectedValue.Index(i).Interface()) {
			return true, nil
		}
	}

	return false, nil
}

func evaluateTypeIs(actual subject, expected any) (bool, error) {
	expectedType, err := parseTypeValue(expected)
	if err != nil {
		return false, err
	}

	return actual.kind() == expectedType, nil
}

func parseTypeValue(value any) (string, error) {
	typeValue, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q requires string expected value, got %T", ErrInvalidInput, OpTypeIs, value)
	}

	normalized := strings.ToLower(strings.TrimSpace(typeValue))
	if _, ok := supportedTypeValueSet[normalized]; ok {
		return normalized, nil
	}

	return "", fmt.Errorf("%w: %q requires one of %v, got %q", ErrInvalidInput, OpTypeIs, supportedTypeValues, typeValue)
}

// detectTypeValue names the type of a leaf value.
func detectTypeValue(value any) string {
	if value == nil {
		return "null"
	}

	reflected := reflect.ValueOf(value)
	for reflected.Kind() == reflect.Interface || reflected.Kind() == reflect.Ptr {
		if reflected.IsNil() {
			return "null"
		}
		reflected = reflected.Elem()
	}

	switch reflected.Kind() {
	case reflect.Array, reflect.Slice:
		return "sequence"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "number"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "number"
	case reflect.Float32, reflect.Float64:
		return "number"
	default:
		return "container"
	}
}

func evaluateStringComparison(op Operator, actual subject, expected any, compare func(actual string, expected string) bool) (bool, error) {
	actualString, err := requireStringActual(op, actual)
	if err != nil {
		return false, err
	}

	expectedString, err := requireStringExpected(op, expected)
	if err != nil {
		return false, err
	}

	return compare(actualString, expectedString), nil
}

func requireStringActual(op Operator, actual subject) (string, error) {
	actualString, ok := actual.value.(string)
	if !actual.isLeaf || !ok {
		return "", fmt.Errorf("%w: %q requires string leaf value, got %s", ErrInvalidInput, op, actual.kind())
	}

	return actualString, nil
}

func requireStringExpected(op Operator, expected any) (string, error) {
	expectedString, ok := expected.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q requires string expected value, got %T", ErrInvalidInput, op, expected)
	}

	return expectedString, nil
}
