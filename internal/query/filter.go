// Package query validates client-supplied conference filters and turns them
// into a backend-safe query plan. The backend cannot run inequality
// comparisons on more than one field in a single query, and requires the
// first sort key to match the sole inequality field when one is present;
// both rules are enforced here instead of being delegated to the store.
package query

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidFilter is returned for filters that cannot be translated:
// unknown fields or operators, inequality comparisons on more than one
// field, or numeric values that do not coerce to an integer.
var ErrInvalidFilter = errors.New("invalid filter")

// Field is the closed set of filterable conference fields.
type Field int

const (
	FieldCity Field = iota
	FieldTopic
	FieldMonth
	FieldMaxAttendees
)

var fieldNames = map[string]Field{
	"CITY":          FieldCity,
	"TOPIC":         FieldTopic,
	"MONTH":         FieldMonth,
	"MAX_ATTENDEES": FieldMaxAttendees,
}

var fieldProperties = map[Field]string{
	FieldCity:         "city",
	FieldTopic:        "topics",
	FieldMonth:        "month",
	FieldMaxAttendees: "maxAttendees",
}

// ParseField resolves a symbolic field name (e.g. "CITY").
func ParseField(name string) (Field, error) {
	f, ok := fieldNames[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, name)
	}
	return f, nil
}

// Property returns the backend property name for f, or "" for an
// out-of-range value.
func (f Field) Property() string {
	return fieldProperties[f]
}

// Numeric reports whether values for f must be coerced to integers.
func (f Field) Numeric() bool {
	return f == FieldMonth || f == FieldMaxAttendees
}

// Operator is the closed set of comparison operators.
type Operator int

const (
	OpEqual Operator = iota
	OpGreater
	OpGreaterOrEqual
	OpLess
	OpLessOrEqual
	OpNotEqual
)

var operatorNames = map[string]Operator{
	"EQ":   OpEqual,
	"GT":   OpGreater,
	"GTEQ": OpGreaterOrEqual,
	"LT":   OpLess,
	"LTEQ": OpLessOrEqual,
	"NE":   OpNotEqual,
}

var operatorSymbols = map[Operator]string{
	OpEqual:          "=",
	OpGreater:        ">",
	OpGreaterOrEqual: ">=",
	OpLess:           "<",
	OpLessOrEqual:    "<=",
	OpNotEqual:       "!=",
}

// ParseOperator resolves a symbolic operator name (e.g. "GTEQ").
func ParseOperator(name string) (Operator, error) {
	op, ok := operatorNames[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, name)
	}
	return op, nil
}

// String returns the comparison symbol for op, or "" for an out-of-range
// value.
func (op Operator) String() string {
	return operatorSymbols[op]
}

// Equality reports whether op is the equality comparison. Every other
// operator counts as an inequality, including "!=".
func (op Operator) Equality() bool {
	return op == OpEqual
}

// Filter is one client-supplied (field, operator, value) triple, with the
// field and operator still in their symbolic forms ("CITY", "GTEQ").
type Filter struct {
	Field    string
	Operator string
	Value    any
}

// Node is one validated filter predicate: backend property name, operator,
// and a value already coerced to the property's type.
type Node struct {
	Property string
	Op       Operator
	Value    any
}

// Plan is an ordered, backend-safe conference query: conjunctive filter
// nodes plus the resolved sort order. When an inequality filter is present
// its property leads OrderBy, followed by name; otherwise the order is name
// alone. Ordering is ascending and stable.
type Plan struct {
	Nodes              []Node
	InequalityProperty string
	OrderBy            []string
}

// BuildPlan validates and normalizes the filter triples into a Plan. The
// triples are checked in order; the first violation aborts with
// ErrInvalidFilter and no partial plan.
func BuildPlan(filters []Filter) (*Plan, error) {
	plan := &Plan{}

	for _, f := range filters {
		field, err := ParseField(f.Field)
		if err != nil {
			return nil, err
		}
		op, err := ParseOperator(f.Operator)
		if err != nil {
			return nil, err
		}
		prop := field.Property()

		if !op.Equality() {
			// The backend allows inequality comparisons on one field only.
			if plan.InequalityProperty != "" && plan.InequalityProperty != prop {
				return nil, fmt.Errorf("%w: inequality filter is allowed on only one field", ErrInvalidFilter)
			}
			plan.InequalityProperty = prop
		}

		value := f.Value
		if field.Numeric() {
			n, err := coerceInt(value)
			if err != nil {
				return nil, fmt.Errorf("%w: field %s needs an integer value, got %v", ErrInvalidFilter, prop, value)
			}
			value = n
		}

		plan.Nodes = append(plan.Nodes, Node{Property: prop, Op: op, Value: value})
	}

	if plan.InequalityProperty != "" {
		plan.OrderBy = []string{plan.InequalityProperty, "name"}
	} else {
		plan.OrderBy = []string{"name"}
	}
	return plan, nil
}

func coerceInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", n)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("not an integer: %T", v)
	}
}
