// Package query describes entity queries as data: AND-joined predicates,
// sort orders, page requests and named queries.
package query

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// ErrUnknownField indicates a predicate or sort order on a field the entity does not have.
var ErrUnknownField = errors.New("unknown entity field")

// Operator is a predicate comparator.
type Operator string

// Supported comparators.
const (
	OpEq Operator = "="
	OpGt Operator = ">"
	OpGe Operator = ">="
	OpLt Operator = "<"
	OpIn Operator = "IN"
)

// Predicate compares one entity field against a value.
type Predicate struct {
	Field    string
	Operator Operator
	Value    any
}

// Criteria is an ordered list of predicates joined by AND.
// Values are immutable; every builder call returns a new Criteria.
type Criteria struct {
	predicates []Predicate
}

// FieldRef is a field awaiting its comparator.
type FieldRef struct {
	base  Criteria
	field string
}

// Where starts a Criteria on field.
func Where(field string) FieldRef {
	return FieldRef{field: field}
}

// And adds another field to c.
func (c Criteria) And(field string) FieldRef {
	return FieldRef{base: c, field: field}
}

// Eq requires field = value.
func (f FieldRef) Eq(value any) Criteria { return f.with(OpEq, value) }

// Gt requires field > value.
func (f FieldRef) Gt(value any) Criteria { return f.with(OpGt, value) }

// Ge requires field >= value.
func (f FieldRef) Ge(value any) Criteria { return f.with(OpGe, value) }

// Lt requires field < value.
func (f FieldRef) Lt(value any) Criteria { return f.with(OpLt, value) }

// In requires field to be one of values. No values matches nothing.
func (f FieldRef) In(values ...any) Criteria { return f.with(OpIn, values) }

func (f FieldRef) with(op Operator, value any) Criteria {
	predicates := make([]Predicate, 0, len(f.base.predicates)+1)
	predicates = append(predicates, f.base.predicates...)
	predicates = append(predicates, Predicate{Field: f.field, Operator: op, Value: value})
	return Criteria{predicates: predicates}
}

// Predicates returns a copy of the predicates in declaration order.
func (c Criteria) Predicates() []Predicate {
	out := make([]Predicate, len(c.predicates))
	copy(out, c.predicates)
	return out
}

// IsEmpty reports whether c has no predicates.
func (c Criteria) IsEmpty() bool {
	return len(c.predicates) == 0
}

// String renders c for logs.
func (c Criteria) String() string {
	parts := make([]string, 0, len(c.predicates))
	for _, p := range c.predicates {
		parts = append(parts, fmt.Sprintf("%s %s %v", p.Field, p.Operator, p.Value))
	}
	return strings.Join(parts, " AND ")
}

// Build translates c into clause expressions over the columns of sch.
// Columns are qualified with the statement's main table.
func (c Criteria) Build(sch *schema.Schema) ([]clause.Expression, error) {
	exprs := make([]clause.Expression, 0, len(c.predicates))
	for _, p := range c.predicates {
		field, err := ResolveField(sch, p.Field)
		if err != nil {
			return nil, err
		}
		column := clause.Column{Table: clause.CurrentTable, Name: field.DBName}

		switch p.Operator {
		case OpEq:
			exprs = append(exprs, clause.Eq{Column: column, Value: p.Value})
		case OpGt:
			exprs = append(exprs, clause.Gt{Column: column, Value: p.Value})
		case OpGe:
			exprs = append(exprs, clause.Gte{Column: column, Value: p.Value})
		case OpLt:
			exprs = append(exprs, clause.Lt{Column: column, Value: p.Value})
		case OpIn:
			values, _ := p.Value.([]any)
			if len(values) == 0 {
				exprs = append(exprs, clause.Expr{SQL: "1 = 0"})
				continue
			}
			exprs = append(exprs, clause.IN{Column: column, Values: values})
		default:
			return nil, fmt.Errorf("unsupported operator %q on %s", p.Operator, p.Field)
		}
	}
	return exprs, nil
}

// ResolveField finds the persisted field of sch named name.
// Both Go field names and column names match, case-insensitively.
func ResolveField(sch *schema.Schema, name string) (*schema.Field, error) {
	if sch == nil {
		return nil, fmt.Errorf("%w: %s (no schema)", ErrUnknownField, name)
	}
	if f := sch.LookUpField(name); f != nil && f.DBName != "" {
		return f, nil
	}
	for _, f := range sch.Fields {
		if f.DBName == "" {
			continue
		}
		if strings.EqualFold(f.Name, name) || strings.EqualFold(f.DBName, name) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, sch.Name, name)
}
