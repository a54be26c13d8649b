package query

import (
	"fmt"
	"strings"

	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// Order sorts by one property.
type Order struct {
	Property  string
	Direction Direction
}

// Asc orders by property ascending.
func Asc(property string) Order {
	return Order{Property: property, Direction: Ascending}
}

// Desc orders by property descending.
func Desc(property string) Order {
	return Order{Property: property, Direction: Descending}
}

// Sort is an ordered list of orders. The zero value is unsorted.
type Sort []Order

// By creates a Sort.
func By(orders ...Order) Sort {
	return Sort(orders)
}

// IsUnsorted reports whether s has no orders.
func (s Sort) IsUnsorted() bool {
	return len(s) == 0
}

// And appends other to s without modifying either.
func (s Sort) And(other Sort) Sort {
	out := make(Sort, 0, len(s)+len(other))
	out = append(out, s...)
	return append(out, other...)
}

// String renders s as "prop,dir;prop,dir".
func (s Sort) String() string {
	parts := make([]string, 0, len(s))
	for _, o := range s {
		parts = append(parts, o.Property+","+strings.ToLower(string(o.Direction)))
	}
	return strings.Join(parts, ";")
}

// ParseSort parses sort parameters of the form "property" or "property,asc|desc".
// Each value adds one order.
func ParseSort(values ...string) (Sort, error) {
	var out Sort
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		property, dir, hasDir := strings.Cut(v, ",")
		property = strings.TrimSpace(property)
		if property == "" {
			return nil, fmt.Errorf("invalid sort %q: empty property", v)
		}
		order := Asc(property)
		if hasDir {
			switch strings.ToLower(strings.TrimSpace(dir)) {
			case "asc":
			case "desc":
				order.Direction = Descending
			default:
				return nil, fmt.Errorf("invalid sort %q: direction must be asc or desc", v)
			}
		}
		out = append(out, order)
	}
	return out, nil
}

// Build translates s into ORDER BY columns of sch.
func (s Sort) Build(sch *schema.Schema) ([]clause.OrderByColumn, error) {
	columns := make([]clause.OrderByColumn, 0, len(s))
	for _, o := range s {
		field, err := ResolveField(sch, o.Property)
		if err != nil {
			return nil, err
		}
		columns = append(columns, clause.OrderByColumn{
			Column: clause.Column{Table: clause.CurrentTable, Name: field.DBName},
			Desc:   o.Direction == Descending,
		})
	}
	return columns, nil
}
