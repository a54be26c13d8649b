package persistence

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/festy23/datajpa/internal/persistence/query"
)

// Spec describes one read. A named query, when set, replaces Where.
type Spec struct {
	// Where holds derived predicates.
	Where query.Criteria
	// Named is a predeclared filter bound with Args.
	Named *query.NamedQuery
	Args  map[string]any
	// Sort is appended after the named query's own order.
	Sort  query.Sort
	Fetch Fetch
	Lock  LockMode
	// Scope adds hand-written clauses such as joins that only filter.
	Scope func(*gorm.DB) *gorm.DB
}

// NamedOrDerived prefers the named query registered under name and falls back
// to derived only when the registry has no such query.
func NamedOrDerived(reg *query.Registry, name string, args map[string]any, derived Spec) Spec {
	q, ok := reg.Lookup(name)
	if !ok {
		return derived
	}
	named := derived
	named.Where = query.Criteria{}
	named.Named = &q
	named.Args = args
	return named
}

// IsNamed reports whether sp runs a named query.
func (sp Spec) IsNamed() bool {
	return sp.Named != nil
}

// forCount strips everything that does not change the number of rows.
func (sp Spec) forCount() Spec {
	return Spec{Where: sp.Where, Named: sp.Named, Args: sp.Args, Scope: sp.Scope}
}

// filter applies the filter part of sp to db.
func (sp Spec) filter(db *gorm.DB, sch *schema.Schema) (*gorm.DB, error) {
	if sp.Scope != nil {
		db = sp.Scope(db)
	}
	if sp.Named != nil {
		return sp.Named.Bind(db, sp.Args)
	}
	exprs, err := sp.Where.Build(sch)
	if err != nil {
		return nil, err
	}
	if len(exprs) > 0 {
		db = db.Clauses(clause.Where{Exprs: exprs})
	}
	return db, nil
}

// build applies the whole spec plus extra sort orders.
func (sp Spec) build(db *gorm.DB, sch *schema.Schema, extra query.Sort) (*gorm.DB, error) {
	db = sp.Fetch.apply(db)
	db, err := sp.filter(db, sch)
	if err != nil {
		return nil, err
	}
	orders, err := sp.Sort.And(extra).Build(sch)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		db = db.Order(o)
	}
	return sp.Lock.apply(db), nil
}

func (sp Spec) describe() string {
	if sp.Named != nil {
		return "named " + sp.Named.Name
	}
	if sp.Where.IsEmpty() {
		return "all"
	}
	return fmt.Sprintf("where %s", sp.Where)
}
