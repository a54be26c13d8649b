package persistence

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fetch is an explicit fetch plan. The zero value loads no associations.
type Fetch struct {
	joins []string
}

// FetchLazy loads only the entity's own columns. Associations are resolved
// on demand, one query each.
var FetchLazy = Fetch{}

// FetchJoin loads the named to-one associations in the same query with LEFT JOINs.
func FetchJoin(associations ...string) Fetch {
	joins := make([]string, len(associations))
	copy(joins, associations)
	return Fetch{joins: joins}
}

// Joins returns the associations loaded by f.
func (f Fetch) Joins() []string {
	out := make([]string, len(f.joins))
	copy(out, f.joins)
	return out
}

func (f Fetch) apply(db *gorm.DB) *gorm.DB {
	for _, name := range f.joins {
		db = db.Joins(name)
	}
	return db
}

// LockMode selects row locking for a read.
type LockMode int

// Lock modes.
const (
	LockNone LockMode = iota
	// LockPessimisticRead takes shared row locks (FOR SHARE).
	LockPessimisticRead
	// LockPessimisticWrite takes exclusive row locks (FOR UPDATE), blocking
	// concurrent writers until the owning transaction ends.
	LockPessimisticWrite
)

// String returns the mode name.
func (m LockMode) String() string {
	switch m {
	case LockPessimisticRead:
		return "PESSIMISTIC_READ"
	case LockPessimisticWrite:
		return "PESSIMISTIC_WRITE"
	default:
		return "NONE"
	}
}

// Clause returns the locking clause for m on the statement's main table.
func (m LockMode) Clause() (clause.Locking, bool) {
	table := clause.Table{Name: clause.CurrentTable}
	switch m {
	case LockPessimisticRead:
		return clause.Locking{Strength: "SHARE", Table: table}, true
	case LockPessimisticWrite:
		return clause.Locking{Strength: "UPDATE", Table: table}, true
	default:
		return clause.Locking{}, false
	}
}

// apply adds the locking clause. SQLite has no row locks; there the
// database-level write lock of the transaction applies instead.
func (m LockMode) apply(db *gorm.DB) *gorm.DB {
	locking, ok := m.Clause()
	if !ok || db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(locking)
}
