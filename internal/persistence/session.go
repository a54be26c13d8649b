package persistence

import (
	"context"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/festy23/datajpa/internal/audit"
)

// Manager opens sessions over one database handle.
type Manager struct {
	db       *gorm.DB
	stamper  *audit.Stamper
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

// NewManager creates a Manager. A nil stamper records the system actor.
func NewManager(db *gorm.DB, stamper *audit.Stamper, logger *zap.SugaredLogger) *Manager {
	if stamper == nil {
		stamper = audit.NewStamper(nil)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{
		db:       db,
		stamper:  stamper,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// DB returns the underlying handle.
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Session opens a session whose statements run in autocommit mode.
func (m *Manager) Session() *Session {
	return m.newSession(m.db)
}

// InTransaction runs fn in one transaction with a fresh session.
// The transaction commits when fn returns nil and rolls back otherwise.
func (m *Manager) InTransaction(ctx context.Context, fn func(s *Session) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(m.newSession(tx))
	})
}

func (m *Manager) newSession(db *gorm.DB) *Session {
	return &Session{
		db:         db,
		stamper:    m.stamper,
		validate:   m.validate,
		logger:     m.logger,
		identities: make(map[identityKey]any),
	}
}

type identityKey struct {
	table string
	id    string
}

// Session is one unit of work. Entities loaded or saved through a session are
// registered in its identity map: a row is represented by a single pointer
// until the session is cleared. Managed instances are never refreshed from
// later reads, so statements that bypass the map (bulk updates) leave them
// stale until Clear is called.
//
// A Session is not safe for concurrent use.
type Session struct {
	db         *gorm.DB
	stamper    *audit.Stamper
	validate   *validator.Validate
	logger     *zap.SugaredLogger
	identities map[identityKey]any
}

// DB returns the session's handle, a transaction when opened by InTransaction.
func (s *Session) DB() *gorm.DB {
	return s.db
}

// Logger returns the session logger.
func (s *Session) Logger() *zap.SugaredLogger {
	return s.logger
}

// Clear detaches every managed entity.
func (s *Session) Clear() {
	s.logger.Debugw("session cleared", "managed", len(s.identities))
	s.identities = make(map[identityKey]any)
}

// Size returns the number of managed entities.
func (s *Session) Size() int {
	return len(s.identities)
}

// Contains reports whether entity is the managed instance of its row.
func (s *Session) Contains(entity any) bool {
	key, ok := s.keyOf(entity)
	if !ok {
		return false
	}
	managed, found := s.identities[key]
	return found && managed == entity
}

// Detach removes entity from the identity map.
func (s *Session) Detach(entity any) {
	if key, ok := s.keyOf(entity); ok {
		delete(s.identities, key)
	}
}

func (s *Session) schemaOf(model any) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: s.db}
	if err := stmt.Parse(model); err != nil {
		return nil, fmt.Errorf("failed to parse entity schema: %w", err)
	}
	return stmt.Schema, nil
}

// keyOf returns the identity of a pointer to an entity with a non-zero primary key.
func (s *Session) keyOf(entity any) (identityKey, bool) {
	v := reflect.ValueOf(entity)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return identityKey{}, false
	}
	sch, err := s.schemaOf(entity)
	if err != nil {
		return identityKey{}, false
	}
	return keyFor(sch, v.Elem())
}

func keyFor(sch *schema.Schema, v reflect.Value) (identityKey, bool) {
	pk := sch.PrioritizedPrimaryField
	if pk == nil {
		return identityKey{}, false
	}
	value, zero := pk.ValueOf(context.Background(), v)
	if zero {
		return identityKey{}, false
	}
	return identityKey{table: sch.Table, id: fmt.Sprint(value)}, true
}

// attach returns the managed instance for loaded, registering loaded when the
// row is not yet managed. Associations loaded by fetch joins are attached too.
func (s *Session) attach(sch *schema.Schema, loaded reflect.Value, fetch Fetch) reflect.Value {
	key, ok := keyFor(sch, loaded.Elem())
	if !ok {
		return loaded
	}

	for _, name := range fetch.joins {
		rel, found := sch.Relationships.Relations[name]
		if !found || rel.FieldSchema == nil {
			continue
		}
		assoc := rel.Field.ReflectValueOf(context.Background(), loaded.Elem())
		if assoc.Kind() == reflect.Pointer && !assoc.IsNil() {
			assoc.Set(s.attach(rel.FieldSchema, assoc, Fetch{}))
		}
	}

	if managed, found := s.identities[key]; found {
		mv := reflect.ValueOf(managed)
		if mv.Type() != loaded.Type() {
			return loaded
		}
		for _, name := range fetch.joins {
			rel, found := sch.Relationships.Relations[name]
			if !found {
				continue
			}
			target := rel.Field.ReflectValueOf(context.Background(), mv.Elem())
			if target.IsZero() {
				target.Set(rel.Field.ReflectValueOf(context.Background(), loaded.Elem()))
			}
		}
		return mv
	}

	s.identities[key] = loaded.Interface()
	return loaded
}

func (s *Session) register(sch *schema.Schema, entity any) {
	if key, ok := keyFor(sch, reflect.ValueOf(entity).Elem()); ok {
		s.identities[key] = entity
	}
}

func (s *Session) evict(sch *schema.Schema, entity any) {
	if key, ok := keyFor(sch, reflect.ValueOf(entity).Elem()); ok {
		delete(s.identities, key)
	}
}
