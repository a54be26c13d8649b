package persistence

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/festy23/datajpa/internal/persistence/query"
)

// Persistable lets an entity decide whether Save inserts or updates.
// Entities without it are new while their primary key is zero.
type Persistable interface {
	IsNew() bool
}

// Find returns the entity with primary key id. The managed instance is
// returned without a query when the session already holds it.
func Find[T any](ctx context.Context, s *Session, id any) (*T, error) {
	sch, err := s.schemaOf(new(T))
	if err != nil {
		return nil, err
	}
	pk := sch.PrioritizedPrimaryField
	if pk == nil {
		return nil, fmt.Errorf("%s has no primary key", sch.Name)
	}

	key := identityKey{table: sch.Table, id: fmt.Sprint(id)}
	if managed, ok := s.identities[key].(*T); ok {
		return managed, nil
	}

	var e T
	err = s.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: pk.DBName}, Value: id}).
		Take(&e).Error
	if err != nil {
		return nil, translate(err)
	}
	return s.attach(sch, reflect.ValueOf(&e), FetchLazy).Interface().(*T), nil
}

// Save inserts a new entity or updates an existing one and registers it in the
// session. Audit fields are stamped and the entity validated first; when the
// write fails the entity is restored to its state before the call.
// An update whose row no longer exists inserts it. Associations are never written.
func Save[T any](ctx context.Context, s *Session, entity *T) error {
	if entity == nil {
		return fmt.Errorf("%w: nil entity", ErrConstraintViolation)
	}
	sch, err := s.schemaOf(entity)
	if err != nil {
		return err
	}

	snapshot := *entity
	if err := write(ctx, s, sch, entity); err != nil {
		*entity = snapshot
		return err
	}

	s.register(sch, entity)
	return nil
}

func write[T any](ctx context.Context, s *Session, sch *schema.Schema, entity *T) error {
	creating := isNew(sch, entity)
	if creating {
		s.stamper.OnCreate(ctx, entity)
	} else {
		s.stamper.OnUpdate(ctx, entity)
	}
	if err := s.validate.StructCtx(ctx, entity); err != nil {
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}

	tx := s.db.WithContext(ctx).Omit(clause.Associations)
	if creating {
		return translate(tx.Create(entity).Error)
	}

	res := tx.Model(entity).Select("*").Updates(entity)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// nothing written: either no updatable columns or the row is gone
	found, err := exists(ctx, s, sch, entity)
	if err != nil || found {
		return err
	}
	s.stamper.OnCreate(ctx, entity)
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error)
}

func exists[T any](ctx context.Context, s *Session, sch *schema.Schema, entity *T) (bool, error) {
	pk := sch.PrioritizedPrimaryField
	if pk == nil {
		return false, fmt.Errorf("%s has no primary key", sch.Name)
	}
	id, _ := pk.ValueOf(ctx, reflect.ValueOf(entity).Elem())

	var n int64
	err := s.db.WithContext(ctx).Model(new(T)).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: pk.DBName}, Value: id}).
		Count(&n).Error
	if err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

func isNew(sch *schema.Schema, entity any) bool {
	if p, ok := entity.(Persistable); ok {
		return p.IsNew()
	}
	_, ok := keyFor(sch, reflect.ValueOf(entity).Elem())
	return !ok
}

// Delete removes the entity's row by primary key and evicts it from the session.
// ErrNotFound is returned when no row has that key. Nothing is cascaded.
func Delete[T any](ctx context.Context, s *Session, entity *T) error {
	if entity == nil {
		return fmt.Errorf("%w: nil entity", ErrNotFound)
	}
	sch, err := s.schemaOf(entity)
	if err != nil {
		return err
	}
	key, ok := keyFor(sch, reflect.ValueOf(entity).Elem())
	if !ok {
		return fmt.Errorf("%w: %s without primary key", ErrNotFound, sch.Name)
	}

	res := s.db.WithContext(ctx).Omit(clause.Associations).Delete(entity)
	if res.Error != nil {
		return translate(res.Error)
	}
	s.evict(sch, entity)
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, sch.Name, key.id)
	}
	return nil
}

// Count returns the number of rows matching spec.
func Count[T any](ctx context.Context, s *Session, spec Spec) (int64, error) {
	sch, err := s.schemaOf(new(T))
	if err != nil {
		return 0, err
	}
	tx, err := spec.forCount().filter(s.db.WithContext(ctx).Model(new(T)), sch)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, translate(err)
	}
	return total, nil
}

// FindAll returns every entity matching spec in order. No match yields an empty slice.
func FindAll[T any](ctx context.Context, s *Session, spec Spec) ([]*T, error) {
	return run[T](ctx, s, spec, nil, func(tx *gorm.DB) *gorm.DB { return tx })
}

// FindOne returns the single entity matching spec: ErrNotFound when none
// matches and ErrNonUniqueResult when several do.
func FindOne[T any](ctx context.Context, s *Session, spec Spec) (*T, error) {
	rows, err := run[T](ctx, s, spec, nil, func(tx *gorm.DB) *gorm.DB { return tx.Limit(2) })
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return rows[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNonUniqueResult, spec.describe())
	}
}

// FindOptional is FindOne reporting absence as false instead of ErrNotFound.
func FindOptional[T any](ctx context.Context, s *Session, spec Spec) (*T, bool, error) {
	e, err := FindOne[T](ctx, s, spec)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e, true, nil
}

// run loads the rows of spec and swaps each for its managed instance.
func run[T any](ctx context.Context, s *Session, spec Spec, extra query.Sort, shape func(*gorm.DB) *gorm.DB) ([]*T, error) {
	sch, err := s.schemaOf(new(T))
	if err != nil {
		return nil, err
	}
	tx, err := spec.build(s.db.WithContext(ctx).Model(new(T)), sch, extra)
	if err != nil {
		return nil, err
	}

	var rows []*T
	if err := shape(tx).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}

	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.attach(sch, reflect.ValueOf(row), spec.Fetch).Interface().(*T))
	}
	return out, nil
}
