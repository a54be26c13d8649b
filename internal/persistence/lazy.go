package persistence

import (
	"context"
	"fmt"
)

// Lazy is a reference to an entity that is loaded on first Get.
// Reading the identifier never loads it.
type Lazy[T any] struct {
	id     any
	loader func(ctx context.Context, id any) (*T, error)
	value  *T
}

// NewLazy creates a reference to the entity with id, loaded by loader.
func NewLazy[T any](id any, loader func(ctx context.Context, id any) (*T, error)) *Lazy[T] {
	return &Lazy[T]{id: id, loader: loader}
}

// Ref creates a reference resolved through s, so the loaded instance is the
// session's managed one.
func Ref[T any](s *Session, id any) *Lazy[T] {
	return NewLazy(id, func(ctx context.Context, id any) (*T, error) {
		return Find[T](ctx, s, id)
	})
}

// Loaded wraps an entity that is already in memory.
func Loaded[T any](id any, value *T) *Lazy[T] {
	return &Lazy[T]{id: id, value: value}
}

// ID returns the referenced identifier.
func (l *Lazy[T]) ID() any {
	return l.id
}

// IsLoaded reports whether Get will return without a query.
func (l *Lazy[T]) IsLoaded() bool {
	return l.value != nil
}

// Get loads the entity on first call and returns the same instance afterwards.
func (l *Lazy[T]) Get(ctx context.Context) (*T, error) {
	if l.value != nil {
		return l.value, nil
	}
	if l.loader == nil {
		return nil, fmt.Errorf("%w: unresolvable reference %v", ErrNotFound, l.id)
	}
	v, err := l.loader(ctx, l.id)
	if err != nil {
		return nil, err
	}
	l.value = v
	return v, nil
}
