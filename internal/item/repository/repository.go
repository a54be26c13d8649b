// Package repository provides data access layer for item module.
package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"

	itemModel "github.com/festy23/datajpa/internal/item/model"
	"github.com/festy23/datajpa/internal/persistence"
)

// Repository defines the interface for item data access operations.
type Repository interface {
	// Save inserts a new item or updates a saved one.
	Save(ctx context.Context, item *itemModel.Item) error

	// FindByID finds item by id.
	FindByID(ctx context.Context, id string) (*itemModel.Item, error)

	// Count returns the number of items.
	Count(ctx context.Context) (int64, error)

	// Delete removes an item.
	Delete(ctx context.Context, item *itemModel.Item) error
}

type repository struct {
	session *persistence.Session
	logger  *zap.SugaredLogger
}

// New creates a new item repository instance.
func New(session *persistence.Session, logger *zap.SugaredLogger) Repository {
	return &repository{session: session, logger: logger}
}

// Save inserts the item when it has no creation date, otherwise updates it.
func (r *repository) Save(ctx context.Context, item *itemModel.Item) error {
	r.logger.Debugw("Save called", "item_id", item.ID, "new", item.IsNew())

	if err := persistence.Save(ctx, r.session, item); err != nil {
		r.logger.Errorw("Save database error", "item_id", item.ID, "error", err)
		return err
	}
	return nil
}

// FindByID finds item by id.
func (r *repository) FindByID(ctx context.Context, id string) (*itemModel.Item, error) {
	item, err := persistence.Find[itemModel.Item](ctx, r.session, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, itemModel.ErrItemNotFound
		}
		r.logger.Errorw("FindByID database error", "item_id", id, "error", err)
		return nil, err
	}
	return item, nil
}

// Count returns the number of items.
func (r *repository) Count(ctx context.Context) (int64, error) {
	return persistence.Count[itemModel.Item](ctx, r.session, persistence.Spec{})
}

// Delete removes an item.
func (r *repository) Delete(ctx context.Context, item *itemModel.Item) error {
	if err := persistence.Delete(ctx, r.session, item); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return itemModel.ErrItemNotFound
		}
		r.logger.Errorw("Delete database error", "item_id", item.ID, "error", err)
		return err
	}
	return nil
}
