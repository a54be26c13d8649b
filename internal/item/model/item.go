// Package model provides the Item entity.
package model

import (
	"errors"
	"time"
)

// ErrItemNotFound indicates that the requested item does not exist.
var ErrItemNotFound = errors.New("item not found")

// Item has a client-assigned identifier, so whether it is new cannot be
// told from the key. An item is new until its creation date is stamped.
type Item struct {
	ID          string    `gorm:"primaryKey;column:id;type:varchar(255)" json:"id" validate:"required,max=255"`
	CreatedDate time.Time `gorm:"column:created_date;not null;<-:create" json:"createdDate"`
}

// TableName specifies the table name for GORM.
func (Item) TableName() string {
	return "items"
}

// NewItem creates an unsaved item.
func NewItem(id string) *Item {
	return &Item{ID: id}
}

// IsNew reports whether the item has never been saved.
func (i *Item) IsNew() bool {
	return i.CreatedDate.IsZero()
}

// StampCreated records the creation time.
func (i *Item) StampCreated(at time.Time) {
	i.CreatedDate = at
}
