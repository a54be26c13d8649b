package audit

import "time"

// TimeEntity carries creation and last modification timestamps.
// The creation column is written on insert only.
type TimeEntity struct {
	CreatedDate      time.Time `gorm:"column:created_date;not null;<-:create" json:"createdDate"`
	LastModifiedDate time.Time `gorm:"column:last_modified_date;not null" json:"lastModifiedDate"`
}

// StampCreated sets both timestamps to at.
func (t *TimeEntity) StampCreated(at time.Time) {
	t.CreatedDate = at
	t.LastModifiedDate = at
}

// StampModified sets the modification timestamp to at.
func (t *TimeEntity) StampModified(at time.Time) {
	t.LastModifiedDate = at
}

// BaseEntity adds the acting principal to TimeEntity.
type BaseEntity struct {
	TimeEntity
	CreatedBy      string `gorm:"column:created_by;type:varchar(255);not null;default:'';<-:create" json:"createdBy"`
	LastModifiedBy string `gorm:"column:last_modified_by;type:varchar(255);not null;default:''" json:"lastModifiedBy"`
}

// StampCreatedBy records actor as creator and last modifier.
func (b *BaseEntity) StampCreatedBy(actor string) {
	b.CreatedBy = actor
	b.LastModifiedBy = actor
}

// StampModifiedBy records actor as last modifier.
func (b *BaseEntity) StampModifiedBy(actor string) {
	b.LastModifiedBy = actor
}

// CreateTimed is implemented by entities with a creation timestamp.
type CreateTimed interface {
	StampCreated(at time.Time)
}

// ModifyTimed is implemented by entities with a modification timestamp.
type ModifyTimed interface {
	StampModified(at time.Time)
}

// CreateAttributed is implemented by entities recording their creator.
type CreateAttributed interface {
	StampCreatedBy(actor string)
}

// ModifyAttributed is implemented by entities recording their last modifier.
type ModifyAttributed interface {
	StampModifiedBy(actor string)
}
