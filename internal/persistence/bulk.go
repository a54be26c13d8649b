package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/festy23/datajpa/internal/persistence/query"
)

type bulkOptions struct {
	clear bool
}

// BulkOption configures BulkUpdate.
type BulkOption func(*bulkOptions)

// ClearAutomatically clears the session after the update so later reads see
// the new values.
func ClearAutomatically() BulkOption {
	return func(o *bulkOptions) {
		o.clear = true
	}
}

// BulkUpdate runs one set-based UPDATE over the rows matching where and
// returns the number of affected rows. Zero affected rows is not an error.
//
// The statement bypasses the identity map: managed instances keep their old
// values until the session is cleared, either by the caller or with
// ClearAutomatically. Audit fields are not stamped.
func BulkUpdate[T any](ctx context.Context, s *Session, where query.Criteria, set map[string]any, opts ...BulkOption) (int64, error) {
	var o bulkOptions
	for _, opt := range opts {
		opt(&o)
	}

	sch, err := s.schemaOf(new(T))
	if err != nil {
		return 0, err
	}
	if len(set) == 0 {
		return 0, fmt.Errorf("bulk update of %s without assignments", sch.Name)
	}
	columns := make(map[string]any, len(set))
	for name, value := range set {
		field, err := query.ResolveField(sch, name)
		if err != nil {
			return 0, err
		}
		columns[field.DBName] = value
	}

	tx := s.db.WithContext(ctx).Model(new(T))
	if where.IsEmpty() {
		tx = tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	}
	tx, err = Spec{Where: where}.filter(tx, sch)
	if err != nil {
		return 0, err
	}

	result := tx.UpdateColumns(columns)
	if result.Error != nil {
		return 0, translate(result.Error)
	}

	s.logger.Infow("bulk update completed", "entity", sch.Name, "where", where.String(), "affected", result.RowsAffected)
	if o.clear {
		s.Clear()
	}
	return result.RowsAffected, nil
}
