package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/festy23/datajpa/internal/persistence/query"
)

type pageOptions struct {
	countSpec *Spec
}

// PageOption configures FindPage.
type PageOption func(*pageOptions)

// CountQuery counts with spec instead of the content spec. Use it to drop joins
// that do not change the row count. spec must carry the same filter.
func CountQuery(spec Spec) PageOption {
	return func(o *pageOptions) {
		o.countSpec = &spec
	}
}

// FindPage returns one page of spec plus the total from a separate count.
// The count is skipped when the content alone determines the total.
func FindPage[T any](ctx context.Context, s *Session, spec Spec, req query.PageRequest, opts ...PageOption) (query.Page[*T], error) {
	if err := req.Validate(); err != nil {
		return query.Page[*T]{}, err
	}
	var o pageOptions
	for _, opt := range opts {
		opt(&o)
	}

	content, err := run[T](ctx, s, spec, req.Sort, func(tx *gorm.DB) *gorm.DB {
		return tx.Offset(req.Offset()).Limit(req.Size)
	})
	if err != nil {
		return query.Page[*T]{}, err
	}

	var total int64
	switch {
	case req.Offset() == 0 && len(content) < req.Size:
		total = int64(len(content))
	case len(content) > 0 && len(content) < req.Size:
		total = int64(req.Offset() + len(content))
	default:
		countSpec := spec
		if o.countSpec != nil {
			countSpec = *o.countSpec
		}
		total, err = Count[T](ctx, s, countSpec)
		if err != nil {
			return query.Page[*T]{}, err
		}
	}

	s.logger.Debugw("page loaded", "query", spec.describe(), "page", req.Page, "size", req.Size, "total", total)
	return query.NewPage(content, req, total), nil
}

// FindSlice returns one page of spec without a total. It reads one extra row
// to tell whether a next page exists.
func FindSlice[T any](ctx context.Context, s *Session, spec Spec, req query.PageRequest) (query.Slice[*T], error) {
	if err := req.Validate(); err != nil {
		return query.Slice[*T]{}, err
	}
	rows, err := run[T](ctx, s, spec, req.Sort, func(tx *gorm.DB) *gorm.DB {
		return tx.Offset(req.Offset()).Limit(req.Size + 1)
	})
	if err != nil {
		return query.Slice[*T]{}, err
	}
	return query.NewSlice(rows, req), nil
}

// FindList applies the page window of req to spec and returns only the content.
func FindList[T any](ctx context.Context, s *Session, spec Spec, req query.PageRequest) ([]*T, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return run[T](ctx, s, spec, req.Sort, func(tx *gorm.DB) *gorm.DB {
		return tx.Offset(req.Offset()).Limit(req.Size)
	})
}
