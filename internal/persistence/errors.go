// Package persistence runs entity reads and writes inside a unit of work
// that keeps one in-memory instance per row.
package persistence

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/festy23/datajpa/internal/persistence/query"
)

var (
	// ErrNotFound indicates that no row matched a lookup that requires one.
	ErrNotFound = errors.New("entity not found")
	// ErrNonUniqueResult indicates that a single-result lookup matched several rows.
	ErrNonUniqueResult = errors.New("query did not return a unique result")
	// ErrConstraintViolation indicates that storage or validation rejected a write.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrUnknownField indicates a query on a field the entity does not have.
	ErrUnknownField = query.ErrUnknownField
	// ErrNamedQueryNotFound indicates a lookup of an unregistered named query.
	ErrNamedQueryNotFound = query.ErrNamedQueryNotFound
	// ErrInvalidNamedQuery indicates a malformed named query or binding.
	ErrInvalidNamedQuery = query.ErrInvalidNamedQuery
)

var constraintMessages = []string{
	"duplicate key",
	"unique constraint",
	"not null constraint",
	"not-null constraint",
	"foreign key constraint",
	"check constraint",
}

// translate maps driver and gorm errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if isConstraintViolation(err) {
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}
	return err
}

func isConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range constraintMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
