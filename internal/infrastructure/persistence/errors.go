package persistence

import (
	"errors"

	"gorm.io/gorm"

	"github.com/retailops/backoffice/internal/domain/shared"
)

// notFoundOr maps gorm.ErrRecordNotFound to NOT_FOUND for resource and wraps
// every other driver error as PERSISTENCE_ERROR.
func notFoundOr(err error, resource, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource)
	}
	return shared.NewPersistenceError(op, err)
}

// wrap turns a driver error into PERSISTENCE_ERROR, passing domain errors through
func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := shared.AsDomainError(err); ok {
		return err
	}
	return shared.NewPersistenceError(op, err)
}

// applyPaging orders by a whitelisted column and applies offset/limit
func applyPaging(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	filter = filter.Normalize()
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}
