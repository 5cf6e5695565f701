package persistence

import (
	"fmt"

	"github.com/bartab/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyFilter applies the whitelisted ordering and pagination of a filter.
// Search and column predicates stay repo-specific.
func applyFilter(query *gorm.DB, filter shared.Filter, sortFields map[string]bool, defaultSort string) *gorm.DB {
	sortField := ValidateSortField(filter.OrderBy, sortFields, defaultSort)
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if offset := filter.Offset(); offset > 0 {
			query = query.Offset(offset)
		}
	}
	return query
}
