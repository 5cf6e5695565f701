package persistence

import (
	"context"
	"errors"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVatGroupRepository implements VatGroupRepository using GORM
type GormVatGroupRepository struct {
	db *gorm.DB
}

// NewGormVatGroupRepository creates a new GormVatGroupRepository
func NewGormVatGroupRepository(db *gorm.DB) *GormVatGroupRepository {
	return &GormVatGroupRepository{db: db}
}

// FindByID finds a VAT group by ID
func (r *GormVatGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.VatGroup, error) {
	var group catalog.VatGroup
	if err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

// FindAll finds all VAT groups matching the filter
func (r *GormVatGroupRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.VatGroup, error) {
	var groups []catalog.VatGroup
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.VatGroup{}), filter)
	query = applyFilter(query, filter, VatGroupSortFields, "name")
	if err := query.Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// Save creates or updates a VAT group
func (r *GormVatGroupRepository) Save(ctx context.Context, group *catalog.VatGroup) error {
	return r.db.WithContext(ctx).Save(group).Error
}

// Count counts VAT groups matching the filter
func (r *GormVatGroupRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.VatGroup{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormVatGroupRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if hidden, ok := filter.Filters["hidden"]; ok {
		query = query.Where("hidden = ?", hidden)
	}
	if deleted, ok := filter.Filters["deleted"]; ok {
		query = query.Where("deleted = ?", deleted)
	} else {
		query = query.Where("deleted = ?", false)
	}
	return query
}

// Ensure GormVatGroupRepository implements VatGroupRepository
var _ catalog.VatGroupRepository = (*GormVatGroupRepository)(nil)
