package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/shared"
)

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)

// GormCategoryRepository persists product categories. Categories are
// plain lookup rows and carry no revision history.
type GormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// searchable returns a category query with the optional name search
// applied.
func (r *GormCategoryRepository) searchable(ctx context.Context, filter shared.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&catalog.ProductCategory{})
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductCategory, error) {
	var category catalog.ProductCategory
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, shared.ErrNotFound
	case err != nil:
		return nil, err
	}
	return &category, nil
}

func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ProductCategory, error) {
	query := applyFilter(r.searchable(ctx, filter), filter, CategorySortFields, "name")
	var categories []catalog.ProductCategory
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.searchable(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.ProductCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// Delete removes a category. Revision rows reference categories with a
// foreign key, so the database rejects deleting one still in use.
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.ProductCategory{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
