package persistence

import (
	"context"
	"errors"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM. Heads
// are updated in place, drafts are upserted and revision rows are
// insert-only.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product head by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs finds multiple product heads by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAll finds all product heads matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	query = applyFilter(query, filter, ProductSortFields, "created_at")
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindPurchaseEligible finds heads with an approved revision that are not
// soft-deleted
func (r *GormProductRepository) FindPurchaseEligible(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.Product{}), filter).
		Where("current_revision IS NOT NULL AND deleted_at IS NULL")
	query = applyFilter(query, filter, ProductSortFields, "created_at")
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save creates or updates a product head
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Count counts product heads matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindDraft finds the pending draft for a product, if any
func (r *GormProductRepository) FindDraft(ctx context.Context, productID uuid.UUID) (*catalog.ProductDraft, error) {
	var draft catalog.ProductDraft
	if err := r.db.WithContext(ctx).First(&draft, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &draft, nil
}

// SaveDraft inserts or overwrites the single draft of a product
func (r *GormProductRepository) SaveDraft(ctx context.Context, draft *catalog.ProductDraft) error {
	return r.db.WithContext(ctx).Save(draft).Error
}

// DeleteDraft removes the pending draft of a product
func (r *GormProductRepository) DeleteDraft(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&catalog.ProductDraft{}, "product_id = ?", productID).Error
}

// FindRevision finds one immutable revision row
func (r *GormProductRepository) FindRevision(ctx context.Context, pin catalog.ProductPin) (*catalog.ProductRevision, error) {
	var revision catalog.ProductRevision
	if err := r.db.WithContext(ctx).
		First(&revision, "product_id = ? AND revision = ?", pin.ProductID, pin.Revision).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &revision, nil
}

// FindRevisions finds all revision rows of a product, oldest first
func (r *GormProductRepository) FindRevisions(ctx context.Context, productID uuid.UUID) ([]catalog.ProductRevision, error) {
	var revisions []catalog.ProductRevision
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("revision ASC").
		Find(&revisions).Error; err != nil {
		return nil, err
	}
	return revisions, nil
}

// InsertRevision appends a new immutable revision row
func (r *GormProductRepository) InsertRevision(ctx context.Context, revision *catalog.ProductRevision) error {
	return r.db.WithContext(ctx).Create(revision).Error
}

func (r *GormProductRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if ownerID, ok := filter.Filters["owner_id"]; ok {
		query = query.Where("owner_id = ?", ownerID)
	}
	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
