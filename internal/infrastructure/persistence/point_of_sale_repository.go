package persistence

import (
	"context"
	"errors"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPointOfSaleRepository implements PointOfSaleRepository using GORM
type GormPointOfSaleRepository struct {
	db *gorm.DB
}

// NewGormPointOfSaleRepository creates a new GormPointOfSaleRepository
func NewGormPointOfSaleRepository(db *gorm.DB) *GormPointOfSaleRepository {
	return &GormPointOfSaleRepository{db: db}
}

// FindByID finds a point-of-sale head by ID
func (r *GormPointOfSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.PointOfSale, error) {
	var pos catalog.PointOfSale
	if err := r.db.WithContext(ctx).First(&pos, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pos, nil
}

// FindAll finds all point-of-sale heads matching the filter
func (r *GormPointOfSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.PointOfSale, error) {
	var poses []catalog.PointOfSale
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.PointOfSale{}), filter)
	query = applyFilter(query, filter, PointOfSaleSortFields, "created_at")
	if err := query.Find(&poses).Error; err != nil {
		return nil, err
	}
	return poses, nil
}

// FindPurchaseEligible finds heads with an approved revision that are not
// soft-deleted
func (r *GormPointOfSaleRepository) FindPurchaseEligible(ctx context.Context, filter shared.Filter) ([]catalog.PointOfSale, error) {
	var poses []catalog.PointOfSale
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.PointOfSale{}), filter).
		Where("current_revision IS NOT NULL AND deleted_at IS NULL")
	query = applyFilter(query, filter, PointOfSaleSortFields, "created_at")
	if err := query.Find(&poses).Error; err != nil {
		return nil, err
	}
	return poses, nil
}

// Save creates or updates a point-of-sale head
func (r *GormPointOfSaleRepository) Save(ctx context.Context, pos *catalog.PointOfSale) error {
	return r.db.WithContext(ctx).Save(pos).Error
}

// Count counts point-of-sale heads matching the filter
func (r *GormPointOfSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.PointOfSale{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindDraft finds the pending draft for a point of sale, if any
func (r *GormPointOfSaleRepository) FindDraft(ctx context.Context, posID uuid.UUID) (*catalog.PointOfSaleDraft, error) {
	var draft catalog.PointOfSaleDraft
	if err := r.db.WithContext(ctx).First(&draft, "point_of_sale_id = ?", posID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &draft, nil
}

// SaveDraft inserts or overwrites the single draft of a point of sale
func (r *GormPointOfSaleRepository) SaveDraft(ctx context.Context, draft *catalog.PointOfSaleDraft) error {
	return r.db.WithContext(ctx).Save(draft).Error
}

// DeleteDraft removes the pending draft of a point of sale
func (r *GormPointOfSaleRepository) DeleteDraft(ctx context.Context, posID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&catalog.PointOfSaleDraft{}, "point_of_sale_id = ?", posID).Error
}

// FindRevision loads one revision row including its container members
func (r *GormPointOfSaleRepository) FindRevision(ctx context.Context, pin catalog.PointOfSalePin) (*catalog.PointOfSaleRevision, error) {
	var revision catalog.PointOfSaleRevision
	if err := r.db.WithContext(ctx).
		Preload("Containers").
		First(&revision, "point_of_sale_id = ? AND revision = ?", pin.PointOfSaleID, pin.Revision).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &revision, nil
}

// InsertRevision appends a new immutable revision row with its members
func (r *GormPointOfSaleRepository) InsertRevision(ctx context.Context, revision *catalog.PointOfSaleRevision) error {
	return r.db.WithContext(ctx).Create(revision).Error
}

func (r *GormPointOfSaleRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if ownerID, ok := filter.Filters["owner_id"]; ok {
		query = query.Where("owner_id = ?", ownerID)
	}
	return query
}

// Ensure GormPointOfSaleRepository implements PointOfSaleRepository
var _ catalog.PointOfSaleRepository = (*GormPointOfSaleRepository)(nil)
