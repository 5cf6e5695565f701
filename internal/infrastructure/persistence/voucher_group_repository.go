package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bartab/backend/internal/domain/settlement"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormVoucherGroupRepository implements VoucherGroupRepository using GORM.
// Membership rows only ever grow; Save inserts the ones it has not seen.
type GormVoucherGroupRepository struct {
	db *gorm.DB
}

// NewGormVoucherGroupRepository creates a new GormVoucherGroupRepository
func NewGormVoucherGroupRepository(db *gorm.DB) *GormVoucherGroupRepository {
	return &GormVoucherGroupRepository{db: db}
}

// FindByID loads a group with its membership rows
func (r *GormVoucherGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.VoucherGroup, error) {
	var group settlement.VoucherGroup
	if err := r.db.WithContext(ctx).
		Preload("Users").
		First(&group, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

// FindAll lists groups matching the filter
func (r *GormVoucherGroupRepository) FindAll(ctx context.Context, filter shared.Filter) ([]settlement.VoucherGroup, error) {
	var groups []settlement.VoucherGroup
	query := r.applySearch(r.db.WithContext(ctx).Model(&settlement.VoucherGroup{}), filter).
		Preload("Users")
	query = applyFilter(query, filter, VoucherGroupSortFields, "created_at")
	if err := query.Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// FindExpired lists groups whose active window closed at or before the
// given instant
func (r *GormVoucherGroupRepository) FindExpired(ctx context.Context, asOf time.Time) ([]settlement.VoucherGroup, error) {
	var groups []settlement.VoucherGroup
	if err := r.db.WithContext(ctx).
		Preload("Users").
		Where("active_end_date <= ?", asOf).
		Order("active_end_date ASC").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// Save persists the group and its membership rows
func (r *GormVoucherGroupRepository) Save(ctx context.Context, group *settlement.VoucherGroup) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(group).Error; err != nil {
		return err
	}
	if len(group.Users) > 0 {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&group.Users).Error; err != nil {
			return err
		}
	}
	return nil
}

// Count counts groups matching the filter
func (r *GormVoucherGroupRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&settlement.VoucherGroup{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormVoucherGroupRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if activeAt, ok := filter.Filters["active_at"]; ok {
		query = query.Where("active_start_date <= ? AND active_end_date > ?", activeAt, activeAt)
	}
	return query
}

// Ensure GormVoucherGroupRepository implements VoucherGroupRepository
var _ settlement.VoucherGroupRepository = (*GormVoucherGroupRepository)(nil)
