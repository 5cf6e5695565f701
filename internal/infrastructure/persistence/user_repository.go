package persistence

import (
	"context"
	"errors"

	"github.com/bartab/backend/internal/domain/identity"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByIDs finds multiple users by their IDs
func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []identity.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindAll finds all users matching the filter
func (r *GormUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	var users []identity.User
	query := r.applySearch(r.db.WithContext(ctx).Model(&identity.User{}), filter)
	query = applyFilter(query, filter, UserSortFields, "seq")
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindByType finds users of the given type
func (r *GormUserRepository) FindByType(ctx context.Context, userType identity.UserType, filter shared.Filter) ([]identity.User, error) {
	var users []identity.User
	query := r.applySearch(r.db.WithContext(ctx).Model(&identity.User{}), filter).
		Where("type = ?", userType)
	query = applyFilter(query, filter, UserSortFields, "seq")
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Save creates or updates a user
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// SaveBatch creates or updates multiple users
func (r *GormUserRepository) SaveBatch(ctx context.Context, users []*identity.User) error {
	if len(users) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Save(users).Error
}

// Count counts users matching the filter
func (r *GormUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&identity.User{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormUserRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("(first_name ILIKE ? OR last_name ILIKE ?)", pattern, pattern)
	}
	if userType, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", userType)
	}
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", active)
	}
	if deleted, ok := filter.Filters["deleted"]; ok {
		query = query.Where("deleted = ?", deleted)
	} else {
		query = query.Where("deleted = ?", false)
	}
	return query
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
