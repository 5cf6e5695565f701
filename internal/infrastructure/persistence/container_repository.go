package persistence

import (
	"context"
	"errors"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormContainerRepository implements ContainerRepository using GORM
type GormContainerRepository struct {
	db *gorm.DB
}

// NewGormContainerRepository creates a new GormContainerRepository
func NewGormContainerRepository(db *gorm.DB) *GormContainerRepository {
	return &GormContainerRepository{db: db}
}

// FindByID finds a container head by ID
func (r *GormContainerRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Container, error) {
	var container catalog.Container
	if err := r.db.WithContext(ctx).First(&container, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &container, nil
}

// FindByIDs finds multiple container heads by their IDs
func (r *GormContainerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Container, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var containers []catalog.Container
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&containers).Error; err != nil {
		return nil, err
	}
	return containers, nil
}

// FindAll finds all container heads matching the filter
func (r *GormContainerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Container, error) {
	var containers []catalog.Container
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.Container{}), filter)
	query = applyFilter(query, filter, ContainerSortFields, "created_at")
	if err := query.Find(&containers).Error; err != nil {
		return nil, err
	}
	return containers, nil
}

// FindPurchaseEligible finds heads with an approved revision that are not
// soft-deleted
func (r *GormContainerRepository) FindPurchaseEligible(ctx context.Context, filter shared.Filter) ([]catalog.Container, error) {
	var containers []catalog.Container
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.Container{}), filter).
		Where("current_revision IS NOT NULL AND deleted_at IS NULL")
	query = applyFilter(query, filter, ContainerSortFields, "created_at")
	if err := query.Find(&containers).Error; err != nil {
		return nil, err
	}
	return containers, nil
}

// Save creates or updates a container head
func (r *GormContainerRepository) Save(ctx context.Context, container *catalog.Container) error {
	return r.db.WithContext(ctx).Save(container).Error
}

// Count counts container heads matching the filter
func (r *GormContainerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.Container{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindDraft finds the pending draft for a container, if any
func (r *GormContainerRepository) FindDraft(ctx context.Context, containerID uuid.UUID) (*catalog.ContainerDraft, error) {
	var draft catalog.ContainerDraft
	if err := r.db.WithContext(ctx).First(&draft, "container_id = ?", containerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &draft, nil
}

// SaveDraft inserts or overwrites the single draft of a container
func (r *GormContainerRepository) SaveDraft(ctx context.Context, draft *catalog.ContainerDraft) error {
	return r.db.WithContext(ctx).Save(draft).Error
}

// DeleteDraft removes the pending draft of a container
func (r *GormContainerRepository) DeleteDraft(ctx context.Context, containerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&catalog.ContainerDraft{}, "container_id = ?", containerID).Error
}

// FindRevision loads one revision row including its product members
func (r *GormContainerRepository) FindRevision(ctx context.Context, pin catalog.ContainerPin) (*catalog.ContainerRevision, error) {
	var revision catalog.ContainerRevision
	if err := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		First(&revision, "container_id = ? AND revision = ?", pin.ContainerID, pin.Revision).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &revision, nil
}

// InsertRevision appends a new immutable revision row with its members
func (r *GormContainerRepository) InsertRevision(ctx context.Context, revision *catalog.ContainerRevision) error {
	return r.db.WithContext(ctx).Create(revision).Error
}

func (r *GormContainerRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if ownerID, ok := filter.Filters["owner_id"]; ok {
		query = query.Where("owner_id = ?", ownerID)
	}
	if public, ok := filter.Filters["public"]; ok {
		query = query.Where("public = ?", public)
	}
	return query
}

// Ensure GormContainerRepository implements ContainerRepository
var _ catalog.ContainerRepository = (*GormContainerRepository)(nil)
