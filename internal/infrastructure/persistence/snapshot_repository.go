package persistence

import (
	"context"
	"errors"

	"github.com/bartab/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormSnapshotRepository loads the pinned revision subgraph of a point of
// sale: the point-of-sale revision, its container revisions and every
// product revision those containers pin. All rows are immutable, so the
// subgraph needs no locking to be consistent.
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository creates a new GormSnapshotRepository
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// LoadSnapshot loads the snapshot for the given point-of-sale pin
func (r *GormSnapshotRepository) LoadSnapshot(ctx context.Context, pin catalog.PointOfSalePin) (*catalog.Snapshot, error) {
	var posRevision catalog.PointOfSaleRevision
	if err := r.db.WithContext(ctx).
		Preload("Containers").
		First(&posRevision, "point_of_sale_id = ? AND revision = ?", pin.PointOfSaleID, pin.Revision).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.NewPosNotFoundViolation(pin)
		}
		return nil, err
	}

	// The head's deletion state gates new purchases; a missing head is
	// treated the same as a deleted one.
	posDeleted := true
	var head catalog.PointOfSale
	err := r.db.WithContext(ctx).First(&head, "id = ?", pin.PointOfSaleID).Error
	switch {
	case err == nil:
		posDeleted = head.IsDeleted()
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	containers := make([]*catalog.ContainerRevision, 0, len(posRevision.Containers))
	productPins := make(map[catalog.ProductPin]struct{})
	for _, member := range posRevision.Containers {
		var containerRevision catalog.ContainerRevision
		if err := r.db.WithContext(ctx).
			Preload("Products", func(db *gorm.DB) *gorm.DB {
				return db.Order("display_order ASC")
			}).
			First(&containerRevision, "container_id = ? AND revision = ?",
				member.ContainerID, member.ContainerRevision).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// A dangling membership row breaks the append-only
				// contract; the snapshot surfaces it as a missing
				// revision during validation.
				continue
			}
			return nil, err
		}
		containers = append(containers, &containerRevision)
		for _, p := range containerRevision.Products {
			productPins[catalog.ProductPin{ProductID: p.ProductID, Revision: p.ProductRevision}] = struct{}{}
		}
	}

	products, err := r.loadProductRevisions(ctx, productPins)
	if err != nil {
		return nil, err
	}

	return catalog.NewSnapshot(&posRevision, posDeleted, containers, products), nil
}

func (r *GormSnapshotRepository) loadProductRevisions(ctx context.Context, pins map[catalog.ProductPin]struct{}) ([]*catalog.ProductRevision, error) {
	if len(pins) == 0 {
		return nil, nil
	}
	pairs := make([][]interface{}, 0, len(pins))
	for pin := range pins {
		pairs = append(pairs, []interface{}{pin.ProductID, pin.Revision})
	}
	var rows []catalog.ProductRevision
	if err := r.db.WithContext(ctx).
		Where("(product_id, revision) IN ?", pairs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]*catalog.ProductRevision, len(rows))
	for i := range rows {
		products[i] = &rows[i]
	}
	return products, nil
}

// Ensure GormSnapshotRepository implements SnapshotRepository
var _ catalog.SnapshotRepository = (*GormSnapshotRepository)(nil)
