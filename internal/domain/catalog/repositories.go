package catalog

import (
	"context"

	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines persistence for product heads, drafts and
// revisions. Revision writes are insert-only.
type ProductRepository interface {
	// FindByID finds a product head by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple product heads by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll finds all product heads matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindPurchaseEligible finds heads with an approved revision that are
	// not soft-deleted
	FindPurchaseEligible(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product head
	Save(ctx context.Context, product *Product) error

	// Count counts product heads matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindDraft finds the pending draft for a product, if any
	FindDraft(ctx context.Context, productID uuid.UUID) (*ProductDraft, error)

	// SaveDraft inserts or overwrites the single draft of a product
	SaveDraft(ctx context.Context, draft *ProductDraft) error

	// DeleteDraft removes the pending draft of a product
	DeleteDraft(ctx context.Context, productID uuid.UUID) error

	// FindRevision finds one immutable revision row
	FindRevision(ctx context.Context, pin ProductPin) (*ProductRevision, error)

	// FindRevisions finds all revision rows of a product, oldest first
	FindRevisions(ctx context.Context, productID uuid.UUID) ([]ProductRevision, error)

	// InsertRevision appends a new immutable revision row
	InsertRevision(ctx context.Context, revision *ProductRevision) error
}

// ContainerRepository defines persistence for container heads, drafts and
// revisions
type ContainerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Container, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Container, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Container, error)
	FindPurchaseEligible(ctx context.Context, filter shared.Filter) ([]Container, error)
	Save(ctx context.Context, container *Container) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	FindDraft(ctx context.Context, containerID uuid.UUID) (*ContainerDraft, error)
	SaveDraft(ctx context.Context, draft *ContainerDraft) error
	DeleteDraft(ctx context.Context, containerID uuid.UUID) error

	// FindRevision loads one revision row including its product members
	FindRevision(ctx context.Context, pin ContainerPin) (*ContainerRevision, error)
	InsertRevision(ctx context.Context, revision *ContainerRevision) error
}

// PointOfSaleRepository defines persistence for point-of-sale heads,
// drafts and revisions
type PointOfSaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PointOfSale, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PointOfSale, error)
	FindPurchaseEligible(ctx context.Context, filter shared.Filter) ([]PointOfSale, error)
	Save(ctx context.Context, pos *PointOfSale) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	FindDraft(ctx context.Context, posID uuid.UUID) (*PointOfSaleDraft, error)
	SaveDraft(ctx context.Context, draft *PointOfSaleDraft) error
	DeleteDraft(ctx context.Context, posID uuid.UUID) error

	// FindRevision loads one revision row including its container members
	FindRevision(ctx context.Context, pin PointOfSalePin) (*PointOfSaleRevision, error)
	InsertRevision(ctx context.Context, revision *PointOfSaleRevision) error
}

// VatGroupRepository defines persistence for VAT groups
type VatGroupRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*VatGroup, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]VatGroup, error)
	Save(ctx context.Context, group *VatGroup) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// CategoryRepository defines persistence for product categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductCategory, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ProductCategory, error)
	Save(ctx context.Context, category *ProductCategory) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
