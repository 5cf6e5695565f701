package catalog

import (
	"time"

	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the head record of a revisionable catalog product. The
// sellable content (name, price, VAT) lives in immutable ProductRevision
// rows; the head only tracks identity, ownership, the current-revision
// pointer and soft deletion.
type Product struct {
	shared.BaseAggregateRoot
	Head
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index"`
	// ImageKey is the object-storage key of the product picture
	ImageKey string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product head. It carries no approved revision
// yet and is not purchase-eligible until the first draft is approved.
func NewProduct(ownerID uuid.UUID) *Product {
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           ownerID,
	}
}

// SetImageKey stores the object-storage key of the product image. Images
// are head-level: they are presentation, not priced content, so they are
// not revisioned.
func (p *Product) SetImageKey(key string) {
	p.ImageKey = key
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// ProductDraft is the single pending, mutable edit of a product. Re-editing
// overwrites the previous draft; no history of rejected drafts is kept.
type ProductDraft struct {
	ProductID    uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Name         string            `gorm:"type:varchar(64);not null"`
	PriceInclVat valueobject.Money `gorm:"type:bigint;not null"`
	VatGroupID   uuid.UUID         `gorm:"type:uuid;not null"`
	CategoryID   uuid.UUID         `gorm:"type:uuid;not null"`
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (ProductDraft) TableName() string {
	return "product_drafts"
}

// NewProductDraft creates a draft for the given product
func NewProductDraft(productID uuid.UUID, name string, price valueobject.Money, vatGroupID, categoryID uuid.UUID) (*ProductDraft, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	return &ProductDraft{
		ProductID:    productID,
		Name:         name,
		PriceInclVat: price,
		VatGroupID:   vatGroupID,
		CategoryID:   categoryID,
		UpdatedAt:    time.Now(),
	}, nil
}

// ProductRevision is an immutable numbered snapshot of a product at
// approval time. The VAT percentage is copied out of the VAT group so the
// historical inclusive price never moves when the group is edited.
type ProductRevision struct {
	ProductID    uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Revision     int               `gorm:"primaryKey"`
	Name         string            `gorm:"type:varchar(64);not null"`
	PriceInclVat valueobject.Money `gorm:"type:bigint;not null"`
	VatGroupID   uuid.UUID         `gorm:"type:uuid;not null"`
	// VatPercentage is the group's percentage as of approval
	VatPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
}

// TableName returns the table name for GORM
func (ProductRevision) TableName() string {
	return "product_revisions"
}

// BeforeUpdate blocks any write against a persisted revision row. A code
// path reaching this hook is a programming error, not a business rule
// violation.
func (r *ProductRevision) BeforeUpdate(*gorm.DB) error {
	return shared.NewInvariantViolation("ProductRevision.BeforeUpdate",
		"product revision rows are append-only")
}

// Pin returns the value reference identifying this revision
func (r *ProductRevision) Pin() ProductPin {
	return ProductPin{ProductID: r.ProductID, Revision: r.Revision}
}

// VatShare returns the VAT amount contained in the inclusive price
func (r *ProductRevision) VatShare() valueobject.Money {
	return r.PriceInclVat.VatShare(r.VatPercentage)
}
