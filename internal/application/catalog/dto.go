package catalog

import (
	"time"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductPayload is the editable content of a product: what a draft holds
// and what an approval freezes into a revision
type ProductPayload struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
	// PriceInclVat is the VAT-inclusive price in minor units
	PriceInclVat int64     `json:"price_incl_vat" binding:"min=0"`
	Currency     string    `json:"currency" binding:"omitempty,currency"`
	VatGroupID   uuid.UUID `json:"vat_group_id" binding:"required"`
	CategoryID   uuid.UUID `json:"category_id" binding:"required"`
}

// CreateProductRequest creates a new product head together with its first
// draft
type CreateProductRequest struct {
	OwnerID uuid.UUID      `json:"owner_id" binding:"required"`
	Payload ProductPayload `json:"payload" binding:"required"`
}

// ProductDraftResponse represents a pending draft in API responses
type ProductDraftResponse struct {
	Name         string    `json:"name"`
	PriceInclVat int64     `json:"price_incl_vat"`
	Currency     string    `json:"currency"`
	VatGroupID   uuid.UUID `json:"vat_group_id"`
	CategoryID   uuid.UUID `json:"category_id"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductRevisionResponse represents one immutable revision
type ProductRevisionResponse struct {
	Revision      int             `json:"revision"`
	Name          string          `json:"name"`
	PriceInclVat  int64           `json:"price_incl_vat"`
	Currency      string          `json:"currency"`
	VatGroupID    uuid.UUID       `json:"vat_group_id"`
	VatPercentage decimal.Decimal `json:"vat_percentage"`
	CategoryID    uuid.UUID       `json:"category_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ProductResponse represents a product head with its current revision
type ProductResponse struct {
	ID              uuid.UUID                `json:"id"`
	OwnerID         uuid.UUID                `json:"owner_id"`
	CurrentRevision *int                     `json:"current_revision"`
	Deleted         bool                     `json:"deleted"`
	ImageKey        string                   `json:"image_key,omitempty"`
	Current         *ProductRevisionResponse `json:"current,omitempty"`
	Draft           *ProductDraftResponse    `json:"draft,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
	Version         int                      `json:"version"`
}

// ContainerPayload is the editable content of a container. Products are
// listed by ID in display order; revisions are resolved at approval.
type ContainerPayload struct {
	Name       string      `json:"name" binding:"required,min=1,max=64"`
	ProductIDs []uuid.UUID `json:"product_ids" binding:"required"`
}

// CreateContainerRequest creates a new container head with its first draft
type CreateContainerRequest struct {
	OwnerID uuid.UUID        `json:"owner_id" binding:"required"`
	Public  bool             `json:"public"`
	Payload ContainerPayload `json:"payload" binding:"required"`
}

// ContainerProductRef is one resolved product membership of a revision
type ContainerProductRef struct {
	ProductID       uuid.UUID `json:"product_id"`
	ProductRevision int       `json:"product_revision"`
	DisplayOrder    int       `json:"display_order"`
}

// ContainerRevisionResponse represents one immutable container revision
type ContainerRevisionResponse struct {
	Revision  int                   `json:"revision"`
	Name      string                `json:"name"`
	Products  []ContainerProductRef `json:"products"`
	CreatedAt time.Time             `json:"created_at"`
}

// ContainerDraftResponse represents a pending container draft
type ContainerDraftResponse struct {
	Name       string      `json:"name"`
	ProductIDs []uuid.UUID `json:"product_ids"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// ContainerResponse represents a container head
type ContainerResponse struct {
	ID              uuid.UUID                  `json:"id"`
	OwnerID         uuid.UUID                  `json:"owner_id"`
	Public          bool                       `json:"public"`
	CurrentRevision *int                       `json:"current_revision"`
	Deleted         bool                       `json:"deleted"`
	Current         *ContainerRevisionResponse `json:"current,omitempty"`
	Draft           *ContainerDraftResponse    `json:"draft,omitempty"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
	Version         int                        `json:"version"`
}

// PointOfSalePayload is the editable content of a point of sale
type PointOfSalePayload struct {
	Name              string      `json:"name" binding:"required,min=1,max=64"`
	ContainerIDs      []uuid.UUID `json:"container_ids" binding:"required"`
	UseAuthentication bool        `json:"use_authentication"`
}

// CreatePointOfSaleRequest creates a new point-of-sale head with its first
// draft
type CreatePointOfSaleRequest struct {
	OwnerID uuid.UUID          `json:"owner_id" binding:"required"`
	Payload PointOfSalePayload `json:"payload" binding:"required"`
}

// PosContainerRef is one resolved container membership of a revision
type PosContainerRef struct {
	ContainerID       uuid.UUID `json:"container_id"`
	ContainerRevision int       `json:"container_revision"`
}

// PointOfSaleRevisionResponse represents one immutable point-of-sale
// revision
type PointOfSaleRevisionResponse struct {
	Revision          int               `json:"revision"`
	Name              string            `json:"name"`
	UseAuthentication bool              `json:"use_authentication"`
	Containers        []PosContainerRef `json:"containers"`
	CreatedAt         time.Time         `json:"created_at"`
}

// PointOfSaleDraftResponse represents a pending point-of-sale draft
type PointOfSaleDraftResponse struct {
	Name              string      `json:"name"`
	ContainerIDs      []uuid.UUID `json:"container_ids"`
	UseAuthentication bool        `json:"use_authentication"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// PointOfSaleResponse represents a point-of-sale head
type PointOfSaleResponse struct {
	ID              uuid.UUID                    `json:"id"`
	OwnerID         uuid.UUID                    `json:"owner_id"`
	CurrentRevision *int                         `json:"current_revision"`
	Deleted         bool                         `json:"deleted"`
	Current         *PointOfSaleRevisionResponse `json:"current,omitempty"`
	Draft           *PointOfSaleDraftResponse    `json:"draft,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
	UpdatedAt       time.Time                    `json:"updated_at"`
	Version         int                          `json:"version"`
}

// CreateVatGroupRequest creates a VAT group
type CreateVatGroupRequest struct {
	Name       string          `json:"name" binding:"required,min=1,max=64"`
	Percentage decimal.Decimal `json:"percentage" binding:"required"`
}

// UpdateVatGroupRequest updates a VAT group; existing revision snapshots
// keep the percentage they were approved with
type UpdateVatGroupRequest struct {
	Name       string          `json:"name" binding:"required,min=1,max=64"`
	Percentage decimal.Decimal `json:"percentage" binding:"required"`
	Hidden     bool            `json:"hidden"`
}

// VatGroupResponse represents a VAT group
type VatGroupResponse struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
	Hidden     bool            `json:"hidden"`
	Deleted    bool            `json:"deleted"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CategoryRequest creates or renames a product category
type CategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
}

// CategoryResponse represents a product category
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toProductRevisionResponse(rev *catalog.ProductRevision) *ProductRevisionResponse {
	if rev == nil {
		return nil
	}
	return &ProductRevisionResponse{
		Revision:      rev.Revision,
		Name:          rev.Name,
		PriceInclVat:  rev.PriceInclVat.Amount(),
		Currency:      string(rev.PriceInclVat.Currency()),
		VatGroupID:    rev.VatGroupID,
		VatPercentage: rev.VatPercentage,
		CategoryID:    rev.CategoryID,
		CreatedAt:     rev.CreatedAt,
	}
}

func toProductDraftResponse(draft *catalog.ProductDraft) *ProductDraftResponse {
	if draft == nil {
		return nil
	}
	return &ProductDraftResponse{
		Name:         draft.Name,
		PriceInclVat: draft.PriceInclVat.Amount(),
		Currency:     string(draft.PriceInclVat.Currency()),
		VatGroupID:   draft.VatGroupID,
		CategoryID:   draft.CategoryID,
		UpdatedAt:    draft.UpdatedAt,
	}
}

func toProductResponse(p *catalog.Product, current *catalog.ProductRevision, draft *catalog.ProductDraft) *ProductResponse {
	return &ProductResponse{
		ID:              p.ID,
		OwnerID:         p.OwnerID,
		CurrentRevision: p.CurrentRevision,
		Deleted:         p.IsDeleted(),
		ImageKey:        p.ImageKey,
		Current:         toProductRevisionResponse(current),
		Draft:           toProductDraftResponse(draft),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		Version:         p.Version,
	}
}

func toContainerRevisionResponse(rev *catalog.ContainerRevision) *ContainerRevisionResponse {
	if rev == nil {
		return nil
	}
	refs := make([]ContainerProductRef, len(rev.Products))
	for i, p := range rev.Products {
		refs[i] = ContainerProductRef{
			ProductID:       p.ProductID,
			ProductRevision: p.ProductRevision,
			DisplayOrder:    p.DisplayOrder,
		}
	}
	return &ContainerRevisionResponse{
		Revision:  rev.Revision,
		Name:      rev.Name,
		Products:  refs,
		CreatedAt: rev.CreatedAt,
	}
}

func toContainerDraftResponse(draft *catalog.ContainerDraft) *ContainerDraftResponse {
	if draft == nil {
		return nil
	}
	return &ContainerDraftResponse{
		Name:       draft.Name,
		ProductIDs: draft.ProductIDs,
		UpdatedAt:  draft.UpdatedAt,
	}
}

func toContainerResponse(c *catalog.Container, current *catalog.ContainerRevision, draft *catalog.ContainerDraft) *ContainerResponse {
	return &ContainerResponse{
		ID:              c.ID,
		OwnerID:         c.OwnerID,
		Public:          c.Public,
		CurrentRevision: c.CurrentRevision,
		Deleted:         c.IsDeleted(),
		Current:         toContainerRevisionResponse(current),
		Draft:           toContainerDraftResponse(draft),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		Version:         c.Version,
	}
}

func toPointOfSaleRevisionResponse(rev *catalog.PointOfSaleRevision) *PointOfSaleRevisionResponse {
	if rev == nil {
		return nil
	}
	refs := make([]PosContainerRef, len(rev.Containers))
	for i, c := range rev.Containers {
		refs[i] = PosContainerRef{
			ContainerID:       c.ContainerID,
			ContainerRevision: c.ContainerRevision,
		}
	}
	return &PointOfSaleRevisionResponse{
		Revision:          rev.Revision,
		Name:              rev.Name,
		UseAuthentication: rev.UseAuthentication,
		Containers:        refs,
		CreatedAt:         rev.CreatedAt,
	}
}

func toPointOfSaleDraftResponse(draft *catalog.PointOfSaleDraft) *PointOfSaleDraftResponse {
	if draft == nil {
		return nil
	}
	return &PointOfSaleDraftResponse{
		Name:              draft.Name,
		ContainerIDs:      draft.ContainerIDs,
		UseAuthentication: draft.UseAuthentication,
		UpdatedAt:         draft.UpdatedAt,
	}
}

func toPointOfSaleResponse(p *catalog.PointOfSale, current *catalog.PointOfSaleRevision, draft *catalog.PointOfSaleDraft) *PointOfSaleResponse {
	return &PointOfSaleResponse{
		ID:              p.ID,
		OwnerID:         p.OwnerID,
		CurrentRevision: p.CurrentRevision,
		Deleted:         p.IsDeleted(),
		Current:         toPointOfSaleRevisionResponse(current),
		Draft:           toPointOfSaleDraftResponse(draft),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		Version:         p.Version,
	}
}

func toVatGroupResponse(g *catalog.VatGroup) *VatGroupResponse {
	return &VatGroupResponse{
		ID:         g.ID,
		Name:       g.Name,
		Percentage: g.Percentage,
		Hidden:     g.Hidden,
		Deleted:    g.Deleted,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}

func toCategoryResponse(c *catalog.ProductCategory) *CategoryResponse {
	return &CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
}
