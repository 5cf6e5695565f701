package catalog

import (
	"time"

	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointOfSale is the head record of a revisionable sales terminal
// configuration: which containers it offers and whether buyers must
// authenticate.
type PointOfSale struct {
	shared.BaseAggregateRoot
	Head
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index"`
	// UseAuthentication requires the buyer to identify themselves at the
	// terminal instead of an open tab
	UseAuthentication bool `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PointOfSale) TableName() string {
	return "points_of_sale"
}

// NewPointOfSale creates a new point-of-sale head with no approved revision
func NewPointOfSale(ownerID uuid.UUID, useAuthentication bool) *PointOfSale {
	return &PointOfSale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           ownerID,
		UseAuthentication: useAuthentication,
	}
}

// PointOfSaleDraft is the single pending edit of a point of sale.
// Containers are referenced by ID; revision numbers are resolved at
// approval.
type PointOfSaleDraft struct {
	PointOfSaleID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name              string    `gorm:"type:varchar(64);not null"`
	ContainerIDs      UUIDList  `gorm:"type:jsonb;not null"`
	UseAuthentication bool      `gorm:"not null;default:true"`
	UpdatedAt         time.Time
}

// TableName returns the table name for GORM
func (PointOfSaleDraft) TableName() string {
	return "point_of_sale_drafts"
}

// NewPointOfSaleDraft creates a draft for the given point of sale
func NewPointOfSaleDraft(posID uuid.UUID, name string, containerIDs []uuid.UUID, useAuthentication bool) (*PointOfSaleDraft, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Point of sale name cannot be empty")
	}
	seen := make(map[uuid.UUID]struct{}, len(containerIDs))
	for _, id := range containerIDs {
		if _, dup := seen[id]; dup {
			return nil, shared.NewDomainError("DUPLICATE_CONTAINER", "Point of sale lists container "+id.String()+" twice")
		}
		seen[id] = struct{}{}
	}
	return &PointOfSaleDraft{
		PointOfSaleID:     posID,
		Name:              name,
		ContainerIDs:      containerIDs,
		UseAuthentication: useAuthentication,
		UpdatedAt:         time.Now(),
	}, nil
}

// PointOfSaleRevision is an immutable numbered snapshot of a point of
// sale, with its container set pinned by value.
type PointOfSaleRevision struct {
	PointOfSaleID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Revision          int       `gorm:"primaryKey"`
	Name              string    `gorm:"type:varchar(64);not null"`
	UseAuthentication bool      `gorm:"not null;default:true"`
	CreatedAt         time.Time

	Containers []PointOfSaleRevisionContainer `gorm:"foreignKey:PointOfSaleID,Revision;references:PointOfSaleID,Revision"`
}

// TableName returns the table name for GORM
func (PointOfSaleRevision) TableName() string {
	return "point_of_sale_revisions"
}

// BeforeUpdate blocks any write against a persisted revision row
func (r *PointOfSaleRevision) BeforeUpdate(*gorm.DB) error {
	return shared.NewInvariantViolation("PointOfSaleRevision.BeforeUpdate",
		"point-of-sale revision rows are append-only")
}

// Pin returns the value reference identifying this revision
func (r *PointOfSaleRevision) Pin() PointOfSalePin {
	return PointOfSalePin{PointOfSaleID: r.PointOfSaleID, Revision: r.Revision}
}

// ContainsContainer reports whether the given container revision is a
// member of this point-of-sale revision
func (r *PointOfSaleRevision) ContainsContainer(pin ContainerPin) bool {
	for _, c := range r.Containers {
		if c.ContainerID == pin.ContainerID && c.ContainerRevision == pin.Revision {
			return true
		}
	}
	return false
}

// PointOfSaleRevisionContainer is one container membership of a
// point-of-sale revision, pinned to an exact container revision
type PointOfSaleRevisionContainer struct {
	PointOfSaleID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Revision          int       `gorm:"primaryKey"`
	ContainerID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContainerRevision int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PointOfSaleRevisionContainer) TableName() string {
	return "point_of_sale_revision_containers"
}

// BeforeUpdate blocks any write against a persisted membership row
func (r *PointOfSaleRevisionContainer) BeforeUpdate(*gorm.DB) error {
	return shared.NewInvariantViolation("PointOfSaleRevisionContainer.BeforeUpdate",
		"point-of-sale revision membership rows are append-only")
}
