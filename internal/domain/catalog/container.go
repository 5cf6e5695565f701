package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UUIDList stores an ordered list of IDs as a JSONB column. Drafts keep
// child references by ID only; revision numbers are resolved at approval.
type UUIDList []uuid.UUID

// Value implements driver.Valuer
func (l UUIDList) Value() (driver.Value, error) {
	if l == nil {
		l = UUIDList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *UUIDList) Scan(value any) error {
	if value == nil {
		*l = UUIDList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into UUIDList", value)
	}
	return json.Unmarshal(data, l)
}

// Container is the head record of a revisionable set of products, e.g.
// the tap list or the snack shelf of a point of sale.
type Container struct {
	shared.BaseAggregateRoot
	Head
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Public containers may be listed by any point of sale; private ones
	// only by their owner's
	Public bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Container) TableName() string {
	return "containers"
}

// NewContainer creates a new container head with no approved revision
func NewContainer(ownerID uuid.UUID, public bool) *Container {
	return &Container{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           ownerID,
		Public:            public,
	}
}

// SetPublic switches the container's visibility
func (c *Container) SetPublic(public bool) {
	c.Public = public
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// ContainerDraft is the single pending edit of a container. Products are
// referenced by ID in display order; their revision numbers are resolved
// to each product's current approved revision at approval time.
type ContainerDraft struct {
	ContainerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(64);not null"`
	ProductIDs  UUIDList  `gorm:"type:jsonb;not null"`
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (ContainerDraft) TableName() string {
	return "container_drafts"
}

// NewContainerDraft creates a draft for the given container
func NewContainerDraft(containerID uuid.UUID, name string, productIDs []uuid.UUID) (*ContainerDraft, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Container name cannot be empty")
	}
	seen := make(map[uuid.UUID]struct{}, len(productIDs))
	for _, id := range productIDs {
		if _, dup := seen[id]; dup {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Container lists product "+id.String()+" twice")
		}
		seen[id] = struct{}{}
	}
	return &ContainerDraft{
		ContainerID: containerID,
		Name:        name,
		ProductIDs:  productIDs,
		UpdatedAt:   time.Now(),
	}, nil
}

// ContainerRevision is an immutable numbered snapshot of a container.
// Its product set is stored as child rows referencing exact product
// revisions by value, never as live pointers.
type ContainerRevision struct {
	ContainerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Revision    int       `gorm:"primaryKey"`
	Name        string    `gorm:"type:varchar(64);not null"`
	CreatedAt   time.Time

	Products []ContainerRevisionProduct `gorm:"foreignKey:ContainerID,Revision;references:ContainerID,Revision"`
}

// TableName returns the table name for GORM
func (ContainerRevision) TableName() string {
	return "container_revisions"
}

// BeforeUpdate blocks any write against a persisted revision row
func (r *ContainerRevision) BeforeUpdate(*gorm.DB) error {
	return shared.NewInvariantViolation("ContainerRevision.BeforeUpdate",
		"container revision rows are append-only")
}

// Pin returns the value reference identifying this revision
func (r *ContainerRevision) Pin() ContainerPin {
	return ContainerPin{ContainerID: r.ContainerID, Revision: r.Revision}
}

// ContainsProduct reports whether the given product revision is a member
// of this container revision
func (r *ContainerRevision) ContainsProduct(pin ProductPin) bool {
	for _, p := range r.Products {
		if p.ProductID == pin.ProductID && p.ProductRevision == pin.Revision {
			return true
		}
	}
	return false
}

// ContainerRevisionProduct is one product membership of a container
// revision, pinned to an exact product revision with a display order
type ContainerRevisionProduct struct {
	ContainerID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Revision        int       `gorm:"primaryKey"`
	ProductID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductRevision int       `gorm:"not null"`
	DisplayOrder    int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ContainerRevisionProduct) TableName() string {
	return "container_revision_products"
}

// BeforeUpdate blocks any write against a persisted membership row
func (r *ContainerRevisionProduct) BeforeUpdate(*gorm.DB) error {
	return shared.NewInvariantViolation("ContainerRevisionProduct.BeforeUpdate",
		"container revision membership rows are append-only")
}
