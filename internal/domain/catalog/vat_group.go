package catalog

import (
	"time"

	"github.com/bartab/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// VatGroup is a named VAT percentage. It is not revisioned: the
// percentage in force is snapshotted into each product revision at
// approval time, so editing a group never reprices history.
type VatGroup struct {
	shared.BaseAggregateRoot
	Name       string          `gorm:"type:varchar(64);not null"`
	Percentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	// Hidden groups are kept out of pickers but stay valid for
	// existing revisions
	Hidden  bool `gorm:"not null;default:false"`
	Deleted bool `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (VatGroup) TableName() string {
	return "vat_groups"
}

// NewVatGroup creates a new VAT group
func NewVatGroup(name string, percentage decimal.Decimal) (*VatGroup, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "VAT group name cannot be empty")
	}
	if percentage.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PERCENTAGE", "VAT percentage cannot be negative")
	}
	return &VatGroup{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Percentage:        percentage,
	}, nil
}

// Update changes the group's name and percentage for future approvals
func (g *VatGroup) Update(name string, percentage decimal.Decimal, hidden bool) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "VAT group name cannot be empty")
	}
	if percentage.IsNegative() {
		return shared.NewDomainError("INVALID_PERCENTAGE", "VAT percentage cannot be negative")
	}
	g.Name = name
	g.Percentage = percentage
	g.Hidden = hidden
	g.UpdatedAt = time.Now()
	g.IncrementVersion()
	return nil
}

// SoftDelete marks the group deleted; existing revision snapshots are
// unaffected
func (g *VatGroup) SoftDelete() {
	g.Deleted = true
	g.UpdatedAt = time.Now()
	g.IncrementVersion()
}
