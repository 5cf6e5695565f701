package catalog

import (
	"time"

	"github.com/bartab/backend/internal/domain/shared"
)

// ProductCategory is a plain lookup entity grouping products for display
type ProductCategory struct {
	shared.BaseAggregateRoot
	Name string `gorm:"type:varchar(64);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (ProductCategory) TableName() string {
	return "product_categories"
}

// NewProductCategory creates a new category
func NewProductCategory(name string) (*ProductCategory, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	return &ProductCategory{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
	}, nil
}

// Rename updates the category name
func (c *ProductCategory) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}
