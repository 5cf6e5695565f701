package persistence

import (
	"context"

	appcatalog "github.com/bartab/backend/internal/application/catalog"
	"github.com/bartab/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormCatalogTransactionScope implements the catalog TransactionScope
// using GORM transactions. An approval allocates a revision number,
// inserts the revision row, moves the head and drops the draft; all of
// that commits or rolls back as one unit.
type GormCatalogTransactionScope struct {
	db *gorm.DB
}

// NewGormCatalogTransactionScope creates a new GormCatalogTransactionScope.
func NewGormCatalogTransactionScope(db *gorm.DB) *GormCatalogTransactionScope {
	return &GormCatalogTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormCatalogTransactionScope) Execute(ctx context.Context, fn func(repos appcatalog.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormCatalogRepositories{tx: tx}
		return fn(repos)
	})
}

// gormCatalogRepositories provides access to all catalog repositories
// within a transaction.
type gormCatalogRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormCatalogRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// ContainerRepo returns the container repository scoped to the current transaction.
func (r *gormCatalogRepositories) ContainerRepo() catalog.ContainerRepository {
	return NewGormContainerRepository(r.tx)
}

// PointOfSaleRepo returns the point-of-sale repository scoped to the current transaction.
func (r *gormCatalogRepositories) PointOfSaleRepo() catalog.PointOfSaleRepository {
	return NewGormPointOfSaleRepository(r.tx)
}

// VatGroupRepo returns the VAT group repository scoped to the current transaction.
func (r *gormCatalogRepositories) VatGroupRepo() catalog.VatGroupRepository {
	return NewGormVatGroupRepository(r.tx)
}

// CategoryRepo returns the category repository scoped to the current transaction.
func (r *gormCatalogRepositories) CategoryRepo() catalog.CategoryRepository {
	return NewGormCategoryRepository(r.tx)
}

// Ensure GormCatalogTransactionScope implements TransactionScope
var _ appcatalog.TransactionScope = (*GormCatalogTransactionScope)(nil)

// Ensure gormCatalogRepositories implements TransactionalRepositories
var _ appcatalog.TransactionalRepositories = (*gormCatalogRepositories)(nil)
