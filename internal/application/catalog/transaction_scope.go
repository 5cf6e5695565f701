package catalog

import (
	"context"

	"github.com/bartab/backend/internal/domain/catalog"
)

// TransactionScope provides transactional access to catalog repositories.
// An approval allocates a revision number, inserts the immutable revision
// row, moves the head pointer and deletes the draft; all of that must
// commit or roll back as one unit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all catalog repositories
// within a transaction. All repositories returned share the same
// underlying database transaction.
type TransactionalRepositories interface {
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// ContainerRepo returns the container repository scoped to the current transaction
	ContainerRepo() catalog.ContainerRepository
	// PointOfSaleRepo returns the point-of-sale repository scoped to the current transaction
	PointOfSaleRepo() catalog.PointOfSaleRepository
	// VatGroupRepo returns the VAT group repository scoped to the current transaction
	VatGroupRepo() catalog.VatGroupRepository
	// CategoryRepo returns the category repository scoped to the current transaction
	CategoryRepo() catalog.CategoryRepository
}

// NoOpTransactionScope runs the function against the plain repositories
// without a real transaction. Useful in tests.
type NoOpTransactionScope struct {
	productRepo     catalog.ProductRepository
	containerRepo   catalog.ContainerRepository
	pointOfSaleRepo catalog.PointOfSaleRepository
	vatGroupRepo    catalog.VatGroupRepository
	categoryRepo    catalog.CategoryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	containerRepo catalog.ContainerRepository,
	pointOfSaleRepo catalog.PointOfSaleRepository,
	vatGroupRepo catalog.VatGroupRepository,
	categoryRepo catalog.CategoryRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:     productRepo,
		containerRepo:   containerRepo,
		pointOfSaleRepo: pointOfSaleRepo,
		vatGroupRepo:    vatGroupRepo,
		categoryRepo:    categoryRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// ContainerRepo returns the container repository.
func (s *NoOpTransactionScope) ContainerRepo() catalog.ContainerRepository {
	return s.containerRepo
}

// PointOfSaleRepo returns the point-of-sale repository.
func (s *NoOpTransactionScope) PointOfSaleRepo() catalog.PointOfSaleRepository {
	return s.pointOfSaleRepo
}

// VatGroupRepo returns the VAT group repository.
func (s *NoOpTransactionScope) VatGroupRepo() catalog.VatGroupRepository {
	return s.vatGroupRepo
}

// CategoryRepo returns the category repository.
func (s *NoOpTransactionScope) CategoryRepo() catalog.CategoryRepository {
	return s.categoryRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
