package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type productServiceFixture struct {
	productRepo  *MockProductRepository
	vatGroupRepo *MockVatGroupRepository
	categoryRepo *MockCategoryRepository
	service      *ProductService
}

func newProductServiceFixture() *productServiceFixture {
	productRepo := new(MockProductRepository)
	vatGroupRepo := new(MockVatGroupRepository)
	categoryRepo := new(MockCategoryRepository)
	scope := NewNoOpTransactionScope(productRepo, new(MockContainerRepository), new(MockPointOfSaleRepository), vatGroupRepo, categoryRepo)
	return &productServiceFixture{
		productRepo:  productRepo,
		vatGroupRepo: vatGroupRepo,
		categoryRepo: categoryRepo,
		service:      NewProductService(productRepo, vatGroupRepo, categoryRepo, scope),
	}
}

func testVatGroup(t *testing.T) *catalog.VatGroup {
	t.Helper()
	group, err := catalog.NewVatGroup("High", decimal.NewFromInt(21))
	require.NoError(t, err)
	return group
}

func testCategory(t *testing.T) *catalog.ProductCategory {
	t.Helper()
	category, err := catalog.NewProductCategory("Beer")
	require.NoError(t, err)
	return category
}

func testProductDraft(t *testing.T, productID uuid.UUID, vatGroupID, categoryID uuid.UUID) *catalog.ProductDraft {
	t.Helper()
	draft, err := catalog.NewProductDraft(productID, "Pale Ale", valueobject.NewMoneyEUR(150), vatGroupID, categoryID)
	require.NoError(t, err)
	return draft
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestProductServiceCreate(t *testing.T) {
	f := newProductServiceFixture()
	ctx := context.Background()
	vatGroup := testVatGroup(t)
	category := testCategory(t)

	f.vatGroupRepo.On("FindByID", ctx, vatGroup.ID).Return(vatGroup, nil)
	f.categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
	f.productRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)
	f.productRepo.On("SaveDraft", ctx, mock.AnythingOfType("*catalog.ProductDraft")).Return(nil)

	resp, err := f.service.Create(ctx, CreateProductRequest{
		OwnerID: uuid.New(),
		Payload: ProductPayload{Name: "Pale Ale", PriceInclVat: 150, VatGroupID: vatGroup.ID, CategoryID: category.ID},
	})

	require.NoError(t, err)
	assert.Nil(t, resp.CurrentRevision, "new heads carry no approved revision")
	require.NotNil(t, resp.Draft)
	assert.Equal(t, int64(150), resp.Draft.PriceInclVat)
	f.productRepo.AssertExpectations(t)
}

func TestProductServiceApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("first approval allocates revision 1 and snapshots VAT", func(t *testing.T) {
		f := newProductServiceFixture()
		vatGroup := testVatGroup(t)
		category := testCategory(t)
		product := catalog.NewProduct(uuid.New())
		draft := testProductDraft(t, product.ID, vatGroup.ID, category.ID)

		f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		f.productRepo.On("FindDraft", ctx, product.ID).Return(draft, nil)
		f.vatGroupRepo.On("FindByID", ctx, vatGroup.ID).Return(vatGroup, nil)
		f.categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
		f.productRepo.On("InsertRevision", ctx, mock.MatchedBy(func(rev *catalog.ProductRevision) bool {
			return rev.Revision == 1 && rev.VatPercentage.Equal(vatGroup.Percentage)
		})).Return(nil)
		f.productRepo.On("Save", ctx, product).Return(nil)
		f.productRepo.On("DeleteDraft", ctx, product.ID).Return(nil)

		resp, err := f.service.Approve(ctx, product.ID)

		require.NoError(t, err)
		require.NotNil(t, resp.CurrentRevision)
		assert.Equal(t, 1, *resp.CurrentRevision)
		assert.Nil(t, resp.Draft, "approval consumes the draft")
		f.productRepo.AssertExpectations(t)
	})

	t.Run("second approval allocates revision 2", func(t *testing.T) {
		f := newProductServiceFixture()
		vatGroup := testVatGroup(t)
		category := testCategory(t)
		product := catalog.NewProduct(uuid.New())
		require.NoError(t, product.Promote(1))
		draft := testProductDraft(t, product.ID, vatGroup.ID, category.ID)

		f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		f.productRepo.On("FindDraft", ctx, product.ID).Return(draft, nil)
		f.vatGroupRepo.On("FindByID", ctx, vatGroup.ID).Return(vatGroup, nil)
		f.categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
		f.productRepo.On("InsertRevision", ctx, mock.MatchedBy(func(rev *catalog.ProductRevision) bool {
			return rev.Revision == 2
		})).Return(nil)
		f.productRepo.On("Save", ctx, product).Return(nil)
		f.productRepo.On("DeleteDraft", ctx, product.ID).Return(nil)

		resp, err := f.service.Approve(ctx, product.ID)

		require.NoError(t, err)
		assert.Equal(t, 2, *resp.CurrentRevision)
	})

	t.Run("no pending draft", func(t *testing.T) {
		f := newProductServiceFixture()
		product := catalog.NewProduct(uuid.New())

		f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		f.productRepo.On("FindDraft", ctx, product.ID).Return(nil, shared.ErrNotFound)

		_, err := f.service.Approve(ctx, product.ID)
		assertDomainCode(t, err, "NO_DRAFT")
	})

	t.Run("deleted VAT group blocks approval", func(t *testing.T) {
		f := newProductServiceFixture()
		vatGroup := testVatGroup(t)
		vatGroup.SoftDelete()
		category := testCategory(t)
		product := catalog.NewProduct(uuid.New())
		draft := testProductDraft(t, product.ID, vatGroup.ID, category.ID)

		f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		f.productRepo.On("FindDraft", ctx, product.ID).Return(draft, nil)
		f.vatGroupRepo.On("FindByID", ctx, vatGroup.ID).Return(vatGroup, nil)

		_, err := f.service.Approve(ctx, product.ID)
		assertDomainCode(t, err, "UNRESOLVED_DEPENDENCY")
		f.productRepo.AssertNotCalled(t, "InsertRevision", mock.Anything, mock.Anything)
	})
}

func TestProductServiceCreateDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites the pending draft", func(t *testing.T) {
		f := newProductServiceFixture()
		vatGroup := testVatGroup(t)
		category := testCategory(t)
		product := catalog.NewProduct(uuid.New())

		f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		f.vatGroupRepo.On("FindByID", ctx, vatGroup.ID).Return(vatGroup, nil)
		f.categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
		f.productRepo.On("SaveDraft", ctx, mock.MatchedBy(func(d *catalog.ProductDraft) bool {
			return d.Name == "Stout" && d.PriceInclVat.Amount() == 200
		})).Return(nil)

		resp, err := f.service.CreateDraft(ctx, product.ID, ProductPayload{
			Name: "Stout", PriceInclVat: 200, VatGroupID: vatGroup.ID, CategoryID: category.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "Stout", resp.Draft.Name)
	})

	t.Run("deleted product takes no drafts", func(t *testing.T) {
		f := newProductServiceFixture()
		product := catalog.NewProduct(uuid.New())
		require.NoError(t, product.MarkDeleted(product.CreatedAt))

		f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)

		_, err := f.service.CreateDraft(ctx, product.ID, ProductPayload{Name: "Stout", VatGroupID: uuid.New(), CategoryID: uuid.New()})
		assertDomainCode(t, err, "ENTITY_DELETED")
	})
}

func TestProductServiceDeleteAndRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("delete discards the draft", func(t *testing.T) {
		f := newProductServiceFixture()
		product := catalog.NewProduct(uuid.New())

		f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		f.productRepo.On("Save", ctx, product).Return(nil)
		f.productRepo.On("DeleteDraft", ctx, product.ID).Return(nil)

		require.NoError(t, f.service.Delete(ctx, product.ID))
		assert.True(t, product.IsDeleted())
		f.productRepo.AssertCalled(t, "DeleteDraft", ctx, product.ID)
	})

	t.Run("restore clears the mark but revives no draft", func(t *testing.T) {
		f := newProductServiceFixture()
		product := catalog.NewProduct(uuid.New())
		require.NoError(t, product.MarkDeleted(product.CreatedAt))

		f.productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		f.productRepo.On("Save", ctx, product).Return(nil)

		require.NoError(t, f.service.Restore(ctx, product.ID))
		assert.False(t, product.IsDeleted())
		f.productRepo.AssertNotCalled(t, "SaveDraft", mock.Anything, mock.Anything)
	})
}
