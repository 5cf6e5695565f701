package catalog

import (
	"context"
	"time"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindPurchaseEligible(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) FindDraft(ctx context.Context, productID uuid.UUID) (*catalog.ProductDraft, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductDraft), args.Error(1)
}

func (m *MockProductRepository) SaveDraft(ctx context.Context, draft *catalog.ProductDraft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteDraft(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockProductRepository) FindRevision(ctx context.Context, pin catalog.ProductPin) (*catalog.ProductRevision, error) {
	args := m.Called(ctx, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductRevision), args.Error(1)
}

func (m *MockProductRepository) FindRevisions(ctx context.Context, productID uuid.UUID) ([]catalog.ProductRevision, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.ProductRevision), args.Error(1)
}

func (m *MockProductRepository) InsertRevision(ctx context.Context, revision *catalog.ProductRevision) error {
	args := m.Called(ctx, revision)
	return args.Error(0)
}

// MockContainerRepository is a mock implementation of catalog.ContainerRepository
type MockContainerRepository struct {
	mock.Mock
}

func (m *MockContainerRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Container, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Container), args.Error(1)
}

func (m *MockContainerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Container, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Container), args.Error(1)
}

func (m *MockContainerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Container, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Container), args.Error(1)
}

func (m *MockContainerRepository) FindPurchaseEligible(ctx context.Context, filter shared.Filter) ([]catalog.Container, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Container), args.Error(1)
}

func (m *MockContainerRepository) Save(ctx context.Context, container *catalog.Container) error {
	args := m.Called(ctx, container)
	return args.Error(0)
}

func (m *MockContainerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContainerRepository) FindDraft(ctx context.Context, containerID uuid.UUID) (*catalog.ContainerDraft, error) {
	args := m.Called(ctx, containerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ContainerDraft), args.Error(1)
}

func (m *MockContainerRepository) SaveDraft(ctx context.Context, draft *catalog.ContainerDraft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *MockContainerRepository) DeleteDraft(ctx context.Context, containerID uuid.UUID) error {
	args := m.Called(ctx, containerID)
	return args.Error(0)
}

func (m *MockContainerRepository) FindRevision(ctx context.Context, pin catalog.ContainerPin) (*catalog.ContainerRevision, error) {
	args := m.Called(ctx, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ContainerRevision), args.Error(1)
}

func (m *MockContainerRepository) InsertRevision(ctx context.Context, revision *catalog.ContainerRevision) error {
	args := m.Called(ctx, revision)
	return args.Error(0)
}

// MockPointOfSaleRepository is a mock implementation of catalog.PointOfSaleRepository
type MockPointOfSaleRepository struct {
	mock.Mock
}

func (m *MockPointOfSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.PointOfSale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.PointOfSale), args.Error(1)
}

func (m *MockPointOfSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.PointOfSale, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.PointOfSale), args.Error(1)
}

func (m *MockPointOfSaleRepository) FindPurchaseEligible(ctx context.Context, filter shared.Filter) ([]catalog.PointOfSale, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.PointOfSale), args.Error(1)
}

func (m *MockPointOfSaleRepository) Save(ctx context.Context, pos *catalog.PointOfSale) error {
	args := m.Called(ctx, pos)
	return args.Error(0)
}

func (m *MockPointOfSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPointOfSaleRepository) FindDraft(ctx context.Context, posID uuid.UUID) (*catalog.PointOfSaleDraft, error) {
	args := m.Called(ctx, posID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.PointOfSaleDraft), args.Error(1)
}

func (m *MockPointOfSaleRepository) SaveDraft(ctx context.Context, draft *catalog.PointOfSaleDraft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *MockPointOfSaleRepository) DeleteDraft(ctx context.Context, posID uuid.UUID) error {
	args := m.Called(ctx, posID)
	return args.Error(0)
}

func (m *MockPointOfSaleRepository) FindRevision(ctx context.Context, pin catalog.PointOfSalePin) (*catalog.PointOfSaleRevision, error) {
	args := m.Called(ctx, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.PointOfSaleRevision), args.Error(1)
}

func (m *MockPointOfSaleRepository) InsertRevision(ctx context.Context, revision *catalog.PointOfSaleRevision) error {
	args := m.Called(ctx, revision)
	return args.Error(0)
}

// MockVatGroupRepository is a mock implementation of catalog.VatGroupRepository
type MockVatGroupRepository struct {
	mock.Mock
}

func (m *MockVatGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.VatGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.VatGroup), args.Error(1)
}

func (m *MockVatGroupRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.VatGroup, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.VatGroup), args.Error(1)
}

func (m *MockVatGroupRepository) Save(ctx context.Context, group *catalog.VatGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockVatGroupRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockCategoryRepository is a mock implementation of catalog.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductCategory), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ProductCategory, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.ProductCategory), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.ProductCategory) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockObjectStorage is a mock implementation of ObjectStorageService
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}

var (
	_ ObjectStorageService          = (*MockObjectStorage)(nil)
	_ catalog.ProductRepository     = (*MockProductRepository)(nil)
	_ catalog.ContainerRepository   = (*MockContainerRepository)(nil)
	_ catalog.PointOfSaleRepository = (*MockPointOfSaleRepository)(nil)
	_ catalog.VatGroupRepository    = (*MockVatGroupRepository)(nil)
	_ catalog.CategoryRepository    = (*MockCategoryRepository)(nil)
)
