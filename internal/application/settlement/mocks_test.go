package settlement

import (
	"context"
	"time"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/identity"
	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/settlement"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockInvoiceRepository is a mock implementation of settlement.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByDebtor(ctx context.Context, debtorID uuid.UUID, filter shared.Filter) ([]settlement.Invoice, error) {
	args := m.Called(ctx, debtorID, filter)
	return args.Get(0).([]settlement.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]settlement.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]settlement.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) LatestCreationTime(ctx context.Context, debtorID uuid.UUID) (time.Time, error) {
	args := m.Called(ctx, debtorID)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *settlement.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockVoucherGroupRepository is a mock implementation of settlement.VoucherGroupRepository
type MockVoucherGroupRepository struct {
	mock.Mock
}

func (m *MockVoucherGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.VoucherGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.VoucherGroup), args.Error(1)
}

func (m *MockVoucherGroupRepository) FindAll(ctx context.Context, filter shared.Filter) ([]settlement.VoucherGroup, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]settlement.VoucherGroup), args.Error(1)
}

func (m *MockVoucherGroupRepository) FindExpired(ctx context.Context, asOf time.Time) ([]settlement.VoucherGroup, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]settlement.VoucherGroup), args.Error(1)
}

func (m *MockVoucherGroupRepository) Save(ctx context.Context, group *settlement.VoucherGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockVoucherGroupRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockTransactionRepository is a mock implementation of ledger.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.Transaction, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByFrom(ctx context.Context, fromID uuid.UUID, filter shared.Filter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, fromID, filter)
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountByFrom(ctx context.Context, fromID uuid.UUID) (int64, error) {
	args := m.Called(ctx, fromID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, transaction *ledger.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindUninvoicedRows(ctx context.Context, debtorID uuid.UUID, since time.Time) ([]ledger.UninvoicedRow, error) {
	args := m.Called(ctx, debtorID, since)
	return args.Get(0).([]ledger.UninvoicedRow), args.Error(1)
}

func (m *MockTransactionRepository) FindRowsByTransactionIDs(ctx context.Context, transactionIDs []uuid.UUID) ([]ledger.UninvoicedRow, error) {
	args := m.Called(ctx, transactionIDs)
	return args.Get(0).([]ledger.UninvoicedRow), args.Error(1)
}

func (m *MockTransactionRepository) MarkRowsInvoiced(ctx context.Context, rowIDs []uuid.UUID, invoiceID uuid.UUID) error {
	args := m.Called(ctx, rowIDs, invoiceID)
	return args.Error(0)
}

func (m *MockTransactionRepository) ClearRowsInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	args := m.Called(ctx, invoiceID)
	return args.Error(0)
}

// MockTransferRepository is a mock implementation of ledger.TransferRepository
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transfer), args.Error(1)
}

func (m *MockTransferRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]ledger.Transfer, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]ledger.Transfer), args.Error(1)
}

func (m *MockTransferRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]ledger.Transfer, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]ledger.Transfer), args.Error(1)
}

func (m *MockTransferRepository) Insert(ctx context.Context, transfer *ledger.Transfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *MockTransferRepository) InsertBatch(ctx context.Context, transfers []*ledger.Transfer) error {
	args := m.Called(ctx, transfers)
	return args.Error(0)
}

func (m *MockTransferRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByType(ctx context.Context, userType identity.UserType, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, userType, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SaveBatch(ctx context.Context, users []*identity.User) error {
	args := m.Called(ctx, users)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

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

// MockEventBus is a mock implementation of shared.EventPublisher
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockInvoiceRenderer is a mock implementation of InvoiceRenderer
type MockInvoiceRenderer struct {
	mock.Mock
}

func (m *MockInvoiceRenderer) Render(ctx context.Context, invoice *settlement.Invoice, debtor *identity.User) ([]byte, error) {
	args := m.Called(ctx, invoice, debtor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var (
	_ settlement.InvoiceRepository      = (*MockInvoiceRepository)(nil)
	_ settlement.VoucherGroupRepository = (*MockVoucherGroupRepository)(nil)
	_ ledger.TransactionRepository      = (*MockTransactionRepository)(nil)
	_ ledger.TransferRepository         = (*MockTransferRepository)(nil)
	_ identity.UserRepository           = (*MockUserRepository)(nil)
	_ catalog.ProductRepository         = (*MockProductRepository)(nil)
	_ shared.EventPublisher             = (*MockEventBus)(nil)
	_ InvoiceRenderer                   = (*MockInvoiceRenderer)(nil)
)

// moneyEUR is a test shorthand
func moneyEUR(amount int64) valueobject.Money {
	return valueobject.NewMoneyEUR(amount)
}
