package ledger

import (
	"context"
	"time"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/identity"
	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

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

// MockBalanceRepository is a mock implementation of ledger.BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) BalanceAsOf(ctx context.Context, userID uuid.UUID, asOf time.Time) (valueobject.Money, error) {
	args := m.Called(ctx, userID, asOf)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

func (m *MockBalanceRepository) LastMovement(ctx context.Context, userID uuid.UUID) (*ledger.Movement, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Movement), args.Error(1)
}

// MockSnapshotRepository is a mock implementation of catalog.SnapshotRepository
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) LoadSnapshot(ctx context.Context, pin catalog.PointOfSalePin) (*catalog.Snapshot, error) {
	args := m.Called(ctx, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Snapshot), args.Error(1)
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

// MockEventBus is a mock implementation of shared.EventPublisher
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockBalanceCache is a mock implementation of BalanceCache
type MockBalanceCache struct {
	mock.Mock
}

func (m *MockBalanceCache) Get(ctx context.Context, userID uuid.UUID) (valueobject.Money, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(valueobject.Money), args.Bool(1), args.Error(2)
}

func (m *MockBalanceCache) Set(ctx context.Context, userID uuid.UUID, balance valueobject.Money) error {
	args := m.Called(ctx, userID, balance)
	return args.Error(0)
}

func (m *MockBalanceCache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) error {
	args := m.Called(ctx, userIDs)
	return args.Error(0)
}

var (
	_ ledger.TransactionRepository = (*MockTransactionRepository)(nil)
	_ ledger.TransferRepository    = (*MockTransferRepository)(nil)
	_ ledger.BalanceRepository     = (*MockBalanceRepository)(nil)
	_ catalog.SnapshotRepository   = (*MockSnapshotRepository)(nil)
	_ identity.UserRepository      = (*MockUserRepository)(nil)
	_ shared.EventPublisher        = (*MockEventBus)(nil)
	_ BalanceCache                 = (*MockBalanceCache)(nil)
)
