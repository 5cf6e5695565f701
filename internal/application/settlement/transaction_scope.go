package settlement

import (
	"context"

	"github.com/bartab/backend/internal/domain/identity"
	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/settlement"
	"github.com/google/uuid"
)

// TransactionScope provides transactional access to the repositories a
// settlement write touches: invoices, voucher groups, users, ledger rows
// and transfers all move together or not at all.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all settlement-facing
// repositories within a transaction
type TransactionalRepositories interface {
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() settlement.InvoiceRepository
	// VoucherGroupRepo returns the voucher group repository scoped to the current transaction
	VoucherGroupRepo() settlement.VoucherGroupRepository
	// TransactionRepo returns the ledger transaction repository scoped to the current transaction
	TransactionRepo() ledger.TransactionRepository
	// TransferRepo returns the transfer repository scoped to the current transaction
	TransferRepo() ledger.TransferRepository
	// UserRepo returns the user repository scoped to the current transaction
	UserRepo() identity.UserRepository

	// LockDebtor serializes invoice creation per debtor for the rest of
	// the transaction. Two concurrent invoices for the same debtor would
	// otherwise both see the same un-invoiced rows and settle them twice.
	LockDebtor(ctx context.Context, debtorID uuid.UUID) error
}

// NoOpTransactionScope runs the function against the plain repositories
// without a real transaction and with no locking. Useful in tests.
type NoOpTransactionScope struct {
	invoiceRepo      settlement.InvoiceRepository
	voucherGroupRepo settlement.VoucherGroupRepository
	transactionRepo  ledger.TransactionRepository
	transferRepo     ledger.TransferRepository
	userRepo         identity.UserRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoiceRepo settlement.InvoiceRepository,
	voucherGroupRepo settlement.VoucherGroupRepository,
	transactionRepo ledger.TransactionRepository,
	transferRepo ledger.TransferRepository,
	userRepo identity.UserRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo:      invoiceRepo,
		voucherGroupRepo: voucherGroupRepo,
		transactionRepo:  transactionRepo,
		transferRepo:     transferRepo,
		userRepo:         userRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() settlement.InvoiceRepository {
	return s.invoiceRepo
}

// VoucherGroupRepo returns the voucher group repository.
func (s *NoOpTransactionScope) VoucherGroupRepo() settlement.VoucherGroupRepository {
	return s.voucherGroupRepo
}

// TransactionRepo returns the ledger transaction repository.
func (s *NoOpTransactionScope) TransactionRepo() ledger.TransactionRepository {
	return s.transactionRepo
}

// TransferRepo returns the transfer repository.
func (s *NoOpTransactionScope) TransferRepo() ledger.TransferRepository {
	return s.transferRepo
}

// UserRepo returns the user repository.
func (s *NoOpTransactionScope) UserRepo() identity.UserRepository {
	return s.userRepo
}

// LockDebtor is a no-op.
func (s *NoOpTransactionScope) LockDebtor(context.Context, uuid.UUID) error {
	return nil
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
