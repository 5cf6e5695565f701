package persistence

import (
	"context"
	"hash/fnv"

	appsettlement "github.com/bartab/backend/internal/application/settlement"
	"github.com/bartab/backend/internal/domain/identity"
	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/settlement"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSettlementTransactionScope implements the settlement
// TransactionScope using GORM transactions. It spans invoices, voucher
// groups, users, ledger rows and transfers; a settlement write moves all
// of them together or not at all.
type GormSettlementTransactionScope struct {
	db *gorm.DB
}

// NewGormSettlementTransactionScope creates a new GormSettlementTransactionScope.
func NewGormSettlementTransactionScope(db *gorm.DB) *GormSettlementTransactionScope {
	return &GormSettlementTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormSettlementTransactionScope) Execute(ctx context.Context, fn func(repos appsettlement.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormSettlementRepositories{tx: tx}
		return fn(repos)
	})
}

// gormSettlementRepositories provides access to all settlement-facing
// repositories within a transaction.
type gormSettlementRepositories struct {
	tx *gorm.DB
}

// InvoiceRepo returns the invoice repository scoped to the current transaction.
func (r *gormSettlementRepositories) InvoiceRepo() settlement.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// VoucherGroupRepo returns the voucher group repository scoped to the current transaction.
func (r *gormSettlementRepositories) VoucherGroupRepo() settlement.VoucherGroupRepository {
	return NewGormVoucherGroupRepository(r.tx)
}

// TransactionRepo returns the ledger transaction repository scoped to the current transaction.
func (r *gormSettlementRepositories) TransactionRepo() ledger.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

// TransferRepo returns the transfer repository scoped to the current transaction.
func (r *gormSettlementRepositories) TransferRepo() ledger.TransferRepository {
	return NewGormTransferRepository(r.tx)
}

// UserRepo returns the user repository scoped to the current transaction.
func (r *gormSettlementRepositories) UserRepo() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

// LockDebtor serializes invoice creation per debtor for the rest of the
// transaction. Two concurrent invoices for the same debtor would
// otherwise both see the same un-invoiced rows and settle them twice.
// The lock is a Postgres transaction-level advisory lock keyed by a hash
// of the debtor ID; on other dialects it degrades to a no-op.
func (r *gormSettlementRepositories) LockDebtor(ctx context.Context, debtorID uuid.UUID) error {
	if r.tx.Dialector.Name() != "postgres" {
		return nil
	}
	return r.tx.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(?)", debtorLockKey(debtorID)).Error
}

// debtorLockKey maps a debtor UUID onto the 64-bit advisory lock space
func debtorLockKey(debtorID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(debtorID[:])
	return int64(h.Sum64())
}

// Ensure GormSettlementTransactionScope implements TransactionScope
var _ appsettlement.TransactionScope = (*GormSettlementTransactionScope)(nil)

// Ensure gormSettlementRepositories implements TransactionalRepositories
var _ appsettlement.TransactionalRepositories = (*gormSettlementRepositories)(nil)
