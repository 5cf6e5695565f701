package persistence

import (
	"context"

	appledger "github.com/bartab/backend/internal/application/ledger"
	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
)

// GormLedgerTransactionScope implements the ledger TransactionScope using
// GORM transactions. Balance-floor checks run against the same
// transaction that writes the tree, so a concurrent purchase cannot slip
// under the floor.
type GormLedgerTransactionScope struct {
	db       *gorm.DB
	currency valueobject.Currency
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope.
func NewGormLedgerTransactionScope(db *gorm.DB, currency valueobject.Currency) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db, currency: currency}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormLedgerRepositories{tx: tx, currency: s.currency}
		return fn(repos)
	})
}

// gormLedgerRepositories provides access to all ledger repositories
// within a transaction.
type gormLedgerRepositories struct {
	tx       *gorm.DB
	currency valueobject.Currency
}

// TransactionRepo returns the transaction repository scoped to the current transaction.
func (r *gormLedgerRepositories) TransactionRepo() ledger.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

// TransferRepo returns the transfer repository scoped to the current transaction.
func (r *gormLedgerRepositories) TransferRepo() ledger.TransferRepository {
	return NewGormTransferRepository(r.tx)
}

// BalanceRepo returns the balance repository scoped to the current transaction.
func (r *gormLedgerRepositories) BalanceRepo() ledger.BalanceRepository {
	return NewGormBalanceRepository(r.tx, r.currency)
}

// Ensure GormLedgerTransactionScope implements TransactionScope
var _ appledger.TransactionScope = (*GormLedgerTransactionScope)(nil)

// Ensure gormLedgerRepositories implements TransactionalRepositories
var _ appledger.TransactionalRepositories = (*gormLedgerRepositories)(nil)
