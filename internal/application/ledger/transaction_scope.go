package ledger

import (
	"context"

	"github.com/bartab/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to ledger repositories.
// Balance-floor checks are re-evaluated inside the same scope that writes
// the tree, so a concurrent purchase cannot slip under the floor.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all ledger repositories
// within a transaction
type TransactionalRepositories interface {
	// TransactionRepo returns the transaction repository scoped to the current transaction
	TransactionRepo() ledger.TransactionRepository
	// TransferRepo returns the transfer repository scoped to the current transaction
	TransferRepo() ledger.TransferRepository
	// BalanceRepo returns the balance repository scoped to the current transaction
	BalanceRepo() ledger.BalanceRepository
}

// NoOpTransactionScope runs the function against the plain repositories
// without a real transaction. Useful in tests.
type NoOpTransactionScope struct {
	transactionRepo ledger.TransactionRepository
	transferRepo    ledger.TransferRepository
	balanceRepo     ledger.BalanceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	transactionRepo ledger.TransactionRepository,
	transferRepo ledger.TransferRepository,
	balanceRepo ledger.BalanceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		transactionRepo: transactionRepo,
		transferRepo:    transferRepo,
		balanceRepo:     balanceRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// TransactionRepo returns the transaction repository.
func (s *NoOpTransactionScope) TransactionRepo() ledger.TransactionRepository {
	return s.transactionRepo
}

// TransferRepo returns the transfer repository.
func (s *NoOpTransactionScope) TransferRepo() ledger.TransferRepository {
	return s.transferRepo
}

// BalanceRepo returns the balance repository.
func (s *NoOpTransactionScope) BalanceRepo() ledger.BalanceRepository {
	return s.balanceRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
