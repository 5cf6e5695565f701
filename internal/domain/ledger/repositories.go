package ledger

import (
	"context"
	"time"

	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// TransactionRepository defines persistence for purchase trees.
// Trees are saved and deleted as a whole; rows are only ever updated to
// set or clear their invoice reference.
type TransactionRepository interface {
	// FindByID loads a transaction including its full subtree
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByIDs loads multiple transactions including their subtrees
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Transaction, error)

	// FindByFrom lists the paying user's transactions, newest first
	FindByFrom(ctx context.Context, fromID uuid.UUID, filter shared.Filter) ([]Transaction, error)

	// CountByFrom counts the paying user's transactions
	CountByFrom(ctx context.Context, fromID uuid.UUID) (int64, error)

	// Save persists the whole tree atomically (insert or full replace)
	Save(ctx context.Context, transaction *Transaction) error

	// Delete removes the whole tree
	Delete(ctx context.Context, id uuid.UUID) error

	// FindUninvoicedRows finds the debtor's rows without an invoice
	// reference whose parent transaction was created at or after since.
	// A zero since means all time. Rows are returned with their
	// transaction context loaded.
	FindUninvoicedRows(ctx context.Context, debtorID uuid.UUID, since time.Time) ([]UninvoicedRow, error)

	// FindRowsByTransactionIDs finds all rows of the given transactions
	FindRowsByTransactionIDs(ctx context.Context, transactionIDs []uuid.UUID) ([]UninvoicedRow, error)

	// MarkRowsInvoiced stamps the invoice reference on the given rows,
	// failing if any of them is already invoiced
	MarkRowsInvoiced(ctx context.Context, rowIDs []uuid.UUID, invoiceID uuid.UUID) error

	// ClearRowsInvoice nulls the invoice reference on all rows of an
	// invoice, un-freezing them for a future invoice
	ClearRowsInvoice(ctx context.Context, invoiceID uuid.UUID) error
}

// UninvoicedRow is a settlement-facing projection of one row together
// with the transaction context needed for aggregation
type UninvoicedRow struct {
	Row             SubTransactionRow
	TransactionID   uuid.UUID
	TransactionFrom uuid.UUID
	// SellerID is the sub-transaction's receiving user
	SellerID  uuid.UUID
	CreatedAt time.Time
}

// TransferRepository defines persistence for transfers. Transfers are
// append-only.
type TransferRepository interface {
	// FindByID finds a transfer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transfer, error)

	// FindByUser lists transfers touching the user on either side
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Transfer, error)

	// FindByInvoice lists the settlement and reversal transfers of an
	// invoice
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Transfer, error)

	// Insert appends a transfer
	Insert(ctx context.Context, transfer *Transfer) error

	// InsertBatch appends multiple transfers
	InsertBatch(ctx context.Context, transfers []*Transfer) error

	// Count counts transfers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// BalanceRepository derives balances from the append-only ledger. All
// sums run over undeleted rows only.
type BalanceRepository interface {
	// BalanceAsOf computes the user's net position at the given instant:
	// transfers in minus transfers out, plus sub-transaction value
	// received minus transaction value spent, each created at or before
	// asOf.
	BalanceAsOf(ctx context.Context, userID uuid.UUID, asOf time.Time) (valueobject.Money, error)

	// LastMovement returns the most recent transaction or transfer
	// touching the user, ties broken by highest Seq; shared.ErrNotFound
	// if the user has no ledger activity.
	LastMovement(ctx context.Context, userID uuid.UUID) (*Movement, error)
}
