package ledger

import (
	"fmt"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Transaction is the root of one purchase event. The purchase tree is
// immutable once persisted: its rows pin exact catalog revisions and its
// denormalized totals are recomputed and compared on every path that
// matters, never trusted.
//
// A transaction affects balances derivationally - no Transfer is written
// for it, the balance service counts the tree itself. Writing both would
// double count.
type Transaction struct {
	shared.BaseAggregateRoot
	// Seq is the insertion-order tiebreak for movements sharing a
	// timestamp
	Seq int64 `gorm:"autoIncrement;uniqueIndex"`
	// FromID is the paying user
	FromID uuid.UUID `gorm:"type:uuid;not null;index"`
	// CreatedByID is the acting user, e.g. a cashier buying on behalf
	// of a member
	CreatedByID       uuid.UUID         `gorm:"type:uuid;not null"`
	PointOfSaleID     uuid.UUID         `gorm:"type:uuid;not null"`
	PosRevision       int               `gorm:"not null"`
	TotalPriceInclVat valueobject.Money `gorm:"type:bigint;not null"`

	SubTransactions []SubTransaction `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "transactions"
}

// PosPin returns the pinned point-of-sale revision reference
func (t *Transaction) PosPin() catalog.PointOfSalePin {
	return catalog.PointOfSalePin{PointOfSaleID: t.PointOfSaleID, Revision: t.PosRevision}
}

// SubTransaction is the per-seller split of a purchase: all rows of one
// sub-transaction are owed to the same receiving user, pinned to one
// container revision.
type SubTransaction struct {
	shared.BaseEntity
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index"`
	// ToID is the receiving user, typically the owner of the container
	ToID              uuid.UUID         `gorm:"type:uuid;not null;index"`
	ContainerID       uuid.UUID         `gorm:"type:uuid;not null"`
	ContainerRevision int               `gorm:"not null"`
	TotalPriceInclVat valueobject.Money `gorm:"type:bigint;not null"`

	Rows []SubTransactionRow `gorm:"foreignKey:SubTransactionID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SubTransaction) TableName() string {
	return "sub_transactions"
}

// ContainerPin returns the pinned container revision reference
func (s *SubTransaction) ContainerPin() catalog.ContainerPin {
	return catalog.ContainerPin{ContainerID: s.ContainerID, Revision: s.ContainerRevision}
}

// SubTransactionRow is one per-product line item, pinned to an exact
// product revision. InvoiceID stays nil until the row is settled; an
// invoiced row is historically frozen.
type SubTransactionRow struct {
	shared.BaseEntity
	SubTransactionID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID         `gorm:"type:uuid;not null"`
	ProductRevision   int               `gorm:"not null"`
	Amount            int               `gorm:"not null"`
	TotalPriceInclVat valueobject.Money `gorm:"type:bigint;not null"`
	InvoiceID         *uuid.UUID        `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (SubTransactionRow) TableName() string {
	return "sub_transaction_rows"
}

// ProductPin returns the pinned product revision reference
func (r *SubTransactionRow) ProductPin() catalog.ProductPin {
	return catalog.ProductPin{ProductID: r.ProductID, Revision: r.ProductRevision}
}

// IsInvoiced reports whether the row has been settled into an invoice
func (r *SubTransactionRow) IsInvoiced() bool {
	return r.InvoiceID != nil
}

// HasInvoicedRows reports whether any row of the tree carries an invoice
// reference
func (t *Transaction) HasInvoicedRows() bool {
	for i := range t.SubTransactions {
		for j := range t.SubTransactions[i].Rows {
			if t.SubTransactions[i].Rows[j].IsInvoiced() {
				return true
			}
		}
	}
	return false
}

// ValidateStructure checks the request-shape invariants of a purchase
// tree: at least one row, positive integer amounts, a single currency,
// and denormalized totals exactly equal to the sum of their children.
// Client-supplied totals are compared, never corrected, so that price
// manipulation attempts surface as validation failures.
func (t *Transaction) ValidateStructure() error {
	if len(t.SubTransactions) == 0 {
		return shared.NewDomainError("EMPTY_TRANSACTION", "A transaction needs at least one sub-transaction")
	}

	transactionSum := valueobject.Zero(t.TotalPriceInclVat.Currency())
	for i := range t.SubTransactions {
		sub := &t.SubTransactions[i]
		if len(sub.Rows) == 0 {
			return shared.NewDomainError("EMPTY_SUB_TRANSACTION",
				fmt.Sprintf("Sub-transaction for %s has no rows", sub.ContainerPin()))
		}

		subSum := valueobject.Zero(t.TotalPriceInclVat.Currency())
		for j := range sub.Rows {
			row := &sub.Rows[j]
			if row.Amount <= 0 {
				return shared.NewDomainError("INVALID_AMOUNT",
					fmt.Sprintf("Row for %s has non-positive amount %d", row.ProductPin(), row.Amount))
			}
			var err error
			subSum, err = subSum.Add(row.TotalPriceInclVat)
			if err != nil {
				return shared.NewDomainError("CURRENCY_MISMATCH", err.Error())
			}
		}
		if !sub.TotalPriceInclVat.Equals(subSum) {
			return shared.NewDomainError("TOTAL_MISMATCH",
				fmt.Sprintf("Sub-transaction total %s does not equal the sum of its rows %s",
					sub.TotalPriceInclVat, subSum))
		}

		var err error
		transactionSum, err = transactionSum.Add(sub.TotalPriceInclVat)
		if err != nil {
			return shared.NewDomainError("CURRENCY_MISMATCH", err.Error())
		}
	}

	if !t.TotalPriceInclVat.Equals(transactionSum) {
		return shared.NewDomainError("TOTAL_MISMATCH",
			fmt.Sprintf("Transaction total %s does not equal the sum of its sub-transactions %s",
				t.TotalPriceInclVat, transactionSum))
	}
	return nil
}
