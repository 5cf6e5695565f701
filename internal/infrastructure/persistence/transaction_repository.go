package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransactionRepository implements TransactionRepository using GORM.
// Trees are written as a whole: an update deletes the old subtree and
// recreates it, so the persisted rows always mirror the aggregate exactly.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID loads a transaction including its full subtree
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var transaction ledger.Transaction
	if err := r.db.WithContext(ctx).
		Preload("SubTransactions.Rows").
		First(&transaction, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

// FindByIDs loads multiple transactions including their subtrees
func (r *GormTransactionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.Transaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var transactions []ledger.Transaction
	if err := r.db.WithContext(ctx).
		Preload("SubTransactions.Rows").
		Where("id IN ?", ids).
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// FindByFrom lists the paying user's transactions, newest first
func (r *GormTransactionRepository) FindByFrom(ctx context.Context, fromID uuid.UUID, filter shared.Filter) ([]ledger.Transaction, error) {
	var transactions []ledger.Transaction
	query := r.db.WithContext(ctx).
		Preload("SubTransactions.Rows").
		Where("from_id = ?", fromID).
		Order("created_at DESC, seq DESC")
	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if offset := filter.Offset(); offset > 0 {
			query = query.Offset(offset)
		}
	}
	if err := query.Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// CountByFrom counts the paying user's transactions
func (r *GormTransactionRepository) CountByFrom(ctx context.Context, fromID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.Transaction{}).
		Where("from_id = ?", fromID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists the whole tree atomically. An existing subtree is
// replaced, never merged.
func (r *GormTransactionRepository) Save(ctx context.Context, transaction *ledger.Transaction) error {
	db := r.db.WithContext(ctx)
	if err := r.deleteSubtree(db, transaction.ID); err != nil {
		return err
	}
	return db.Session(&gorm.Session{FullSaveAssociations: true}).Save(transaction).Error
}

// Delete removes the whole tree
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := r.deleteSubtree(db, id); err != nil {
		return err
	}
	result := db.Delete(&ledger.Transaction{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormTransactionRepository) deleteSubtree(db *gorm.DB, transactionID uuid.UUID) error {
	var subIDs []uuid.UUID
	if err := db.Model(&ledger.SubTransaction{}).
		Where("transaction_id = ?", transactionID).
		Pluck("id", &subIDs).Error; err != nil {
		return err
	}
	if len(subIDs) == 0 {
		return nil
	}
	if err := db.Where("sub_transaction_id IN ?", subIDs).
		Delete(&ledger.SubTransactionRow{}).Error; err != nil {
		return err
	}
	return db.Where("transaction_id = ?", transactionID).
		Delete(&ledger.SubTransaction{}).Error
}

// rowContext carries the join columns that place a row in its tree
type rowContext struct {
	RowID           uuid.UUID
	TransactionID   uuid.UUID
	TransactionFrom uuid.UUID
	SellerID        uuid.UUID
	CreatedAt       time.Time
}

// FindUninvoicedRows finds the debtor's rows without an invoice reference
// whose parent transaction was created at or after since
func (r *GormTransactionRepository) FindUninvoicedRows(ctx context.Context, debtorID uuid.UUID, since time.Time) ([]ledger.UninvoicedRow, error) {
	query := r.db.WithContext(ctx).
		Table("sub_transaction_rows AS r").
		Select("r.id AS row_id, s.transaction_id, t.from_id AS transaction_from, s.to_id AS seller_id, t.created_at").
		Joins("JOIN sub_transactions s ON s.id = r.sub_transaction_id").
		Joins("JOIN transactions t ON t.id = s.transaction_id").
		Where("t.from_id = ? AND r.invoice_id IS NULL", debtorID).
		Order("t.created_at ASC, t.seq ASC, r.id ASC")
	if !since.IsZero() {
		query = query.Where("t.created_at >= ?", since)
	}

	var contexts []rowContext
	if err := query.Scan(&contexts).Error; err != nil {
		return nil, err
	}
	return r.assembleRows(ctx, contexts)
}

// FindRowsByTransactionIDs finds all rows of the given transactions
func (r *GormTransactionRepository) FindRowsByTransactionIDs(ctx context.Context, transactionIDs []uuid.UUID) ([]ledger.UninvoicedRow, error) {
	if len(transactionIDs) == 0 {
		return nil, nil
	}
	var contexts []rowContext
	if err := r.db.WithContext(ctx).
		Table("sub_transaction_rows AS r").
		Select("r.id AS row_id, s.transaction_id, t.from_id AS transaction_from, s.to_id AS seller_id, t.created_at").
		Joins("JOIN sub_transactions s ON s.id = r.sub_transaction_id").
		Joins("JOIN transactions t ON t.id = s.transaction_id").
		Where("s.transaction_id IN ?", transactionIDs).
		Order("t.created_at ASC, t.seq ASC, r.id ASC").
		Scan(&contexts).Error; err != nil {
		return nil, err
	}
	return r.assembleRows(ctx, contexts)
}

func (r *GormTransactionRepository) assembleRows(ctx context.Context, contexts []rowContext) ([]ledger.UninvoicedRow, error) {
	if len(contexts) == 0 {
		return nil, nil
	}
	rowIDs := make([]uuid.UUID, len(contexts))
	for i, c := range contexts {
		rowIDs[i] = c.RowID
	}
	var rows []ledger.SubTransactionRow
	if err := r.db.WithContext(ctx).
		Where("id IN ?", rowIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]ledger.SubTransactionRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	result := make([]ledger.UninvoicedRow, 0, len(contexts))
	for _, c := range contexts {
		row, ok := byID[c.RowID]
		if !ok {
			return nil, shared.NewInvariantViolation("GormTransactionRepository.assembleRows",
				fmt.Sprintf("row %s vanished between join and load", c.RowID))
		}
		result = append(result, ledger.UninvoicedRow{
			Row:             row,
			TransactionID:   c.TransactionID,
			TransactionFrom: c.TransactionFrom,
			SellerID:        c.SellerID,
			CreatedAt:       c.CreatedAt,
		})
	}
	return result, nil
}

// MarkRowsInvoiced stamps the invoice reference on the given rows,
// failing if any of them is already invoiced
func (r *GormTransactionRepository) MarkRowsInvoiced(ctx context.Context, rowIDs []uuid.UUID, invoiceID uuid.UUID) error {
	if len(rowIDs) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&ledger.SubTransactionRow{}).
		Where("id IN ? AND invoice_id IS NULL", rowIDs).
		Update("invoice_id", invoiceID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != int64(len(rowIDs)) {
		return shared.NewDomainError("ROW_INVOICED",
			fmt.Sprintf("%d of %d rows are already settled by another invoice",
				int64(len(rowIDs))-result.RowsAffected, len(rowIDs)))
	}
	return nil
}

// ClearRowsInvoice nulls the invoice reference on all rows of an invoice
func (r *GormTransactionRepository) ClearRowsInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&ledger.SubTransactionRow{}).
		Where("invoice_id = ?", invoiceID).
		Update("invoice_id", nil).Error
}

// Ensure GormTransactionRepository implements TransactionRepository
var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
