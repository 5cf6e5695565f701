package persistence

import (
	"context"
	"errors"

	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransferRepository implements TransferRepository using GORM.
// Transfers are append-only; there is no update or delete path.
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByID finds a transfer by its ID
func (r *GormTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transfer, error) {
	var transfer ledger.Transfer
	if err := r.db.WithContext(ctx).First(&transfer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

// FindByUser lists transfers touching the user on either side
func (r *GormTransferRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]ledger.Transfer, error) {
	var transfers []ledger.Transfer
	query := r.db.WithContext(ctx).
		Where("from_id = ? OR to_id = ?", userID, userID).
		Order("created_at DESC, seq DESC")
	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if offset := filter.Offset(); offset > 0 {
			query = query.Offset(offset)
		}
	}
	if err := query.Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// FindByInvoice lists the settlement and reversal transfers of an invoice
func (r *GormTransferRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]ledger.Transfer, error) {
	var transfers []ledger.Transfer
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC, seq ASC").
		Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// Insert appends a transfer
func (r *GormTransferRepository) Insert(ctx context.Context, transfer *ledger.Transfer) error {
	return r.db.WithContext(ctx).Create(transfer).Error
}

// InsertBatch appends multiple transfers
func (r *GormTransferRepository) InsertBatch(ctx context.Context, transfers []*ledger.Transfer) error {
	if len(transfers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(transfers).Error
}

// Count counts transfers matching the filter
func (r *GormTransferRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&ledger.Transfer{})
	if userID, ok := filter.Filters["user_id"]; ok {
		query = query.Where("from_id = ? OR to_id = ?", userID, userID)
	}
	if invoiceID, ok := filter.Filters["invoice_id"]; ok {
		query = query.Where("invoice_id = ?", invoiceID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormTransferRepository implements TransferRepository
var _ ledger.TransferRepository = (*GormTransferRepository)(nil)
