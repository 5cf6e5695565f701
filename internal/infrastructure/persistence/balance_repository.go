package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBalanceRepository derives balances by summing the append-only
// ledger. Nothing is stored: a balance is always the four sums below over
// the rows that exist at query time.
type GormBalanceRepository struct {
	db       *gorm.DB
	currency valueobject.Currency
}

// NewGormBalanceRepository creates a new GormBalanceRepository. All sums
// are denominated in the given ledger currency.
func NewGormBalanceRepository(db *gorm.DB, currency valueobject.Currency) *GormBalanceRepository {
	return &GormBalanceRepository{db: db, currency: currency}
}

// createdUpTo applies the as-of cutoff. The zero time means "now" and
// adds no predicate, so every existing row counts.
func createdUpTo(query *gorm.DB, column string, asOf time.Time) *gorm.DB {
	if asOf.IsZero() {
		return query
	}
	return query.Where(column+" <= ?", asOf)
}

// BalanceAsOf computes the user's net position at the given instant:
// transfers in minus transfers out, plus sub-transaction value received
// minus transaction value spent, each created at or before asOf.
func (r *GormBalanceRepository) BalanceAsOf(ctx context.Context, userID uuid.UUID, asOf time.Time) (valueobject.Money, error) {
	var total int64

	var transfersIn int64
	query := r.db.WithContext(ctx).
		Model(&ledger.Transfer{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("to_id = ?", userID)
	if err := createdUpTo(query, "created_at", asOf).Scan(&transfersIn).Error; err != nil {
		return valueobject.Money{}, err
	}
	total += transfersIn

	var transfersOut int64
	query = r.db.WithContext(ctx).
		Model(&ledger.Transfer{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("from_id = ?", userID)
	if err := createdUpTo(query, "created_at", asOf).Scan(&transfersOut).Error; err != nil {
		return valueobject.Money{}, err
	}
	total -= transfersOut

	var received int64
	query = r.db.WithContext(ctx).
		Table("sub_transactions AS s").
		Select("COALESCE(SUM(s.total_price_incl_vat), 0)").
		Joins("JOIN transactions t ON t.id = s.transaction_id").
		Where("s.to_id = ?", userID)
	if err := createdUpTo(query, "t.created_at", asOf).Scan(&received).Error; err != nil {
		return valueobject.Money{}, err
	}
	total += received

	var spent int64
	query = r.db.WithContext(ctx).
		Model(&ledger.Transaction{}).
		Select("COALESCE(SUM(total_price_incl_vat), 0)").
		Where("from_id = ?", userID)
	if err := createdUpTo(query, "created_at", asOf).Scan(&spent).Error; err != nil {
		return valueobject.Money{}, err
	}
	total -= spent

	return valueobject.NewMoney(total, r.currency)
}

// LastMovement returns the most recent transaction or transfer touching
// the user
func (r *GormBalanceRepository) LastMovement(ctx context.Context, userID uuid.UUID) (*ledger.Movement, error) {
	var latest *ledger.Movement

	var transaction ledger.Transaction
	err := r.db.WithContext(ctx).
		Where("from_id = ?", userID).
		Order("created_at DESC, seq DESC").
		First(&transaction).Error
	switch {
	case err == nil:
		latest = &ledger.Movement{
			Kind:      ledger.MovementTransaction,
			ID:        transaction.ID,
			Seq:       transaction.Seq,
			CreatedAt: transaction.CreatedAt,
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	// A transaction only spends; value received arrives per sub-transaction
	var sub struct {
		ID            uuid.UUID
		TransactionID uuid.UUID
		Seq           int64
		CreatedAt     time.Time
	}
	err = r.db.WithContext(ctx).
		Table("sub_transactions AS s").
		Select("s.id, s.transaction_id, t.seq, t.created_at").
		Joins("JOIN transactions t ON t.id = s.transaction_id").
		Where("s.to_id = ?", userID).
		Order("t.created_at DESC, t.seq DESC").
		Limit(1).
		Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.TransactionID != uuid.Nil {
		candidate := &ledger.Movement{
			Kind:      ledger.MovementTransaction,
			ID:        sub.TransactionID,
			Seq:       sub.Seq,
			CreatedAt: sub.CreatedAt,
		}
		latest = laterMovement(latest, candidate)
	}

	var transfer ledger.Transfer
	err = r.db.WithContext(ctx).
		Where("from_id = ? OR to_id = ?", userID, userID).
		Order("created_at DESC, seq DESC").
		First(&transfer).Error
	switch {
	case err == nil:
		candidate := &ledger.Movement{
			Kind:      ledger.MovementTransfer,
			ID:        transfer.ID,
			Seq:       transfer.Seq,
			CreatedAt: transfer.CreatedAt,
		}
		latest = laterMovement(latest, candidate)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if latest == nil {
		return nil, shared.ErrNotFound
	}
	return latest, nil
}

// laterMovement picks the more recent of two movements. Seq decides
// equal timestamps only within one kind; transactions and transfers draw
// from independent sequences, so a cross-kind timestamp tie keeps the
// first candidate.
func laterMovement(a, b *ledger.Movement) *ledger.Movement {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.CreatedAt.After(a.CreatedAt) {
		return b
	}
	if b.CreatedAt.Equal(a.CreatedAt) && b.Kind == a.Kind && b.Seq > a.Seq {
		return b
	}
	return a
}

// Ensure GormBalanceRepository implements BalanceRepository
var _ ledger.BalanceRepository = (*GormBalanceRepository)(nil)
