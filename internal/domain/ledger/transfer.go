package ledger

import (
	"time"

	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Transfer is an atomic signed monetary movement between at most one
// paying and at most one receiving user. One side may be absent: a
// one-sided transfer represents an external deposit or withdrawal and is
// the only way money legitimately enters or leaves the ledger.
//
// Transfers are never mutated. Undoing one means writing an exactly
// reversing Transfer next to it.
type Transfer struct {
	shared.BaseAggregateRoot
	Seq         int64             `gorm:"autoIncrement;uniqueIndex"`
	FromID      *uuid.UUID        `gorm:"type:uuid;index"`
	ToID        *uuid.UUID        `gorm:"type:uuid;index"`
	Amount      valueobject.Money `gorm:"type:bigint;not null"`
	Description string            `gorm:"type:varchar(255)"`
	// InvoiceID links settlement and reversal transfers to their invoice
	InvoiceID *uuid.UUID `gorm:"type:uuid;index"`
	// VoucherGroupID links pre-funding and adjustment transfers to their
	// voucher group
	VoucherGroupID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Transfer) TableName() string {
	return "transfers"
}

// NewTransfer creates a transfer between two users or one user and the
// outside world
func NewTransfer(from, to *uuid.UUID, amount valueobject.Money, description string) (*Transfer, error) {
	if from == nil && to == nil {
		return nil, shared.NewDomainError("INVALID_TRANSFER", "A transfer needs at least one party")
	}
	if from != nil && to != nil && *from == *to {
		return nil, shared.NewDomainError("INVALID_TRANSFER", "A transfer cannot pay its own sender")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_TRANSFER", "Transfer amount must be positive; reverse direction instead of sign")
	}
	return &Transfer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FromID:            from,
		ToID:              to,
		Amount:            amount,
		Description:       description,
	}, nil
}

// IsExternal reports whether the transfer crosses the ledger boundary
// (deposit or withdrawal)
func (t *Transfer) IsExternal() bool {
	return t.FromID == nil || t.ToID == nil
}

// SignedExternalAmount returns the amount this transfer moves into (+) or
// out of (-) the ledger as a whole; zero for internal transfers. Used by
// the conservation check: the sum of all balances always equals the sum
// of these.
func (t *Transfer) SignedExternalAmount() valueobject.Money {
	switch {
	case t.FromID == nil && t.ToID != nil:
		return t.Amount
	case t.ToID == nil && t.FromID != nil:
		return t.Amount.Negate()
	default:
		return valueobject.Zero(t.Amount.Currency())
	}
}

// Reversal creates the transfer that exactly undoes this one. The pair
// stays in the ledger as an auditable trail.
func (t *Transfer) Reversal(description string) *Transfer {
	reversal := &Transfer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FromID:            t.ToID,
		ToID:              t.FromID,
		Amount:            t.Amount,
		Description:       description,
		InvoiceID:         t.InvoiceID,
		VoucherGroupID:    t.VoucherGroupID,
	}
	return reversal
}

// MovementKind distinguishes the two balance-affecting record types
type MovementKind string

const (
	// MovementTransaction is a purchase tree
	MovementTransaction MovementKind = "transaction"
	// MovementTransfer is an explicit transfer
	MovementTransfer MovementKind = "transfer"
)

// Movement is the lightweight projection of the most recent ledger
// activity of a user, used by settlement to decide "since the last
// invoice". Equal timestamps are tie-broken by the higher Seq, i.e.
// insertion order, not timestamp precision.
type Movement struct {
	Kind      MovementKind
	ID        uuid.UUID
	Seq       int64
	CreatedAt time.Time
}
