package ledger

import (
	"time"

	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/google/uuid"
)

// RowRequest is one product line of a purchase. The client supplies the
// pinned revision and the total it believes is right; both are verified
// against the catalog, never corrected.
type RowRequest struct {
	ProductID       uuid.UUID `json:"product_id" binding:"required"`
	ProductRevision int       `json:"product_revision" binding:"required,min=1"`
	Amount          int       `json:"amount" binding:"required,min=1"`
	// TotalPriceInclVat is amount times the pinned revision's unit price,
	// in minor units
	TotalPriceInclVat int64 `json:"total_price_incl_vat"`
}

// SubTransactionRequest is the per-seller split of a purchase
type SubTransactionRequest struct {
	ToID              uuid.UUID    `json:"to_id" binding:"required"`
	ContainerID       uuid.UUID    `json:"container_id" binding:"required"`
	ContainerRevision int          `json:"container_revision" binding:"required,min=1"`
	TotalPriceInclVat int64        `json:"total_price_incl_vat"`
	Rows              []RowRequest `json:"rows" binding:"required,min=1,dive"`
}

// CreateTransactionRequest is a full purchase tree as submitted by a
// point-of-sale client
type CreateTransactionRequest struct {
	FromID            uuid.UUID               `json:"from_id" binding:"required"`
	CreatedByID       uuid.UUID               `json:"created_by_id" binding:"required"`
	PointOfSaleID     uuid.UUID               `json:"point_of_sale_id" binding:"required"`
	PosRevision       int                     `json:"pos_revision" binding:"required,min=1"`
	TotalPriceInclVat int64                   `json:"total_price_incl_vat"`
	Currency          string                  `json:"currency" binding:"omitempty,currency"`
	SubTransactions   []SubTransactionRequest `json:"sub_transactions" binding:"required,min=1,dive"`
}

// RowResponse represents one persisted row
type RowResponse struct {
	ID                uuid.UUID  `json:"id"`
	ProductID         uuid.UUID  `json:"product_id"`
	ProductRevision   int        `json:"product_revision"`
	Amount            int        `json:"amount"`
	TotalPriceInclVat int64      `json:"total_price_incl_vat"`
	InvoiceID         *uuid.UUID `json:"invoice_id,omitempty"`
}

// SubTransactionResponse represents one persisted sub-transaction
type SubTransactionResponse struct {
	ID                uuid.UUID     `json:"id"`
	ToID              uuid.UUID     `json:"to_id"`
	ContainerID       uuid.UUID     `json:"container_id"`
	ContainerRevision int           `json:"container_revision"`
	TotalPriceInclVat int64         `json:"total_price_incl_vat"`
	Rows              []RowResponse `json:"rows"`
}

// TransactionResponse represents a persisted purchase tree
type TransactionResponse struct {
	ID                uuid.UUID                `json:"id"`
	FromID            uuid.UUID                `json:"from_id"`
	CreatedByID       uuid.UUID                `json:"created_by_id"`
	PointOfSaleID     uuid.UUID                `json:"point_of_sale_id"`
	PosRevision       int                      `json:"pos_revision"`
	TotalPriceInclVat int64                    `json:"total_price_incl_vat"`
	Currency          string                   `json:"currency"`
	SubTransactions   []SubTransactionResponse `json:"sub_transactions"`
	CreatedAt         time.Time                `json:"created_at"`
}

// VerifyResponse is the outcome of a dry-run validation
type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// BalanceResponse is a user's derived net position together with the
// most recent ledger activity
type BalanceResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Balance  int64     `json:"balance"`
	Currency string    `json:"currency"`
	AsOf     time.Time `json:"as_of"`
	// LastMovementAt is the timestamp of the newest transaction or
	// transfer touching the user; nil for a user with no activity
	LastMovementAt   *time.Time `json:"last_movement_at,omitempty"`
	LastMovementKind string     `json:"last_movement_kind,omitempty"`
}

// TransferResponse represents one transfer
type TransferResponse struct {
	ID             uuid.UUID  `json:"id"`
	FromID         *uuid.UUID `json:"from_id,omitempty"`
	ToID           *uuid.UUID `json:"to_id,omitempty"`
	Amount         int64      `json:"amount"`
	Currency       string     `json:"currency"`
	Description    string     `json:"description"`
	InvoiceID      *uuid.UUID `json:"invoice_id,omitempty"`
	VoucherGroupID *uuid.UUID `json:"voucher_group_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toRowResponse(row *ledger.SubTransactionRow) RowResponse {
	return RowResponse{
		ID:                row.ID,
		ProductID:         row.ProductID,
		ProductRevision:   row.ProductRevision,
		Amount:            row.Amount,
		TotalPriceInclVat: row.TotalPriceInclVat.Amount(),
		InvoiceID:         row.InvoiceID,
	}
}

func toTransactionResponse(t *ledger.Transaction) *TransactionResponse {
	subs := make([]SubTransactionResponse, len(t.SubTransactions))
	for i := range t.SubTransactions {
		sub := &t.SubTransactions[i]
		rows := make([]RowResponse, len(sub.Rows))
		for j := range sub.Rows {
			rows[j] = toRowResponse(&sub.Rows[j])
		}
		subs[i] = SubTransactionResponse{
			ID:                sub.ID,
			ToID:              sub.ToID,
			ContainerID:       sub.ContainerID,
			ContainerRevision: sub.ContainerRevision,
			TotalPriceInclVat: sub.TotalPriceInclVat.Amount(),
			Rows:              rows,
		}
	}
	return &TransactionResponse{
		ID:                t.ID,
		FromID:            t.FromID,
		CreatedByID:       t.CreatedByID,
		PointOfSaleID:     t.PointOfSaleID,
		PosRevision:       t.PosRevision,
		TotalPriceInclVat: t.TotalPriceInclVat.Amount(),
		Currency:          string(t.TotalPriceInclVat.Currency()),
		SubTransactions:   subs,
		CreatedAt:         t.CreatedAt,
	}
}

func toTransferResponse(t *ledger.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:             t.ID,
		FromID:         t.FromID,
		ToID:           t.ToID,
		Amount:         t.Amount.Amount(),
		Currency:       string(t.Amount.Currency()),
		Description:    t.Description,
		InvoiceID:      t.InvoiceID,
		VoucherGroupID: t.VoucherGroupID,
		CreatedAt:      t.CreatedAt,
	}
}
