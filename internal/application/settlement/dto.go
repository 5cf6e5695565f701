package settlement

import (
	"time"

	"github.com/bartab/backend/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest settles a pool of un-invoiced purchase rows into
// one invoice. Rows are selected either explicitly by transaction IDs or
// implicitly as everything un-invoiced since FromDate; a nil FromDate
// defaults to the debtor's latest non-deleted invoice.
type CreateInvoiceRequest struct {
	ToID        uuid.UUID `json:"to_id" binding:"required"`
	CreatedByID uuid.UUID `json:"created_by_id" binding:"required"`
	Addressee   string    `json:"addressee" binding:"required,min=1,max=128"`
	Description string    `json:"description" binding:"max=255"`
	Reference   string    `json:"reference" binding:"max=64"`
	// Credit marks a seller payout: settlement is split per distinct
	// selling user instead of crediting the debtor
	Credit         bool        `json:"credit"`
	TransactionIDs []uuid.UUID `json:"transaction_ids"`
	FromDate       *time.Time  `json:"from_date"`
}

// UpdateInvoiceRequest edits document fields while the invoice is still
// mutable
type UpdateInvoiceRequest struct {
	Addressee   string `json:"addressee" binding:"required,min=1,max=128"`
	Description string `json:"description" binding:"max=255"`
}

// UpdateInvoiceStateRequest moves the invoice through its lifecycle
type UpdateInvoiceStateRequest struct {
	State     settlement.InvoiceState `json:"state" binding:"required"`
	ChangedBy uuid.UUID               `json:"changed_by" binding:"required"`
}

// InvoiceEntryResponse is one aggregated product line
type InvoiceEntryResponse struct {
	ProductID       uuid.UUID       `json:"product_id"`
	ProductRevision int             `json:"product_revision"`
	Description     string          `json:"description"`
	Amount          int             `json:"amount"`
	PriceInclVat    int64           `json:"price_incl_vat"`
	VatPercentage   decimal.Decimal `json:"vat_percentage"`
	LineTotal       int64           `json:"line_total"`
}

// InvoiceStatusResponse is one state-history row
type InvoiceStatusResponse struct {
	State       settlement.InvoiceState `json:"state"`
	ChangedByID uuid.UUID               `json:"changed_by_id"`
	CreatedAt   time.Time               `json:"created_at"`
}

// InvoiceResponse represents an invoice
type InvoiceResponse struct {
	ID           uuid.UUID               `json:"id"`
	ToID         uuid.UUID               `json:"to_id"`
	CreatedByID  uuid.UUID               `json:"created_by_id"`
	Addressee    string                  `json:"addressee"`
	Description  string                  `json:"description"`
	Reference    string                  `json:"reference"`
	Credit       bool                    `json:"credit"`
	CurrentState settlement.InvoiceState `json:"current_state"`
	Total        int64                   `json:"total"`
	Currency     string                  `json:"currency"`
	Entries      []InvoiceEntryResponse  `json:"entries"`
	Statuses     []InvoiceStatusResponse `json:"statuses"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
	Version      int                     `json:"version"`
}

// CreateVoucherGroupRequest creates a batch of pre-funded accounts
type CreateVoucherGroupRequest struct {
	Name            string    `json:"name" binding:"required,min=1,max=64"`
	ActiveStartDate time.Time `json:"active_start_date" binding:"required"`
	ActiveEndDate   time.Time `json:"active_end_date" binding:"required"`
	// Balance is the pre-funded amount per member, in minor units
	Balance  int64  `json:"balance" binding:"min=0"`
	Currency string `json:"currency" binding:"omitempty,currency"`
	Amount   int    `json:"amount" binding:"required,min=1"`
}

// UpdateVoucherGroupRequest adjusts a voucher group. Balance changes are
// applied to every existing member as a corrective transfer of the
// difference; the member count may only grow.
type UpdateVoucherGroupRequest struct {
	Name            string    `json:"name" binding:"required,min=1,max=64"`
	ActiveStartDate time.Time `json:"active_start_date" binding:"required"`
	ActiveEndDate   time.Time `json:"active_end_date" binding:"required"`
	Balance         int64     `json:"balance" binding:"min=0"`
	Currency        string    `json:"currency" binding:"omitempty,currency"`
	Amount          int       `json:"amount" binding:"required,min=1"`
}

// IssuedVoucher pairs a member account with its redemption code. The
// plaintext code exists only in this response; the stored form is a
// bcrypt hash.
type IssuedVoucher struct {
	UserID uuid.UUID `json:"user_id"`
	Code   string    `json:"code"`
}

// VoucherGroupResponse represents a voucher group
type VoucherGroupResponse struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	ActiveStartDate time.Time   `json:"active_start_date"`
	ActiveEndDate   time.Time   `json:"active_end_date"`
	Balance         int64       `json:"balance"`
	Currency        string      `json:"currency"`
	Amount          int         `json:"amount"`
	UserIDs         []uuid.UUID `json:"user_ids"`
	// Vouchers is only populated on creation and growth, for the newly
	// issued codes
	Vouchers  []IssuedVoucher `json:"vouchers,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int             `json:"version"`
}

func toInvoiceResponse(inv *settlement.Invoice) *InvoiceResponse {
	entries := make([]InvoiceEntryResponse, len(inv.Entries))
	for i := range inv.Entries {
		e := &inv.Entries[i]
		entries[i] = InvoiceEntryResponse{
			ProductID:       e.ProductID,
			ProductRevision: e.ProductRevision,
			Description:     e.Description,
			Amount:          e.Amount,
			PriceInclVat:    e.PriceInclVat.Amount(),
			VatPercentage:   e.VatPercentage,
			LineTotal:       e.LineTotal().Amount(),
		}
	}
	statuses := make([]InvoiceStatusResponse, len(inv.Statuses))
	for i := range inv.Statuses {
		s := &inv.Statuses[i]
		statuses[i] = InvoiceStatusResponse{
			State:       s.State,
			ChangedByID: s.ChangedByID,
			CreatedAt:   s.CreatedAt,
		}
	}
	return &InvoiceResponse{
		ID:           inv.ID,
		ToID:         inv.ToID,
		CreatedByID:  inv.CreatedByID,
		Addressee:    inv.Addressee,
		Description:  inv.Description,
		Reference:    inv.Reference,
		Credit:       inv.Credit,
		CurrentState: inv.CurrentState,
		Total:        inv.Total.Amount(),
		Currency:     string(inv.Total.Currency()),
		Entries:      entries,
		Statuses:     statuses,
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
		Version:      inv.Version,
	}
}

func toVoucherGroupResponse(g *settlement.VoucherGroup, vouchers []IssuedVoucher) *VoucherGroupResponse {
	return &VoucherGroupResponse{
		ID:              g.ID,
		Name:            g.Name,
		ActiveStartDate: g.ActiveStartDate,
		ActiveEndDate:   g.ActiveEndDate,
		Balance:         g.BalancePerUser.Amount(),
		Currency:        string(g.BalancePerUser.Currency()),
		Amount:          g.Amount,
		UserIDs:         g.UserIDs(),
		Vouchers:        vouchers,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
		Version:         g.Version,
	}
}
