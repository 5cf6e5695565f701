package settlement

import (
	"time"

	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceState is one station in an invoice's lifecycle
type InvoiceState string

const (
	// InvoiceStateCreated is the initial state
	InvoiceStateCreated InvoiceState = "CREATED"
	// InvoiceStateSent means the document went out to the debtor
	InvoiceStateSent InvoiceState = "SENT"
	// InvoiceStatePaid means the debtor settled the document externally
	InvoiceStatePaid InvoiceState = "PAID"
	// InvoiceStateDeleted is terminal; reaching it reverses the
	// settlement transfers and un-freezes the covered rows
	InvoiceStateDeleted InvoiceState = "DELETED"
)

// IsValid returns true for a known state
func (s InvoiceState) IsValid() bool {
	switch s {
	case InvoiceStateCreated, InvoiceStateSent, InvoiceStatePaid, InvoiceStateDeleted:
		return true
	}
	return false
}

// legalTransitions is the forward chain; DELETED is reachable from any
// non-terminal state
var legalTransitions = map[InvoiceState]InvoiceState{
	InvoiceStateCreated: InvoiceStateSent,
	InvoiceStateSent:    InvoiceStatePaid,
}

// Invoice converts a pool of purchases into explicit Transfers and
// freezes the covered ledger rows. It references transactions (via the
// invoice back-reference on their rows) but never owns them. Deleting an
// invoice is the single permitted mutation of a closed ledger object and
// works entirely through compensating records.
type Invoice struct {
	shared.BaseAggregateRoot
	// ToID is the debtor whose purchases are being settled
	ToID        uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedByID uuid.UUID `gorm:"type:uuid;not null"`
	Addressee   string    `gorm:"type:varchar(128);not null"`
	Description string    `gorm:"type:varchar(255)"`
	Reference   string    `gorm:"type:varchar(64)"`
	// Credit marks a seller-payout invoice: the settlement is split per
	// distinct selling user instead of one transfer to the creditor
	Credit       bool              `gorm:"not null;default:false"`
	CurrentState InvoiceState      `gorm:"type:varchar(16);not null;index"`
	Total        valueobject.Money `gorm:"type:bigint;not null"`

	Entries  []InvoiceEntry  `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Statuses []InvoiceStatus `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an invoice in state CREATED with its initial status
// row
func NewInvoice(toID, createdByID uuid.UUID, addressee, description, reference string, credit bool) (*Invoice, error) {
	if addressee == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESSEE", "Invoice addressee cannot be empty")
	}
	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ToID:              toID,
		CreatedByID:       createdByID,
		Addressee:         addressee,
		Description:       description,
		Reference:         reference,
		Credit:            credit,
		CurrentState:      InvoiceStateCreated,
		Total:             valueobject.ZeroEUR(),
	}
	inv.Statuses = append(inv.Statuses, newInvoiceStatus(inv.ID, InvoiceStateCreated, createdByID))
	return inv, nil
}

// CanTransitionTo reports whether the state change is legal
func (i *Invoice) CanTransitionTo(next InvoiceState) bool {
	if !next.IsValid() {
		return false
	}
	if i.CurrentState == InvoiceStateDeleted {
		return false
	}
	if next == InvoiceStateDeleted {
		return true
	}
	return legalTransitions[i.CurrentState] == next
}

// TransitionTo moves the invoice to the next state, appending a status
// history row. The caller is responsible for the ledger side effects of
// reaching DELETED.
func (i *Invoice) TransitionTo(next InvoiceState, changedBy uuid.UUID) error {
	if !i.CanTransitionTo(next) {
		return shared.NewDomainError("INVALID_STATE",
			"Invoice cannot move from "+string(i.CurrentState)+" to "+string(next))
	}
	i.CurrentState = next
	i.Statuses = append(i.Statuses, newInvoiceStatus(i.ID, next, changedBy))
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// IsMutable reports whether addressee and description edits are still
// allowed
func (i *Invoice) IsMutable() bool {
	return i.CurrentState == InvoiceStateCreated || i.CurrentState == InvoiceStateSent
}

// UpdateDetails edits the document fields while the invoice is still
// mutable
func (i *Invoice) UpdateDetails(addressee, description string) error {
	if !i.IsMutable() {
		return shared.NewDomainError("INVALID_STATE",
			"Invoice in state "+string(i.CurrentState)+" can no longer be edited")
	}
	if addressee == "" {
		return shared.NewDomainError("INVALID_ADDRESSEE", "Invoice addressee cannot be empty")
	}
	i.Addressee = addressee
	i.Description = description
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// SetEntries attaches the per-product aggregation and the resulting total
func (i *Invoice) SetEntries(entries []InvoiceEntry, total valueobject.Money) {
	for idx := range entries {
		entries[idx].InvoiceID = i.ID
	}
	i.Entries = entries
	i.Total = total
}

// InvoiceEntry is one per-product aggregate line of an invoice, a
// denormalized snapshot of what was settled
type InvoiceEntry struct {
	shared.BaseEntity
	InvoiceID       uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null"`
	ProductRevision int       `gorm:"not null"`
	Description     string    `gorm:"type:varchar(128);not null"`
	Amount          int       `gorm:"not null"`
	// PriceInclVat is the unit price of the pinned product revision
	PriceInclVat  valueobject.Money `gorm:"type:bigint;not null"`
	VatPercentage decimal.Decimal   `gorm:"type:decimal(5,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceEntry) TableName() string {
	return "invoice_entries"
}

// BeforeUpdate blocks writes against persisted entry rows; entries are a
// settlement snapshot
func (e *InvoiceEntry) BeforeUpdate(*gorm.DB) error {
	return shared.NewInvariantViolation("InvoiceEntry.BeforeUpdate",
		"invoice entry rows are append-only")
}

// LineTotal returns unit price times amount
func (e *InvoiceEntry) LineTotal() valueobject.Money {
	return e.PriceInclVat.MultiplyInt(int64(e.Amount))
}

// InvoiceStatus is one row of the invoice's state history
type InvoiceStatus struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	State       InvoiceState `gorm:"type:varchar(16);not null"`
	ChangedByID uuid.UUID    `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (InvoiceStatus) TableName() string {
	return "invoice_statuses"
}

func newInvoiceStatus(invoiceID uuid.UUID, state InvoiceState, changedBy uuid.UUID) InvoiceStatus {
	return InvoiceStatus{
		BaseEntity:  shared.NewBaseEntity(),
		InvoiceID:   invoiceID,
		State:       state,
		ChangedByID: changedBy,
	}
}
