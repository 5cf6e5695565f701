package settlement

import (
	"context"
	"time"

	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository defines persistence for invoices
type InvoiceRepository interface {
	// FindByID loads an invoice with entries and status history
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByDebtor lists a debtor's invoices, newest first
	FindByDebtor(ctx context.Context, debtorID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// FindAll lists invoices matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)

	// LatestCreationTime returns the creation time of the debtor's most
	// recent non-deleted invoice; shared.ErrNotFound if none exists.
	LatestCreationTime(ctx context.Context, debtorID uuid.UUID) (time.Time, error)

	// Save persists the invoice with its entries and statuses
	Save(ctx context.Context, invoice *Invoice) error

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// VoucherGroupRepository defines persistence for voucher groups
type VoucherGroupRepository interface {
	// FindByID loads a group with its membership rows
	FindByID(ctx context.Context, id uuid.UUID) (*VoucherGroup, error)

	// FindAll lists groups matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]VoucherGroup, error)

	// FindExpired lists groups whose active window closed at or before
	// the given instant
	FindExpired(ctx context.Context, asOf time.Time) ([]VoucherGroup, error)

	// Save persists the group and its membership rows
	Save(ctx context.Context, group *VoucherGroup) error

	// Count counts groups matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
