package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bartab/backend/internal/domain/settlement"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM. Entry
// and status rows are append-only: Save inserts the ones it has not seen
// and never updates an existing row.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID loads an invoice with entries and status history
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Invoice, error) {
	var invoice settlement.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Entries").
		Preload("Statuses", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByDebtor lists a debtor's invoices, newest first
func (r *GormInvoiceRepository) FindByDebtor(ctx context.Context, debtorID uuid.UUID, filter shared.Filter) ([]settlement.Invoice, error) {
	var invoices []settlement.Invoice
	query := r.applySearch(r.db.WithContext(ctx).Model(&settlement.Invoice{}), filter).
		Preload("Entries").
		Where("to_id = ?", debtorID)
	query = applyFilter(query, filter, InvoiceSortFields, "created_at")
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindAll lists invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]settlement.Invoice, error) {
	var invoices []settlement.Invoice
	query := r.applySearch(r.db.WithContext(ctx).Model(&settlement.Invoice{}), filter).
		Preload("Entries")
	query = applyFilter(query, filter, InvoiceSortFields, "created_at")
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// LatestCreationTime returns the creation time of the debtor's most
// recent non-deleted invoice
func (r *GormInvoiceRepository) LatestCreationTime(ctx context.Context, debtorID uuid.UUID) (time.Time, error) {
	var invoice settlement.Invoice
	if err := r.db.WithContext(ctx).
		Select("created_at").
		Where("to_id = ? AND current_state <> ?", debtorID, settlement.InvoiceStateDeleted).
		Order("created_at DESC").
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, shared.ErrNotFound
		}
		return time.Time{}, err
	}
	return invoice.CreatedAt, nil
}

// Save persists the invoice with its entries and statuses
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *settlement.Invoice) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(invoice).Error; err != nil {
		return err
	}
	if len(invoice.Entries) > 0 {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&invoice.Entries).Error; err != nil {
			return err
		}
	}
	if len(invoice.Statuses) > 0 {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&invoice.Statuses).Error; err != nil {
			return err
		}
	}
	return nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&settlement.Invoice{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInvoiceRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("(reference ILIKE ? OR addressee ILIKE ?)", pattern, pattern)
	}
	if state, ok := filter.Filters["state"]; ok {
		query = query.Where("current_state = ?", state)
	}
	if credit, ok := filter.Filters["credit"]; ok {
		query = query.Where("credit = ?", credit)
	}
	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ settlement.InvoiceRepository = (*GormInvoiceRepository)(nil)
