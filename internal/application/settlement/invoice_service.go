package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/identity"
	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/settlement"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/bartab/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceRenderer turns a stored invoice into a printable document.
// Implemented in infrastructure/docs.
type InvoiceRenderer interface {
	// Render produces the invoice PDF
	Render(ctx context.Context, invoice *settlement.Invoice, debtor *identity.User) ([]byte, error)
}

// InvoiceService settles purchase rows into invoices and manages the
// invoice lifecycle. Creation and deletion both move money: creating a
// debit invoice credits the debtor for the invoiced total (the document
// is paid externally), deleting one writes the exact reversals and
// un-freezes the covered rows.
type InvoiceService struct {
	invoiceRepo settlement.InvoiceRepository
	userRepo    identity.UserRepository
	productRepo catalog.ProductRepository
	scope       TransactionScope
	eventBus    shared.EventPublisher
	renderer    InvoiceRenderer
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo settlement.InvoiceRepository,
	userRepo identity.UserRepository,
	productRepo catalog.ProductRepository,
	scope TransactionScope,
	eventBus shared.EventPublisher,
	renderer InvoiceRenderer,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		scope:       scope,
		eventBus:    eventBus,
		renderer:    renderer,
		logger:      logger,
	}
}

// CreateInvoice settles the debtor's un-invoiced rows into a new invoice.
// Row selection, the invoice, its settlement transfers and the row
// freezing all commit atomically under a per-debtor lock, so two
// concurrent invoices can never settle the same row twice.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create",
		telemetry.AttrUserID.String(req.ToID.String()))
	defer span.End()

	debtor, err := s.userRepo.FindByID(ctx, req.ToID)
	if err != nil {
		return nil, fmt.Errorf("loading debtor %s: %w", req.ToID, err)
	}
	if debtor.Deleted {
		return nil, shared.NewDomainError("INVALID_PARTY", "Cannot invoice a deleted user")
	}

	var (
		invoice   *settlement.Invoice
		transfers []*ledger.Transfer
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.LockDebtor(ctx, req.ToID); err != nil {
			return fmt.Errorf("locking debtor %s: %w", req.ToID, err)
		}

		rows, err := s.resolveRows(ctx, repos, req)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return shared.NewDomainError("EMPTY_INVOICE", "No un-invoiced rows to settle")
		}

		entries, total, err := s.buildEntries(ctx, rows)
		if err != nil {
			return err
		}

		invoice, err = settlement.NewInvoice(req.ToID, req.CreatedByID,
			req.Addressee, req.Description, req.Reference, req.Credit)
		if err != nil {
			return err
		}
		invoice.SetEntries(entries, total)
		if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
			return fmt.Errorf("saving invoice: %w", err)
		}

		transfers, err = settlementTransfers(invoice, rows, total)
		if err != nil {
			return err
		}
		if err := repos.TransferRepo().InsertBatch(ctx, transfers); err != nil {
			return fmt.Errorf("writing settlement transfers: %w", err)
		}

		rowIDs := make([]uuid.UUID, len(rows))
		for i := range rows {
			rowIDs[i] = rows[i].Row.ID
		}
		return repos.TransactionRepo().MarkRowsInvoiced(ctx, rowIDs, invoice.ID)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	for _, t := range transfers {
		s.publish(ctx, ledger.NewTransferCreatedEvent(t))
	}
	s.logger.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("debtor_id", req.ToID.String()),
		zap.Bool("credit", req.Credit),
		zap.Int64("total", invoice.Total.Amount()))
	return toInvoiceResponse(invoice), nil
}

// resolveRows selects the rows the invoice will settle. Selection runs
// inside the locked transaction, so the un-invoiced filter is consistent
// with the freeze that follows.
func (s *InvoiceService) resolveRows(ctx context.Context, repos TransactionalRepositories,
	req CreateInvoiceRequest) ([]ledger.UninvoicedRow, error) {
	if len(req.TransactionIDs) > 0 {
		all, err := repos.TransactionRepo().FindRowsByTransactionIDs(ctx, req.TransactionIDs)
		if err != nil {
			return nil, err
		}
		rows := make([]ledger.UninvoicedRow, 0, len(all))
		for _, r := range all {
			if r.TransactionFrom == req.ToID && !r.Row.IsInvoiced() {
				rows = append(rows, r)
			}
		}
		return rows, nil
	}

	since := time.Time{}
	if req.FromDate != nil {
		since = *req.FromDate
	} else {
		latest, err := repos.InvoiceRepo().LatestCreationTime(ctx, req.ToID)
		switch {
		case err == nil:
			since = latest
		case errors.Is(err, shared.ErrNotFound):
			// first invoice for this debtor, take all time
		default:
			return nil, err
		}
	}
	return repos.TransactionRepo().FindUninvoicedRows(ctx, req.ToID, since)
}

// buildEntries aggregates rows per pinned product revision. The entry
// snapshot (name, unit price, VAT) comes from the immutable revision the
// rows were bought at.
func (s *InvoiceService) buildEntries(ctx context.Context,
	rows []ledger.UninvoicedRow) ([]settlement.InvoiceEntry, valueobject.Money, error) {
	type key struct {
		productID uuid.UUID
		revision  int
	}
	index := make(map[key]int)
	var entries []settlement.InvoiceEntry

	for i := range rows {
		row := &rows[i].Row
		k := key{row.ProductID, row.ProductRevision}
		if at, ok := index[k]; ok {
			entries[at].Amount += row.Amount
			continue
		}
		rev, err := s.productRepo.FindRevision(ctx, row.ProductPin())
		if err != nil {
			return nil, valueobject.Money{}, fmt.Errorf("loading product revision %s@%d: %w",
				row.ProductID, row.ProductRevision, err)
		}
		index[k] = len(entries)
		entries = append(entries, settlement.InvoiceEntry{
			BaseEntity:      shared.NewBaseEntity(),
			ProductID:       row.ProductID,
			ProductRevision: row.ProductRevision,
			Description:     rev.Name,
			Amount:          row.Amount,
			PriceInclVat:    rev.PriceInclVat,
			VatPercentage:   rev.VatPercentage,
		})
	}

	total := valueobject.ZeroEUR()
	for i := range entries {
		line := entries[i].LineTotal()
		if i == 0 {
			total = line
			continue
		}
		summed, err := total.Add(line)
		if err != nil {
			return nil, valueobject.Money{}, err
		}
		total = summed
	}
	return entries, total, nil
}

// settlementTransfers builds the money movements an invoice implies. A
// debit invoice credits the debtor once for the total; a credit invoice
// debits each distinct selling user for their share.
func settlementTransfers(invoice *settlement.Invoice, rows []ledger.UninvoicedRow,
	total valueobject.Money) ([]*ledger.Transfer, error) {
	if !invoice.Credit {
		t, err := ledger.NewTransfer(nil, &invoice.ToID, total,
			"Settlement of invoice "+invoice.Reference)
		if err != nil {
			return nil, err
		}
		t.InvoiceID = &invoice.ID
		return []*ledger.Transfer{t}, nil
	}

	shares := make(map[uuid.UUID]valueobject.Money)
	order := make([]uuid.UUID, 0)
	for i := range rows {
		seller := rows[i].SellerID
		rowTotal := rows[i].Row.TotalPriceInclVat
		if share, ok := shares[seller]; ok {
			summed, err := share.Add(rowTotal)
			if err != nil {
				return nil, err
			}
			shares[seller] = summed
			continue
		}
		shares[seller] = rowTotal
		order = append(order, seller)
	}

	transfers := make([]*ledger.Transfer, 0, len(order))
	for _, seller := range order {
		sellerID := seller
		t, err := ledger.NewTransfer(&sellerID, nil, shares[seller],
			"Payout of invoice "+invoice.Reference)
		if err != nil {
			return nil, err
		}
		t.InvoiceID = &invoice.ID
		transfers = append(transfers, t)
	}
	return transfers, nil
}

// UpdateInvoiceState moves the invoice through its lifecycle. Reaching
// DELETED reverses every settlement transfer and un-freezes the covered
// rows in the same transaction, so the round trip restores all balances.
func (s *InvoiceService) UpdateInvoiceState(ctx context.Context, id uuid.UUID, req UpdateInvoiceStateRequest) (*InvoiceResponse, error) {
	var (
		invoice   *settlement.Invoice
		reversals []*ledger.Transfer
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := invoice.TransitionTo(req.State, req.ChangedBy); err != nil {
			return err
		}

		if req.State == settlement.InvoiceStateDeleted {
			originals, err := repos.TransferRepo().FindByInvoice(ctx, id)
			if err != nil {
				return err
			}
			reversals = make([]*ledger.Transfer, len(originals))
			for i := range originals {
				reversals[i] = originals[i].Reversal("Reversal of invoice " + invoice.Reference)
			}
			if err := repos.TransferRepo().InsertBatch(ctx, reversals); err != nil {
				return fmt.Errorf("writing reversal transfers: %w", err)
			}
			if err := repos.TransactionRepo().ClearRowsInvoice(ctx, id); err != nil {
				return fmt.Errorf("releasing invoiced rows: %w", err)
			}
		}

		return repos.InvoiceRepo().Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	for _, t := range reversals {
		s.publish(ctx, ledger.NewTransferCreatedEvent(t))
	}
	if req.State == settlement.InvoiceStateDeleted {
		s.logger.Info("invoice deleted",
			zap.String("invoice_id", id.String()),
			zap.Int("reversals", len(reversals)))
	}
	return toInvoiceResponse(invoice), nil
}

// UpdateInvoice edits the document fields while the invoice is still
// mutable
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	var invoice *settlement.Invoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := invoice.UpdateDetails(req.Addressee, req.Description); err != nil {
			return err
		}
		return repos.InvoiceRepo().Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// GetInvoice loads one invoice with entries and status history
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// ListInvoices lists invoices, optionally narrowed to one debtor
func (s *InvoiceService) ListInvoices(ctx context.Context, debtorID *uuid.UUID, filter shared.Filter) (*shared.Paginated[InvoiceResponse], error) {
	var (
		invoices []settlement.Invoice
		err      error
	)
	if debtorID != nil {
		invoices, err = s.invoiceRepo.FindByDebtor(ctx, *debtorID, filter)
	} else {
		invoices, err = s.invoiceRepo.FindAll(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	total, err := s.invoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = *toInvoiceResponse(&invoices[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// RenderInvoice produces the printable PDF of an invoice
func (s *InvoiceService) RenderInvoice(ctx context.Context, id uuid.UUID) ([]byte, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	debtor, err := s.userRepo.FindByID(ctx, invoice.ToID)
	if err != nil {
		return nil, fmt.Errorf("loading debtor %s: %w", invoice.ToID, err)
	}
	return s.renderer.Render(ctx, invoice, debtor)
}

func (s *InvoiceService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish settlement event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}
