package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/identity"
	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/bartab/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransactionService verifies and records purchase trees. Verification
// never trusts client-side totals: every denormalized sum is recomputed
// from pinned catalog prices and compared, so price tampering surfaces as
// a validation failure instead of silently repricing.
type TransactionService struct {
	transactionRepo ledger.TransactionRepository
	snapshotRepo    catalog.SnapshotRepository
	userRepo        identity.UserRepository
	scope           TransactionScope
	eventBus        shared.EventPublisher
	// balanceFloor is the lowest balance a purchase may leave behind;
	// negative floors extend credit
	balanceFloor valueobject.Money
	logger       *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactionRepo ledger.TransactionRepository,
	snapshotRepo catalog.SnapshotRepository,
	userRepo identity.UserRepository,
	scope TransactionScope,
	eventBus shared.EventPublisher,
	balanceFloor valueobject.Money,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		snapshotRepo:    snapshotRepo,
		userRepo:        userRepo,
		scope:           scope,
		eventBus:        eventBus,
		balanceFloor:    balanceFloor,
		logger:          logger,
	}
}

// Verify dry-runs a purchase: structure, pin membership, exact price
// recomputation and party checks, without touching the ledger
func (s *TransactionService) Verify(ctx context.Context, req CreateTransactionRequest) (*VerifyResponse, error) {
	if _, err := s.verify(ctx, req); err != nil {
		return nil, err
	}
	return &VerifyResponse{Valid: true}, nil
}

// Create verifies and records a purchase tree. The balance floor is
// re-checked inside the writing transaction.
func (s *TransactionService) Create(ctx context.Context, req CreateTransactionRequest) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "create",
		telemetry.AttrPointOfSaleID.String(req.PointOfSaleID.String()))
	defer span.End()

	tree, err := s.verify(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := s.checkFloor(ctx, repos, tree.FromID, tree.TotalPriceInclVat); err != nil {
			return err
		}
		if err := repos.TransactionRepo().Save(ctx, tree); err != nil {
			return fmt.Errorf("saving transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, ledger.NewTransactionCreatedEvent(tree))
	return toTransactionResponse(tree), nil
}

// Update replaces a purchase tree. Trees with invoiced rows are frozen
// and the update is rejected.
func (s *TransactionService) Update(ctx context.Context, id uuid.UUID, req CreateTransactionRequest) (*TransactionResponse, error) {
	existing, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.HasInvoicedRows() {
		return nil, shared.NewDomainError("ROW_INVOICED", "Transaction has invoiced rows and can no longer be changed")
	}

	tree, err := s.verify(ctx, req)
	if err != nil {
		return nil, err
	}
	// Keep identity and insertion order; only the subtree is replaced
	tree.BaseAggregateRoot = existing.BaseAggregateRoot
	tree.Seq = existing.Seq
	tree.IncrementVersion()

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		current, err := repos.TransactionRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if current.HasInvoicedRows() {
			return shared.NewDomainError("ROW_INVOICED", "Transaction has invoiced rows and can no longer be changed")
		}

		// The floor only has to cover the increase over the old total
		delta, err := tree.TotalPriceInclVat.Subtract(current.TotalPriceInclVat)
		if err != nil {
			return shared.NewDomainError("CURRENCY_MISMATCH", err.Error())
		}
		if delta.IsPositive() {
			if err := s.checkFloor(ctx, repos, tree.FromID, delta); err != nil {
				return err
			}
		}
		if err := repos.TransactionRepo().Save(ctx, tree); err != nil {
			return fmt.Errorf("replacing transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, ledger.NewTransactionUpdatedEvent(tree))
	return toTransactionResponse(tree), nil
}

// Delete removes a purchase tree. Trees with invoiced rows are rejected;
// the invoice has to be deleted first, which un-freezes the rows.
func (s *TransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	var tree *ledger.Transaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tree, err = repos.TransactionRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if tree.HasInvoicedRows() {
			return shared.NewDomainError("ROW_INVOICED", "Transaction has invoiced rows and cannot be deleted")
		}
		return repos.TransactionRepo().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, ledger.NewTransactionDeletedEvent(tree))
	return nil
}

// Get loads one purchase tree
func (s *TransactionService) Get(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	tree, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(tree), nil
}

// List returns a page of the paying user's transactions, newest first
func (s *TransactionService) List(ctx context.Context, fromID uuid.UUID, filter shared.Filter) (*shared.Paginated[TransactionResponse], error) {
	trees, err := s.transactionRepo.FindByFrom(ctx, fromID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.transactionRepo.CountByFrom(ctx, fromID)
	if err != nil {
		return nil, err
	}
	responses := make([]TransactionResponse, len(trees))
	for i := range trees {
		responses[i] = *toTransactionResponse(&trees[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// verify builds the domain tree from the request and runs the full
// validation pass: structure, parties, pins, exact prices
func (s *TransactionService) verify(ctx context.Context, req CreateTransactionRequest) (*ledger.Transaction, error) {
	tree := buildTree(req)
	if err := tree.ValidateStructure(); err != nil {
		return nil, err
	}
	if err := s.checkParties(ctx, tree); err != nil {
		return nil, err
	}

	snapshot, err := s.snapshotRepo.LoadSnapshot(ctx, tree.PosPin())
	if err != nil {
		return nil, err
	}
	if err := snapshot.ValidatePointOfSale(); err != nil {
		return nil, err
	}

	for i := range tree.SubTransactions {
		sub := &tree.SubTransactions[i]
		if _, err := snapshot.ValidateContainer(sub.ContainerPin()); err != nil {
			return nil, err
		}
		for j := range sub.Rows {
			row := &sub.Rows[j]
			revision, err := snapshot.ValidateProduct(sub.ContainerPin(), row.ProductPin())
			if err != nil {
				return nil, err
			}
			expected := revision.PriceInclVat.MultiplyInt(int64(row.Amount))
			if !row.TotalPriceInclVat.Equals(expected) {
				return nil, shared.NewDomainError("PRICE_MISMATCH",
					fmt.Sprintf("Row total %s for %s does not match %d x %s",
						row.TotalPriceInclVat, row.ProductPin(), row.Amount, revision.PriceInclVat))
			}
		}
	}
	return tree, nil
}

// checkParties requires every referenced user to exist, be active and not
// soft-deleted
func (s *TransactionService) checkParties(ctx context.Context, tree *ledger.Transaction) error {
	ids := []uuid.UUID{tree.FromID, tree.CreatedByID}
	for i := range tree.SubTransactions {
		ids = append(ids, tree.SubTransactions[i].ToID)
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	distinct := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			distinct = append(distinct, id)
		}
	}

	users, err := s.userRepo.FindByIDs(ctx, distinct)
	if err != nil {
		return fmt.Errorf("loading transaction parties: %w", err)
	}
	byID := make(map[uuid.UUID]*identity.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for _, id := range distinct {
		user, ok := byID[id]
		if !ok {
			return shared.NewDomainError("INVALID_PARTY", fmt.Sprintf("User %s does not exist", id))
		}
		if !user.CanParticipateInLedger() {
			return shared.NewDomainError("INVALID_PARTY", fmt.Sprintf("User %s is inactive or deleted", id))
		}
	}
	return nil
}

// checkFloor re-derives the payer's balance and rejects the spend if it
// would sink below the configured floor
func (s *TransactionService) checkFloor(ctx context.Context, repos TransactionalRepositories, fromID uuid.UUID, spend valueobject.Money) error {
	balance, err := repos.BalanceRepo().BalanceAsOf(ctx, fromID, time.Time{})
	if err != nil {
		return fmt.Errorf("deriving balance of %s: %w", fromID, err)
	}
	after, err := balance.Subtract(spend)
	if err != nil {
		return shared.NewDomainError("CURRENCY_MISMATCH", err.Error())
	}
	ok, err := after.GreaterThanOrEqual(s.balanceFloor)
	if err != nil {
		return shared.NewDomainError("CURRENCY_MISMATCH", err.Error())
	}
	if !ok {
		return shared.NewDomainError("INSUFFICIENT_BALANCE",
			fmt.Sprintf("Purchase of %s would put the balance below %s", spend, s.balanceFloor))
	}
	return nil
}

func (s *TransactionService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish ledger event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}

// buildTree converts the wire request into the domain tree, carrying the
// client-supplied totals for later comparison
func buildTree(req CreateTransactionRequest) *ledger.Transaction {
	currency := valueobject.Currency(req.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	money := func(amount int64) valueobject.Money {
		m, _ := valueobject.NewMoney(amount, currency)
		return m
	}

	subs := make([]ledger.SubTransaction, len(req.SubTransactions))
	for i, subReq := range req.SubTransactions {
		rows := make([]ledger.SubTransactionRow, len(subReq.Rows))
		for j, rowReq := range subReq.Rows {
			rows[j] = ledger.SubTransactionRow{
				BaseEntity:        shared.NewBaseEntity(),
				ProductID:         rowReq.ProductID,
				ProductRevision:   rowReq.ProductRevision,
				Amount:            rowReq.Amount,
				TotalPriceInclVat: money(rowReq.TotalPriceInclVat),
			}
		}
		subs[i] = ledger.SubTransaction{
			BaseEntity:        shared.NewBaseEntity(),
			ToID:              subReq.ToID,
			ContainerID:       subReq.ContainerID,
			ContainerRevision: subReq.ContainerRevision,
			TotalPriceInclVat: money(subReq.TotalPriceInclVat),
			Rows:              rows,
		}
	}
	return &ledger.Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FromID:            req.FromID,
		CreatedByID:       req.CreatedByID,
		PointOfSaleID:     req.PointOfSaleID,
		PosRevision:       req.PosRevision,
		TotalPriceInclVat: money(req.TotalPriceInclVat),
		SubTransactions:   subs,
	}
}
