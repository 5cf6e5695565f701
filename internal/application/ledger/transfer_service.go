package ledger

import (
	"context"
	"fmt"

	"github.com/bartab/backend/internal/domain/identity"
	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateTransferRequest moves money between two accounts, or across the
// ledger boundary when one side is omitted (deposit/withdrawal)
type CreateTransferRequest struct {
	FromID      *uuid.UUID `json:"from_id"`
	ToID        *uuid.UUID `json:"to_id"`
	Amount      int64      `json:"amount" binding:"required,min=1"`
	Currency    string     `json:"currency" binding:"omitempty,currency"`
	Description string     `json:"description" binding:"max=255"`
}

// TransferService records explicit transfers: member deposits,
// withdrawals, and manual corrections. Settlement and voucher transfers
// are written by their own services.
type TransferService struct {
	transferRepo ledger.TransferRepository
	userRepo     identity.UserRepository
	scope        TransactionScope
	eventBus     shared.EventPublisher
	logger       *zap.Logger
}

// NewTransferService creates a new TransferService
func NewTransferService(
	transferRepo ledger.TransferRepository,
	userRepo identity.UserRepository,
	scope TransactionScope,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		transferRepo: transferRepo,
		userRepo:     userRepo,
		scope:        scope,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// Create appends a transfer after validating both parties
func (s *TransferService) Create(ctx context.Context, req CreateTransferRequest) (*TransferResponse, error) {
	currency := valueobject.Currency(req.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	amount, err := valueobject.NewMoney(req.Amount, currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	transfer, err := ledger.NewTransfer(req.FromID, req.ToID, amount, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.checkParty(ctx, req.FromID); err != nil {
		return nil, err
	}
	if err := s.checkParty(ctx, req.ToID); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.TransferRepo().Insert(ctx, transfer)
	})
	if err != nil {
		return nil, fmt.Errorf("inserting transfer: %w", err)
	}

	if s.eventBus != nil {
		if err := s.eventBus.Publish(ctx, ledger.NewTransferCreatedEvent(transfer)); err != nil {
			s.logger.Warn("failed to publish transfer event", zap.Error(err))
		}
	}
	return toTransferResponse(transfer), nil
}

// Get loads one transfer
func (s *TransferService) Get(ctx context.Context, id uuid.UUID) (*TransferResponse, error) {
	transfer, err := s.transferRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTransferResponse(transfer), nil
}

// ListByUser returns a page of transfers touching the user on either side
func (s *TransferService) ListByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[TransferResponse], error) {
	transfers, err := s.transferRepo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.transferRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]TransferResponse, len(transfers))
	for i := range transfers {
		responses[i] = *toTransferResponse(&transfers[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *TransferService) checkParty(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	user, err := s.userRepo.FindByID(ctx, *id)
	if err != nil {
		return err
	}
	if !user.CanParticipateInLedger() {
		return shared.NewDomainError("INVALID_PARTY", fmt.Sprintf("User %s is inactive or deleted", *id))
	}
	return nil
}
