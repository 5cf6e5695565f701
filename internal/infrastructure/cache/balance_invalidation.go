package cache

import (
	"context"

	appledger "github.com/bartab/backend/internal/application/ledger"
	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BalanceInvalidationHandler drops cached balances when a ledger event
// reports that they moved. Subscribed to all balance-affecting event
// types on the in-process bus.
type BalanceInvalidationHandler struct {
	cache  appledger.BalanceCache
	logger *zap.Logger
}

// NewBalanceInvalidationHandler creates a new BalanceInvalidationHandler
func NewBalanceInvalidationHandler(cache appledger.BalanceCache, logger *zap.Logger) *BalanceInvalidationHandler {
	return &BalanceInvalidationHandler{
		cache:  cache,
		logger: logger,
	}
}

// Handle processes a ledger event by invalidating every affected user
func (h *BalanceInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	users := affectedUsers(event)
	if len(users) == 0 {
		return nil
	}
	if err := h.cache.Invalidate(ctx, users...); err != nil {
		h.logger.Warn("failed to invalidate cached balances",
			zap.String("event_type", event.EventType()),
			zap.Int("users", len(users)),
			zap.Error(err))
		return err
	}
	return nil
}

// EventTypes returns the balance-affecting ledger event types
func (h *BalanceInvalidationHandler) EventTypes() []string {
	return []string{
		ledger.TransactionCreatedEventType,
		ledger.TransactionUpdatedEventType,
		ledger.TransactionDeletedEventType,
		ledger.TransferCreatedEventType,
	}
}

func affectedUsers(event shared.DomainEvent) []uuid.UUID {
	switch e := event.(type) {
	case *ledger.TransactionCreatedEvent:
		return e.AffectedUsers
	case *ledger.TransactionUpdatedEvent:
		return e.AffectedUsers
	case *ledger.TransactionDeletedEvent:
		return e.AffectedUsers
	case *ledger.TransferCreatedEvent:
		return e.AffectedUsers
	}
	return nil
}

// Ensure BalanceInvalidationHandler implements EventHandler
var _ shared.EventHandler = (*BalanceInvalidationHandler)(nil)
