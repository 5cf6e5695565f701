package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BalanceCache caches current balances. Implementations live in
// infrastructure/cache; invalidation is driven by ledger domain events.
type BalanceCache interface {
	// Get returns the cached current balance, reporting a miss via ok
	Get(ctx context.Context, userID uuid.UUID) (balance valueobject.Money, ok bool, err error)
	// Set stores the current balance
	Set(ctx context.Context, userID uuid.UUID, balance valueobject.Money) error
	// Invalidate drops the cached balances of the given users
	Invalidate(ctx context.Context, userIDs ...uuid.UUID) error
}

// BalanceService derives user balances from the append-only ledger.
// Balances are never stored as authoritative state; the cache only ever
// holds the "now" value and historical instants always recompute.
type BalanceService struct {
	balanceRepo ledger.BalanceRepository
	cache       BalanceCache
	logger      *zap.Logger
}

// NewBalanceService creates a new BalanceService. The cache may be nil,
// in which case every read recomputes.
func NewBalanceService(balanceRepo ledger.BalanceRepository, cache BalanceCache, logger *zap.Logger) *BalanceService {
	return &BalanceService{
		balanceRepo: balanceRepo,
		cache:       cache,
		logger:      logger,
	}
}

// Balance returns the user's net position at the given instant. A zero
// asOf means "now" and may be served from the cache.
func (s *BalanceService) Balance(ctx context.Context, userID uuid.UUID, asOf time.Time) (*BalanceResponse, error) {
	balance, err := s.balanceAt(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}

	resp := &BalanceResponse{
		UserID:   userID,
		Balance:  balance.Amount(),
		Currency: string(balance.Currency()),
		AsOf:     asOf,
	}
	if asOf.IsZero() {
		resp.AsOf = time.Now()
	}

	movement, err := s.balanceRepo.LastMovement(ctx, userID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		// no ledger activity yet
	case err != nil:
		return nil, fmt.Errorf("loading last movement of %s: %w", userID, err)
	default:
		resp.LastMovementAt = &movement.CreatedAt
		resp.LastMovementKind = string(movement.Kind)
	}
	return resp, nil
}

// LastMovement returns the newest transaction or transfer touching the
// user, ties broken by insertion order
func (s *BalanceService) LastMovement(ctx context.Context, userID uuid.UUID) (*ledger.Movement, error) {
	return s.balanceRepo.LastMovement(ctx, userID)
}

func (s *BalanceService) balanceAt(ctx context.Context, userID uuid.UUID, asOf time.Time) (valueobject.Money, error) {
	if asOf.IsZero() && s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.Warn("balance cache read failed", zap.String("user_id", userID.String()), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	balance, err := s.balanceRepo.BalanceAsOf(ctx, userID, asOf)
	if err != nil {
		return valueobject.Money{}, fmt.Errorf("deriving balance of %s: %w", userID, err)
	}

	if asOf.IsZero() && s.cache != nil {
		if err := s.cache.Set(ctx, userID, balance); err != nil {
			s.logger.Warn("balance cache write failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	return balance, nil
}
