package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/bartab/backend/internal/domain/ledger"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBalanceServiceBalance(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("cache hit skips derivation for the current balance", func(t *testing.T) {
		balanceRepo := new(MockBalanceRepository)
		cache := new(MockBalanceCache)
		service := NewBalanceService(balanceRepo, cache, zap.NewNop())

		cache.On("Get", ctx, userID).Return(valueobject.NewMoneyEUR(320), true, nil)
		balanceRepo.On("LastMovement", ctx, userID).Return(nil, shared.ErrNotFound)

		resp, err := service.Balance(ctx, userID, time.Time{})

		require.NoError(t, err)
		assert.Equal(t, int64(320), resp.Balance)
		balanceRepo.AssertNotCalled(t, "BalanceAsOf", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache miss derives and stores", func(t *testing.T) {
		balanceRepo := new(MockBalanceRepository)
		cache := new(MockBalanceCache)
		service := NewBalanceService(balanceRepo, cache, zap.NewNop())

		cache.On("Get", ctx, userID).Return(valueobject.Money{}, false, nil)
		balanceRepo.On("BalanceAsOf", ctx, userID, time.Time{}).Return(valueobject.NewMoneyEUR(-120), nil)
		cache.On("Set", ctx, userID, valueobject.NewMoneyEUR(-120)).Return(nil)
		balanceRepo.On("LastMovement", ctx, userID).Return(nil, shared.ErrNotFound)

		resp, err := service.Balance(ctx, userID, time.Time{})

		require.NoError(t, err)
		assert.Equal(t, int64(-120), resp.Balance)
		cache.AssertExpectations(t)
	})

	t.Run("historical instants always recompute and never cache", func(t *testing.T) {
		balanceRepo := new(MockBalanceRepository)
		cache := new(MockBalanceCache)
		service := NewBalanceService(balanceRepo, cache, zap.NewNop())

		asOf := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		balanceRepo.On("BalanceAsOf", ctx, userID, asOf).Return(valueobject.NewMoneyEUR(75), nil)
		balanceRepo.On("LastMovement", ctx, userID).Return(nil, shared.ErrNotFound)

		resp, err := service.Balance(ctx, userID, asOf)

		require.NoError(t, err)
		assert.Equal(t, int64(75), resp.Balance)
		assert.Equal(t, asOf, resp.AsOf)
		cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("includes the last movement", func(t *testing.T) {
		balanceRepo := new(MockBalanceRepository)
		service := NewBalanceService(balanceRepo, nil, zap.NewNop())

		movedAt := time.Date(2026, 5, 2, 21, 15, 0, 0, time.UTC)
		balanceRepo.On("BalanceAsOf", ctx, userID, time.Time{}).Return(valueobject.NewMoneyEUR(50), nil)
		balanceRepo.On("LastMovement", ctx, userID).Return(&ledger.Movement{
			Kind:      ledger.MovementTransfer,
			ID:        uuid.New(),
			Seq:       42,
			CreatedAt: movedAt,
		}, nil)

		resp, err := service.Balance(ctx, userID, time.Time{})

		require.NoError(t, err)
		require.NotNil(t, resp.LastMovementAt)
		assert.Equal(t, movedAt, *resp.LastMovementAt)
		assert.Equal(t, string(ledger.MovementTransfer), resp.LastMovementKind)
	})

	t.Run("degrades gracefully on cache failure", func(t *testing.T) {
		balanceRepo := new(MockBalanceRepository)
		cache := new(MockBalanceCache)
		service := NewBalanceService(balanceRepo, cache, zap.NewNop())

		cache.On("Get", ctx, userID).Return(valueobject.Money{}, false, assert.AnError)
		balanceRepo.On("BalanceAsOf", ctx, userID, time.Time{}).Return(valueobject.NewMoneyEUR(10), nil)
		cache.On("Set", ctx, userID, valueobject.NewMoneyEUR(10)).Return(nil)
		balanceRepo.On("LastMovement", ctx, userID).Return(nil, shared.ErrNotFound)

		resp, err := service.Balance(ctx, userID, time.Time{})

		require.NoError(t, err)
		assert.Equal(t, int64(10), resp.Balance)
	})
}
