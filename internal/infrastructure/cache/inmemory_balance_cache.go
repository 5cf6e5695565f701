package cache

import (
	"context"
	"sync"
	"time"

	appledger "github.com/bartab/backend/internal/application/ledger"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// InMemoryBalanceCache implements BalanceCache with a process-local map.
// It serves single-instance deployments and tests; clustered deployments
// use the Redis cache so every instance sees the same invalidations.
type InMemoryBalanceCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]balanceEntry
	ttl     time.Duration
}

type balanceEntry struct {
	balance   valueobject.Money
	expiresAt time.Time
}

// NewInMemoryBalanceCache creates a new in-memory balance cache
func NewInMemoryBalanceCache(ttl time.Duration) *InMemoryBalanceCache {
	if ttl <= 0 {
		ttl = defaultBalanceTTL
	}
	return &InMemoryBalanceCache{
		entries: make(map[uuid.UUID]balanceEntry),
		ttl:     ttl,
	}
}

// Get returns the cached current balance, reporting a miss via ok
func (c *InMemoryBalanceCache) Get(_ context.Context, userID uuid.UUID) (valueobject.Money, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok {
		return valueobject.Money{}, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, userID)
		c.mu.Unlock()
		return valueobject.Money{}, false, nil
	}
	return entry.balance, true, nil
}

// Set stores the current balance
func (c *InMemoryBalanceCache) Set(_ context.Context, userID uuid.UUID, balance valueobject.Money) error {
	c.mu.Lock()
	c.entries[userID] = balanceEntry{
		balance:   balance,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
	return nil
}

// Invalidate drops the cached balances of the given users
func (c *InMemoryBalanceCache) Invalidate(_ context.Context, userIDs ...uuid.UUID) error {
	c.mu.Lock()
	for _, id := range userIDs {
		delete(c.entries, id)
	}
	c.mu.Unlock()
	return nil
}

// Ensure InMemoryBalanceCache implements BalanceCache
var _ appledger.BalanceCache = (*InMemoryBalanceCache)(nil)
