package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appledger "github.com/bartab/backend/internal/application/ledger"
	"github.com/bartab/backend/internal/domain/shared/valueobject"
	"github.com/bartab/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// defaultBalanceTTL bounds staleness if an invalidation is ever missed;
// the event-driven invalidator is the primary freshness mechanism
const defaultBalanceTTL = 15 * time.Minute

// RedisBalanceCache implements BalanceCache using Redis
type RedisBalanceCache struct {
	client     *redis.Client
	ownsClient bool
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisBalanceCacheOption is a functional option for configuring the cache
type RedisBalanceCacheOption func(*RedisBalanceCache)

// WithBalanceTTL sets the entry lifetime
func WithBalanceTTL(ttl time.Duration) RedisBalanceCacheOption {
	return func(c *RedisBalanceCache) {
		c.ttl = ttl
	}
}

// WithBalanceCacheLogger sets the logger for the cache
func WithBalanceCacheLogger(logger *zap.Logger) RedisBalanceCacheOption {
	return func(c *RedisBalanceCache) {
		c.logger = logger
	}
}

// NewRedisBalanceCache creates a new Redis-backed balance cache
func NewRedisBalanceCache(cfg config.RedisConfig, opts ...RedisBalanceCacheOption) (*RedisBalanceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisBalanceCache{
		client:     client,
		ownsClient: true,
		ttl:        defaultBalanceTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisBalanceCacheWithClient creates a cache with an existing Redis
// client. The caller retains ownership of the client.
func NewRedisBalanceCacheWithClient(client *redis.Client, opts ...RedisBalanceCacheOption) *RedisBalanceCache {
	cache := &RedisBalanceCache{
		client:     client,
		ownsClient: false,
		ttl:        defaultBalanceTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

func balanceCacheKey(userID uuid.UUID) string {
	return "balance:" + userID.String()
}

// Get returns the cached current balance, reporting a miss via ok
func (c *RedisBalanceCache) Get(ctx context.Context, userID uuid.UUID) (valueobject.Money, bool, error) {
	data, err := c.client.Get(ctx, balanceCacheKey(userID)).Bytes()
	if err == redis.Nil {
		return valueobject.Money{}, false, nil
	}
	if err != nil {
		return valueobject.Money{}, false, fmt.Errorf("failed to get balance from cache: %w", err)
	}

	var balance valueobject.Money
	if err := json.Unmarshal(data, &balance); err != nil {
		// A corrupt entry is treated as a miss and dropped
		c.logger.Warn("dropping unreadable balance cache entry",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		c.client.Del(ctx, balanceCacheKey(userID))
		return valueobject.Money{}, false, nil
	}
	return balance, true, nil
}

// Set stores the current balance
func (c *RedisBalanceCache) Set(ctx context.Context, userID uuid.UUID, balance valueobject.Money) error {
	data, err := json.Marshal(balance)
	if err != nil {
		return fmt.Errorf("failed to marshal balance: %w", err)
	}
	return c.client.Set(ctx, balanceCacheKey(userID), data, c.ttl).Err()
}

// Invalidate drops the cached balances of the given users
func (c *RedisBalanceCache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = balanceCacheKey(id)
	}
	return c.client.Del(ctx, keys...).Err()
}

// Close releases the Redis client if this cache owns it
func (c *RedisBalanceCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// Ensure RedisBalanceCache implements BalanceCache
var _ appledger.BalanceCache = (*RedisBalanceCache)(nil)
