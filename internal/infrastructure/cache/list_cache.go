package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/paysentinel/transfer-risk-backend/internal/infrastructure/config"
)

// Payee list cache keys
const (
	BlacklistKey = "tre:list:blacklist" // Set of blocked payee ids
	WhitelistKey = "tre:list:whitelist" // Set of trusted payee ids
)

// ListLookupTimeout bounds a single membership lookup. The scoring service
// degrades to "unknown" on failure, so a slow Redis must not stall scoring.
const ListLookupTimeout = 50 * time.Millisecond

// ListCacheMetrics tracks lookup outcomes.
type ListCacheMetrics struct {
	Lookups int64 `json:"lookups"`
	Hits    int64 `json:"hits"`
	Errors  int64 `json:"errors"`
}

// PayeeListCache answers blacklist/whitelist membership from Redis sets.
// The admin system owns the sets; this cache only reads them.
type PayeeListCache struct {
	client  *redis.Client
	logger  *zap.Logger
	mu      sync.Mutex
	metrics ListCacheMetrics
}

// NewPayeeListCache connects to Redis and verifies the connection.
func NewPayeeListCache(cfg *config.RedisConfig, logger *zap.Logger) (*PayeeListCache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &PayeeListCache{client: client, logger: logger}, nil
}

// NewPayeeListCacheWithClient wraps an existing client; used by tests.
func NewPayeeListCacheWithClient(client *redis.Client, logger *zap.Logger) *PayeeListCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayeeListCache{client: client, logger: logger}
}

func (c *PayeeListCache) IsBlacklisted(ctx context.Context, payeeID string) (bool, error) {
	return c.isMember(ctx, BlacklistKey, payeeID)
}

func (c *PayeeListCache) IsWhitelisted(ctx context.Context, payeeID string) (bool, error) {
	return c.isMember(ctx, WhitelistKey, payeeID)
}

func (c *PayeeListCache) isMember(ctx context.Context, key, payeeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, ListLookupTimeout)
	defer cancel()

	member, err := c.client.SIsMember(ctx, key, payeeID).Result()

	c.mu.Lock()
	c.metrics.Lookups++
	if err != nil {
		c.metrics.Errors++
	} else if member {
		c.metrics.Hits++
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("list membership lookup failed",
			zap.String("key", key),
			zap.String("payee_id", payeeID),
			zap.Error(err))
		return false, fmt.Errorf("list lookup %s: %w", key, err)
	}
	return member, nil
}

// AddToBlacklist and friends exist for operational tooling and tests; the
// scoring path never writes.
func (c *PayeeListCache) AddToBlacklist(ctx context.Context, payeeID string) error {
	return c.client.SAdd(ctx, BlacklistKey, payeeID).Err()
}

func (c *PayeeListCache) RemoveFromBlacklist(ctx context.Context, payeeID string) error {
	return c.client.SRem(ctx, BlacklistKey, payeeID).Err()
}

func (c *PayeeListCache) AddToWhitelist(ctx context.Context, payeeID string) error {
	return c.client.SAdd(ctx, WhitelistKey, payeeID).Err()
}

func (c *PayeeListCache) RemoveFromWhitelist(ctx context.Context, payeeID string) error {
	return c.client.SRem(ctx, WhitelistKey, payeeID).Err()
}

// Metrics returns a snapshot of lookup counters.
func (c *PayeeListCache) Metrics() ListCacheMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

// Close releases the Redis connection.
func (c *PayeeListCache) Close() error {
	return c.client.Close()
}
