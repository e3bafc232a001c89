package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/haninggrk/livekenceng-bot-gacor/internal/domain"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/metrics"
)

const productSetsKey = "catalog:product_sets"

// CatalogCache is a read-through cache for product sets in front of the
// member API: Redis GET → member API → populate Redis. Redis trouble always
// falls through to the origin; the cache is an optimization, never a
// requirement.
type CatalogCache struct {
	rdb     goredis.Cmdable
	catalog domain.CatalogGateway
	ttl     time.Duration
}

// NewCatalogCache creates a read-through product-set cache with the given TTL.
func NewCatalogCache(rdb goredis.Cmdable, catalog domain.CatalogGateway, ttl time.Duration) *CatalogCache {
	return &CatalogCache{rdb: rdb, catalog: catalog, ttl: ttl}
}

// ProductSets returns the member's product sets, served from Redis when the
// cached copy is fresh.
func (c *CatalogCache) ProductSets(ctx context.Context) ([]domain.ProductSet, error) {
	data, err := c.rdb.Get(ctx, productSetsKey).Bytes()
	if err == nil {
		var sets []domain.ProductSet
		if err := json.Unmarshal(data, &sets); err != nil {
			slog.Warn("Failed to unmarshal cached product sets, falling through to member API", "error", err)
		} else {
			metrics.CatalogCacheHits.WithLabelValues("redis").Inc()
			return sets, nil
		}
	} else if !errors.Is(err, goredis.Nil) {
		slog.Warn("Redis catalog cache GET failed, falling through to member API", "error", err)
	}

	sets, err := c.catalog.ProductSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("product set lookup failed: %w", err)
	}
	metrics.CatalogCacheHits.WithLabelValues("origin").Inc()

	// Populate the cache (best-effort)
	if encoded, err := json.Marshal(sets); err == nil {
		if err := c.rdb.Set(ctx, productSetsKey, encoded, c.ttl).Err(); err != nil {
			slog.Warn("Failed to populate Redis catalog cache", "error", err)
		}
	}

	return sets, nil
}

// Invalidate drops the cached product sets so the next read hits the member
// API. Called on explicit operator refresh.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, productSetsKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	return nil
}

// ShopeeAccounts passes through to the member API; account lists are small
// and read rarely.
func (c *CatalogCache) ShopeeAccounts(ctx context.Context) ([]domain.ShopeeAccount, error) {
	return c.catalog.ShopeeAccounts(ctx)
}

// Niches passes through to the member API.
func (c *CatalogCache) Niches(ctx context.Context) ([]domain.Niche, error) {
	return c.catalog.Niches(ctx)
}
