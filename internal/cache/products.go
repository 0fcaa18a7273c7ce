// Package cache provides a Redis read-through layer over the product
// catalog. Only the full listing is cached: the order placement path always
// validates cart lines against the live repository, so a stale cache can
// never let an order reference a deleted product.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xenking/storefront-orders/internal/domain/product"
)

const (
	catalogKey = "catalog:products"
	catalogTTL = 5 * time.Minute
)

var _ product.Repository = (*ProductCache)(nil)

// ProductCache decorates a product.Repository with a Redis cache for List.
type ProductCache struct {
	inner product.Repository
	rdb   *redis.Client
}

// NewProductCache wraps the given repository with the Redis client.
func NewProductCache(inner product.Repository, rdb *redis.Client) *ProductCache {
	return &ProductCache{inner: inner, rdb: rdb}
}

// List serves the catalog from Redis when possible, falling back to the
// repository and repopulating the cache on a miss. Cache errors degrade to
// repository reads; they are logged, never surfaced.
func (c *ProductCache) List(ctx context.Context) ([]product.Product, error) {
	if raw, err := c.rdb.Get(ctx, catalogKey).Bytes(); err == nil {
		var products []product.Product
		if err := json.Unmarshal(raw, &products); err == nil {
			return products, nil
		}
		// Unreadable payload: fall through and overwrite it below.
	}

	products, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(products); err == nil {
		if err := c.rdb.Set(ctx, catalogKey, raw, catalogTTL).Err(); err != nil {
			zctx.From(ctx).Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

// GetByIDs always reads the live repository; see the package comment.
func (c *ProductCache) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	return c.inner.GetByIDs(ctx, ids)
}
