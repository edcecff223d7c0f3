// Package rediscache decorates the product repository with a read-through
// Redis cache for the public catalog endpoints. Admin writes invalidate by
// key prefix; everything degrades to the underlying repository when Redis
// is unreachable.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nbenali/dz-storefront/internal/domain/product"
)

const (
	keyList = "catalog:list:%s" // filter fingerprint
	keySlug = "catalog:slug:%s"

	// Short TTL: stock and prices move with every order, so the cache only
	// absorbs read bursts, it is not a source of truth.
	defaultTTL = 2 * time.Minute
)

var _ product.Repository = (*ProductCache)(nil)

// ProductCache wraps a product.Repository with cache-aside reads.
type ProductCache struct {
	next   product.Repository
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache decorates next with a Redis cache.
func NewProductCache(next product.Repository, client *redis.Client) *ProductCache {
	return &ProductCache{
		next:   next,
		client: client,
		ttl:    defaultTTL,
	}
}

// List serves catalog pages from the cache when possible.
func (c *ProductCache) List(ctx context.Context, f product.ListFilter) (*product.Page, error) {
	key := fmt.Sprintf(keyList, filterKey(f))

	var page product.Page
	if hit := c.get(ctx, key, &page); hit {
		return &page, nil
	}

	fresh, err := c.next.List(ctx, f)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, fresh)
	return fresh, nil
}

// GetBySlug serves the product page read from the cache when possible.
func (c *ProductCache) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	key := fmt.Sprintf(keySlug, slug)

	var p product.Product
	if hit := c.get(ctx, key, &p); hit {
		return &p, nil
	}

	fresh, err := c.next.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, fresh)
	return fresh, nil
}

// GetByID is not cached: the checkout path must read live stock and prices.
func (c *ProductCache) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return c.next.GetByID(ctx, id)
}

// GetByIDs is not cached for the same reason as GetByID.
func (c *ProductCache) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	return c.next.GetByIDs(ctx, ids)
}

// Create writes through and invalidates catalog reads.
func (c *ProductCache) Create(ctx context.Context, p *product.Product) error {
	if err := c.next.Create(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Update writes through and invalidates catalog reads.
func (c *ProductCache) Update(ctx context.Context, id string, upd product.Update) (*product.Product, error) {
	p, err := c.next.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return p, nil
}

// Delete writes through and invalidates catalog reads.
func (c *ProductCache) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *ProductCache) get(ctx context.Context, key string, dest any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zctx.From(ctx).Debug("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		zctx.From(ctx).Debug("cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *ProductCache) set(ctx context.Context, key string, val any) {
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		zctx.From(ctx).Debug("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate drops every catalog key. SCAN keeps Redis responsive on larger
// keyspaces; the catalog prefix is small anyway.
func (c *ProductCache) invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, "catalog:*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		zctx.From(ctx).Debug("cache scan failed", zap.Error(err))
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			zctx.From(ctx).Debug("cache invalidate failed", zap.Error(err))
		}
	}
}

func filterKey(f product.ListFilter) string {
	return fmt.Sprintf("%s|%s|%d|%d|%t|%s|%d|%d",
		f.Category, f.Subcategory, f.PriceMinDa, f.PriceMaxDa, f.Featured,
		f.Sort, f.Page, f.PageSize)
}
