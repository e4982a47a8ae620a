package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	logx "github.com/bayti-store/server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const listCacheKey = "catalog:visible"

// CachedStore is a read-through Redis cache in front of a Store. Only the
// visible-product list is cached; any admin write invalidates it. Cache
// failures degrade to the underlying store, they are never surfaced.
type CachedStore struct {
	Store
	rdb redis.Cmdable
	ttl time.Duration
}

func NewCachedStore(inner Store, rdb redis.Cmdable, ttl time.Duration) *CachedStore {
	return &CachedStore{Store: inner, rdb: rdb, ttl: ttl}
}

func (c *CachedStore) ListVisible(ctx context.Context) ([]Product, error) {
	raw, err := c.rdb.Get(ctx, listCacheKey).Result()
	if err == nil {
		var products []Product
		if err := json.Unmarshal([]byte(raw), &products); err == nil {
			return products, nil
		}
		logx.Warn().Msg("dropping unreadable catalog cache entry")
		_ = c.rdb.Del(ctx, listCacheKey).Err()
	} else if !errors.Is(err, redis.Nil) {
		logx.Warn().Err(err).Msg("catalog cache read failed, falling through")
	}

	products, err := c.Store.ListVisible(ctx)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(products); err == nil {
		if err := c.rdb.Set(ctx, listCacheKey, b, c.ttl).Err(); err != nil {
			logx.Warn().Err(err).Msg("catalog cache write failed")
		}
	}
	return products, nil
}

func (c *CachedStore) invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, listCacheKey).Err(); err != nil {
		logx.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

func (c *CachedStore) Create(ctx context.Context, p *Product) error {
	if err := c.Store.Create(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachedStore) Update(ctx context.Context, p *Product) error {
	if err := c.Store.Update(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachedStore) Delete(ctx context.Context, id string) error {
	if err := c.Store.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

var _ Store = (*CachedStore)(nil)
