package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	errx "github.com/bayti-store/server/internal/core/error"
	logx "github.com/bayti-store/server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Repository stores one cart per user.
type Repository interface {
	Load(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, userID string) error
}

// RedisCartRepository keeps each cart as a JSON document under cart:<userID>,
// with the TTL refreshed on every save.
type RedisCartRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisCartRepository(rdb redis.Cmdable, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisCartRepository) cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

// Load returns the stored cart, or a fresh empty one when none exists.
func (r *RedisCartRepository) Load(ctx context.Context, userID string) (*Cart, error) {
	key := r.cartKey(userID)

	raw, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return New(userID), nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load cart from redis")
		return nil, errx.WrapRedis(err)
	}

	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		logx.Error().Err(err).Str("userID", userID).Msg("failed to unmarshal cart")
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &c, nil
}

func (r *RedisCartRepository) Save(ctx context.Context, c *Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		logx.Error().Err(err).Str("userID", c.UserID).Msg("failed to marshal cart")
		return fmt.Errorf("marshal cart: %w", err)
	}
	key := r.cartKey(c.UserID)

	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save cart to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisCartRepository) Delete(ctx context.Context, userID string) error {
	key := r.cartKey(userID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete cart from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ Repository = (*RedisCartRepository)(nil)
