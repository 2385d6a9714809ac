package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const scanBatch = 100

// Redis stores results in Redis under a key prefix, letting Redis expire them.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("cache get failed; treating as miss", zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) {
	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		r.logger.Warn("cache set failed", zap.Error(err))
	}
}

func (r *Redis) Invalidate(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.logger.Warn("cache invalidate failed", zap.Error(err))
	}
}

// InvalidateAll removes every key under the prefix.
func (r *Redis) InvalidateAll(ctx context.Context) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("cache scan failed", zap.Error(err))
		return
	}

	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		if err := r.client.Del(ctx, keys[start:end]...).Err(); err != nil {
			r.logger.Warn("cache flush failed", zap.Error(err))
			return
		}
	}
}
