package cachesvc

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/mbatrack/core"
)

const (
	keyPrefix = "mbatrack:view:"
	viewTTL   = time.Hour
)

// RedisCache is a ViewCache shared between app instances.
type RedisCache struct {
	rdb *redis.Client
}

var _ core.ViewCache = (*RedisCache)(nil)

// NewRedisCache connects to the redis server at url (redis://...).
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}
	rdb := redis.NewClient(opts)
	if err = rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &RedisCache{rdb: rdb}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "getting view")
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte) error {
	return errors.Wrap(c.rdb.Set(ctx, keyPrefix+key, data, viewTTL).Err(), "setting view")
}

func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, keyPrefix+key)
	}
	return errors.Wrap(c.rdb.Del(ctx, prefixed...).Err(), "invalidating views")
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
