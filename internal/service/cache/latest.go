package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "coinlake:latest:"

// LatestCache keeps the most recent raw tick payload per product in Redis.
type LatestCache struct {
	cli *redis.Client
	ttl time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewLatestCache(cfg RedisConfig) *LatestCache {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &LatestCache{cli: rdb, ttl: cfg.TTL}
}

func (c *LatestCache) SetLatest(ctx context.Context, product string, payload []byte) error {
	return c.cli.Set(ctx, keyPrefix+product, payload, c.ttl).Err()
}

func (c *LatestCache) GetLatest(ctx context.Context, product string) ([]byte, bool, error) {
	b, err := c.cli.Get(ctx, keyPrefix+product).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (c *LatestCache) Close() error {
	return c.cli.Close()
}
