package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores raw oracle answers by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached response from Redis: %w", err)
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache response in Redis: %w", err)
	}
	return nil
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cached response from Redis: %w", err)
	}
	return nil
}

// Invalidator is implemented by clients that can drop a remembered answer,
// for example after it failed extraction.
type Invalidator interface {
	Invalidate(ctx context.Context, prompt string, opts ...CallOption) error
}

// CachedClient remembers answers for identical prompts and settings. Cache
// errors are logged and never fail a request.
type CachedClient struct {
	next   Client
	cache  Cache
	cfg    Config
	logger *zap.Logger
}

func NewCachedClient(next Client, cache Cache, cfg Config, logger *zap.Logger) *CachedClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedClient{next: next, cache: cache, cfg: cfg, logger: logger.Named("oracle.cache")}
}

type cachedResponse struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

func (c *CachedClient) Generate(ctx context.Context, prompt string, opts ...CallOption) (*Response, error) {
	key := c.key(prompt, opts)

	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache lookup failed", zap.Error(err))
	}
	if ok {
		var cr cachedResponse
		if err := json.Unmarshal(data, &cr); err == nil {
			return &Response{Text: cr.Text, Usage: cr.Usage, Cached: true}, nil
		}
		c.logger.Warn("discarding unreadable cache entry", zap.String("key", key))
	}

	resp, err := c.next.Generate(ctx, prompt, opts...)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(cachedResponse{Text: resp.Text, Usage: resp.Usage})
	if err == nil {
		err = c.cache.Set(ctx, key, data, c.cfg.CacheTTL)
	}
	if err != nil {
		c.logger.Warn("failed to cache oracle response", zap.Error(err))
	}
	return resp, nil
}

func (c *CachedClient) Invalidate(ctx context.Context, prompt string, opts ...CallOption) error {
	return c.cache.Del(ctx, c.key(prompt, opts))
}

func (c *CachedClient) Close() error {
	return c.next.Close()
}

func (c *CachedClient) key(prompt string, opts []CallOption) string {
	s := c.cfg.settings(opts)
	h := sha256.New()
	fmt.Fprintf(h, "%s|%g|%d|%d|%g|", c.cfg.Model, s.Temperature, s.MaxOutputTokens, s.TopK, s.TopP)
	h.Write([]byte(prompt))
	return "oracle:response:" + hex.EncodeToString(h.Sum(nil))
}
