package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"
)

// QueryCacheConfig configures the orchestrator's result cache.
type QueryCacheConfig struct {
	Enabled   bool
	TTL       time.Duration
	KeyPrefix string
}

// DefaultQueryCacheConfig mirrors the teacher's cache defaults, TTL tuned
// to this spec's default (10 minutes).
func DefaultQueryCacheConfig() *QueryCacheConfig {
	return &QueryCacheConfig{Enabled: true, TTL: 10 * time.Minute, KeyPrefix: "netrag:query:"}
}

// QueryCache caches rendered Response values by normalized query + flags,
// adapted from the teacher's Redis-backed QueryCache (internal/rag/biz/cache.go).
type QueryCache struct {
	redis  *goredis.Client
	config *QueryCacheConfig
}

// NewQueryCache builds a QueryCache over redis; a nil client disables it.
func NewQueryCache(redis *goredis.Client, config *QueryCacheConfig) *QueryCache {
	if config == nil {
		config = DefaultQueryCacheConfig()
	}
	return &QueryCache{redis: redis, config: config}
}

func (c *QueryCache) key(query string, flags Flags) string {
	h := sha256.New()
	h.Write([]byte(query))
	_ = json.NewEncoder(h).Encode(flags)
	return c.config.KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached Response for query+flags, or nil, nil on a miss.
func (c *QueryCache) Get(ctx context.Context, query string, flags Flags) (*Response, error) {
	if !c.config.Enabled || c.redis == nil {
		return nil, nil
	}

	key := c.key(query, flags)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		logger.Warnw("query cache get failed", "error", err.Error(), "key", key)
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.Warnw("query cache unmarshal failed", "error", err.Error(), "key", key)
		_ = c.redis.Del(ctx, key).Err()
		return nil, nil
	}
	return &resp, nil
}

// Set writes resp to the cache under query+flags.
func (c *QueryCache) Set(ctx context.Context, query string, flags Flags, resp *Response) error {
	if !c.config.Enabled || c.redis == nil {
		return nil
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal cached response: %w", err)
	}
	return c.redis.Set(ctx, c.key(query, flags), data, c.config.TTL).Err()
}
