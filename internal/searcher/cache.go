package searcher

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/pkgdepot/registry-search/pkg/config"
	"github.com/pkgdepot/registry-search/pkg/logger"
	pkgredis "github.com/pkgdepot/registry-search/pkg/redis"
	"github.com/pkgdepot/registry-search/pkg/resilience"
)

const cacheKeyPrefix = "search:"

// QueryCache caches search results in Redis keyed by snapshot generation,
// query words, tags, and limit. A circuit breaker around every Redis call
// lets the service degrade to uncached search while Redis is down, and
// singleflight collapses concurrent identical misses into one computation.
type QueryCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	breaker *resilience.CircuitBreaker
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewQueryCache creates a QueryCache over an established Redis client.
func NewQueryCache(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client:  client,
		cfg:     cfg,
		breaker: resilience.NewCircuitBreaker("query-cache", resilience.CircuitBreakerConfig{}),
		logger:  logger.WithComponent("query-cache"),
	}
}

// GetOrCompute returns the cached result for the query, or computes and
// stores it. The second return value reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	generation uint64,
	words []string,
	tags []string,
	limit int,
	computeFn func() (*Result, error),
) (*Result, bool, error) {
	key := buildCacheKey(generation, words, tags, limit)
	if result, ok := c.get(ctx, key); ok {
		c.hits.Add(1)
		return result, true, nil
	}
	c.misses.Add(1)

	val, err, _ := c.group.Do(key, func() (any, error) {
		if result, ok := c.get(ctx, key); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*Result), false, nil
}

func (c *QueryCache) get(ctx context.Context, key string) (*Result, bool) {
	var data []byte
	var miss bool
	err := c.breaker.Execute(func() error {
		b, err := c.client.Get(ctx, key)
		if pkgredis.IsNilError(err) {
			miss = true
			return nil
		}
		if err != nil {
			return err
		}
		data = b
		return nil
	})
	if err != nil || miss {
		if err != nil {
			c.logger.Debug("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	return &result, true
}

func (c *QueryCache) set(ctx context.Context, key string, result *Result) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, key, data, c.cfg.CacheTTL.Std())
	})
	if err != nil {
		c.logger.Debug("cache set failed", "key", key, "error", err)
	}
}

// Invalidate removes every cached search result. Cache keys carry the
// snapshot generation, so this is hygiene rather than correctness: stale
// generations would otherwise linger until their TTL.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	var deleted int64
	err := c.breaker.Execute(func() error {
		n, err := c.client.FlushByPattern(ctx, cacheKeyPrefix+"*")
		deleted = n
		return err
	})
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("query cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the hit and miss counters.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildCacheKey hashes the normalized query. Words and tags are sorted
// first: AND semantics make their order irrelevant to the result.
func buildCacheKey(generation uint64, words []string, tags []string, limit int) string {
	normWords := normalizeTerms(words)
	normTags := normalizeTerms(tags)
	raw := fmt.Sprintf("g=%d|w=%s|t=%s|l=%d",
		generation,
		strings.Join(normWords, ","),
		strings.Join(normTags, ","),
		limit,
	)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", cacheKeyPrefix, hash[:16])
}

func normalizeTerms(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(t)
	}
	sort.Strings(out)
	return out
}
