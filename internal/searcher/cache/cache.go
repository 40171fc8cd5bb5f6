// Package cache keeps serialized search results in Redis. Keys include the
// corpus generation, so results from an older corpus are never served after
// a rebuild even before they expire.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/resilience"
)

const keyPrefix = "search:"

// Store is the subset of pkg/redis.Client the cache uses.
type Store interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Hits         int64  `json:"hits"`
	Misses       int64  `json:"misses"`
	Total        int64  `json:"total"`
	HitRate      string `json:"hit_rate"`
	BreakerState string `json:"breaker_state"`
}

type QueryCache struct {
	store   Store
	cfg     config.RedisConfig
	group   singleflight.Group
	breaker *resilience.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a QueryCache over store. Redis calls stop for
// cfg.BreakerCooldown after cfg.BreakerThreshold consecutive failures, and
// every lookup counts as a miss meanwhile. m may be nil.
func New(store Store, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	breaker := resilience.NewBreaker("redis-cache", cfg.BreakerThreshold, cfg.BreakerCooldown)
	if m != nil {
		breaker.OnStateChange(func(_, to resilience.State) {
			if to == resilience.StateOpen {
				m.CacheBreakerOpen.Set(1)
			} else {
				m.CacheBreakerOpen.Set(0)
			}
		})
	}
	return &QueryCache{
		store:   store,
		cfg:     cfg,
		breaker: breaker,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, plan *parser.QueryPlan, limit int, generation uint64) (*executor.SearchResult, bool) {
	key := buildKey(plan, limit, generation)
	var (
		data  string
		found bool
	)
	err := c.breaker.Do(func() error {
		var err error
		data, found, err = c.store.Lookup(ctx, key)
		return err
	})
	if err != nil {
		if !errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	if !found {
		c.miss()
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	c.logger.Debug("cache hit", "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, plan *parser.QueryPlan, limit int, result *executor.SearchResult) {
	key := buildKey(plan, limit, result.Generation)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Do(func() error {
		return c.store.Set(ctx, key, data, c.cfg.CacheTTL)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute serves plan from the cache or runs computeFn, collapsing
// concurrent identical misses into one computation. The boolean reports a
// cache hit. Entries are shared by every query with the same terms, so the
// returned result always carries plan's own query text.
//
// computeFn runs with a context that is not cancelled by ctx: it may be
// serving other callers who collapsed onto this one.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	plan *parser.QueryPlan,
	limit int,
	generation uint64,
	computeFn func(ctx context.Context) (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, plan, limit, generation); ok {
		result.Query = plan.RawQuery
		return result, true, nil
	}
	key := buildKey(plan, limit, generation)
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		result, err := computeFn(shared)
		if err != nil {
			return nil, err
		}
		c.Set(shared, plan, limit, result)
		return result, nil
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		out := *res.Val.(*executor.SearchResult)
		out.Query = plan.RawQuery
		return &out, false, nil
	}
}

// Invalidate deletes every cached search result.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	var deleted int64
	err := c.breaker.Do(func() error {
		var err error
		deleted, err = c.store.FlushByPattern(ctx, keyPrefix+"*")
		return err
	})
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return Stats{
		Hits:         hits,
		Misses:       misses,
		Total:        total,
		HitRate:      fmt.Sprintf("%.1f%%", hitRate),
		BreakerState: c.breaker.State().String(),
	}
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// buildKey hashes the normalized terms in query order, duplicates included.
func buildKey(plan *parser.QueryPlan, limit int, generation uint64) string {
	raw := fmt.Sprintf("g=%d|limit=%d|%s", generation, limit, strings.Join(plan.Terms, "\x1f"))
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
