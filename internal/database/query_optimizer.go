package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// QueryOptimizer wraps the pool with an in-memory result cache for queries
// whose underlying rows change far less often than they are read.
type QueryOptimizer struct {
	pool       *pgxpool.Pool
	queryCache *QueryCache
	config     *OptimizerConfig
}

// OptimizerConfig holds configuration for the query optimizer
type OptimizerConfig struct {
	// Query cache TTL
	CacheTTL time.Duration
	// Enable query caching
	EnableCache bool
	// Query timeout
	QueryTimeout time.Duration
}

// DefaultOptimizerConfig returns sensible defaults
func DefaultOptimizerConfig() *OptimizerConfig {
	return &OptimizerConfig{
		CacheTTL:     5 * time.Minute,
		EnableCache:  true,
		QueryTimeout: 30 * time.Second,
	}
}

// QueryCache provides simple query result caching
type QueryCache struct {
	cache   map[string]*cacheEntry
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int
}

type cacheEntry struct {
	result    interface{}
	expiresAt time.Time
}

// NewQueryCache creates a new query cache
func NewQueryCache(ttl time.Duration, maxSize int) *QueryCache {
	qc := &QueryCache{
		cache:   make(map[string]*cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
	}
	go qc.cleanupLoop()
	return qc
}

func (c *QueryCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.cache[key]
	if !exists {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.result, true
}

func (c *QueryCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict oldest if at capacity
	if len(c.cache) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, v := range c.cache {
			if oldestKey == "" || v.expiresAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = v.expiresAt
			}
		}
		if oldestKey != "" {
			delete(c.cache, oldestKey)
		}
	}

	c.cache[key] = &cacheEntry{
		result:    value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *QueryCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, key)
}

func (c *QueryCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.cache {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.cache, key)
		}
	}
}

func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*cacheEntry)
}

func (c *QueryCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, entry := range c.cache {
			if now.After(entry.expiresAt) {
				delete(c.cache, key)
			}
		}
		c.mu.Unlock()
	}
}

// NewQueryOptimizer creates a new query optimizer
func NewQueryOptimizer(pool *pgxpool.Pool, config *OptimizerConfig) *QueryOptimizer {
	if config == nil {
		config = DefaultOptimizerConfig()
	}

	var cache *QueryCache
	if config.EnableCache {
		cache = NewQueryCache(config.CacheTTL, 1000)
	}

	return &QueryOptimizer{
		pool:       pool,
		queryCache: cache,
		config:     config,
	}
}

// GetReadyPipelines returns pipelines in the READY state, ordered by most
// recently queried first. This backs the pipeline listing endpoint's common
// case and is cached since the registry changes far less often than it is
// read.
func (o *QueryOptimizer) GetReadyPipelines(ctx context.Context) ([]PipelineSummary, error) {
	cacheKey := "ready_pipelines"

	if o.queryCache != nil {
		if cached, ok := o.queryCache.Get(cacheKey); ok {
			return cached.([]PipelineSummary), nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, o.config.QueryTimeout)
	defer cancel()

	const query = `
		SELECT id, name, status, document_count, chunk_count, total_queries
		FROM rag_pipelines
		WHERE status = 'ready'
		ORDER BY last_query_at DESC NULLS LAST
		LIMIT 100
	`

	rows, err := o.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ready pipelines: %w", err)
	}
	defer rows.Close()

	var summaries []PipelineSummary
	for rows.Next() {
		var p PipelineSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &p.DocumentCount, &p.ChunkCount, &p.TotalQueries); err != nil {
			return nil, fmt.Errorf("scan pipeline summary: %w", err)
		}
		summaries = append(summaries, p)
	}

	if o.queryCache != nil && len(summaries) > 0 {
		o.queryCache.Set(cacheKey, summaries)
	}

	return summaries, nil
}

// PipelineSummary is the cached, denormalized view of a pipeline's registry
// row used for listing and quick health checks.
type PipelineSummary struct {
	ID            string
	Name          string
	Status        string
	DocumentCount int
	ChunkCount    int
	TotalQueries  int64
}

// InvalidatePipelineCache drops any cached registry listings; the ingest
// coordinator calls this whenever a pipeline's document or chunk counts
// change so stale summaries never outlive a write.
func (o *QueryOptimizer) InvalidatePipelineCache() {
	if o.queryCache != nil {
		o.queryCache.InvalidatePrefix("ready_pipelines")
	}
}
