package cache

import (
	"context"
	"time"

	"github.com/erp/salesreport/internal/domain/report"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Ensure CachedRowSource implements report.RowSource
var _ report.RowSource = (*CachedRowSource)(nil)

// CachedRowSource memoises whole-store reads of another RowSource for a TTL.
// Cached row slices are shared between callers and must not be modified.
type CachedRowSource struct {
	next   report.RowSource
	cache  *gocache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// CachedRowSourceOption is a functional option for CachedRowSource configuration
type CachedRowSourceOption func(*CachedRowSource)

// WithCacheLogger sets the cache logger
func WithCacheLogger(logger *zap.Logger) CachedRowSourceOption {
	return func(c *CachedRowSource) {
		c.logger = logger
	}
}

// NewCachedRowSource wraps next with a read-through cache of the given TTL
func NewCachedRowSource(next report.RowSource, ttl time.Duration, opts ...CachedRowSourceOption) *CachedRowSource {
	c := &CachedRowSource{
		next:   next,
		cache:  gocache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReadAll returns the cached rows of entity, reading through on a miss.
// Errors are not cached.
func (c *CachedRowSource) ReadAll(ctx context.Context, entity report.EntityType) ([]report.Row, error) {
	key := entity.StoreName()
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]report.Row), nil
	}

	rows, err := c.next.ReadAll(ctx, entity)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, rows, c.ttl)

	c.logger.Debug("Store cached",
		zap.String("store", key),
		zap.Int("rows", len(rows)),
		zap.Duration("ttl", c.ttl),
	)
	return rows, nil
}

// Invalidate drops the cached rows of entity
func (c *CachedRowSource) Invalidate(entity report.EntityType) {
	c.cache.Delete(entity.StoreName())
}

// Flush drops every cached store
func (c *CachedRowSource) Flush() {
	c.cache.Flush()
}

// Unwrap returns the wrapped source
func (c *CachedRowSource) Unwrap() report.RowSource {
	return c.next
}
