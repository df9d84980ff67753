package surfdb

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/surfcast/internal/domain"
	"github.com/couchcryptid/surfcast/internal/observability"
)

// CachedSource wraps a ForecastSource, caching the beach directory for a
// bounded TTL. Metadata probes and forecast listings always pass through:
// both are refreshed on every fetch.
type CachedSource struct {
	inner   domain.ForecastSource
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu        sync.Mutex
	directory []domain.Beach
	fetchedAt time.Time
}

// NewCachedSource creates a directory-caching decorator around a source.
func NewCachedSource(inner domain.ForecastSource, ttl time.Duration, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		ttl:     ttl,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
	}
}

// SetClock swaps the cache's time source. Pass nil to reset to real time.
func (c *CachedSource) SetClock(clock clockwork.Clock) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	c.mu.Lock()
	c.clock = clock
	c.mu.Unlock()
}

func (c *CachedSource) BeachDirectory(ctx context.Context) ([]domain.Beach, error) {
	c.mu.Lock()
	if c.directory != nil && c.clock.Since(c.fetchedAt) < c.ttl {
		cached := c.directory
		c.mu.Unlock()
		c.metrics.DirectoryCache.WithLabelValues("hit").Inc()
		return cached, nil
	}
	c.mu.Unlock()

	c.metrics.DirectoryCache.WithLabelValues("miss").Inc()
	beaches, err := c.inner.BeachDirectory(ctx)
	if err != nil {
		return nil, err
	}

	// Empty directories are not cached so a transiently empty upstream can
	// recover on the next call.
	if len(beaches) > 0 {
		c.mu.Lock()
		c.directory = beaches
		c.fetchedAt = c.clock.Now()
		c.mu.Unlock()
	}
	return beaches, nil
}

func (c *CachedSource) ProbeMetadata(ctx context.Context, region string, beachID int64) (*domain.RegionMetadata, error) {
	return c.inner.ProbeMetadata(ctx, region, beachID)
}

func (c *CachedSource) ForecastDocuments(ctx context.Context, region string, beachID int64, since time.Time) ([]domain.RawForecast, error) {
	return c.inner.ForecastDocuments(ctx, region, beachID, since)
}
