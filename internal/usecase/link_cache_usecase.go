package usecase

import (
	"context"
	"time"

	"github.com/user/linkcheck-service/internal/repository"
	"github.com/user/linkcheck-service/pkg/metrics"
	"go.uber.org/zap"
)

// LinkCache is the crawler-facing check cache: a set of URLs already
// verified within the current generation.
type LinkCache struct {
	repo    repository.LinkCacheRepository
	policy  *LinkPolicy
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewLinkCache creates a new LinkCache. Flush only clears generations older than ttl.
func NewLinkCache(
	repo repository.LinkCacheRepository,
	policy *LinkPolicy,
	ttl time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *LinkCache {
	return &LinkCache{
		repo:    repo,
		policy:  policy,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Add records url as verified. URLs that are not absolute with a valid
// scheme are silently ignored.
func (c *LinkCache) Add(ctx context.Context, url string) error {
	if !c.policy.Checkable(url) {
		c.logger.Debug("Ignoring uncheckable URL", zap.String("url", url))
		return nil
	}
	return c.repo.Add(ctx, url)
}

// Passed reports whether url was verified in the current generation.
func (c *LinkCache) Passed(ctx context.Context, url string) (bool, error) {
	ok, err := c.repo.Contains(ctx, url)
	if err != nil {
		return false, err
	}
	if ok {
		c.metrics.LinkCacheLookups.WithLabelValues("hit").Inc()
	} else {
		c.metrics.LinkCacheLookups.WithLabelValues("miss").Inc()
	}
	return ok, nil
}

// Size returns the number of URLs in the current generation.
func (c *LinkCache) Size(ctx context.Context) (int64, error) {
	n, err := c.repo.Size(ctx)
	if err != nil {
		return 0, err
	}
	c.metrics.LinkCacheSize.Set(float64(n))
	return n, nil
}

// Flush clears the cache if the generation is at least ttl old and reports
// whether it did. A younger generation belongs to a crawl still in flight.
func (c *LinkCache) Flush(ctx context.Context) (bool, error) {
	start, ok, err := c.repo.GenerationStart(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	age := c.now().Sub(start)
	if age < c.ttl {
		c.logger.Debug("Link cache too recent to flush", zap.Duration("age", age), zap.Duration("ttl", c.ttl))
		return false, nil
	}
	if err := c.clear(ctx, "expired"); err != nil {
		return false, err
	}
	return true, nil
}

// ForceFlush clears the cache regardless of its age.
func (c *LinkCache) ForceFlush(ctx context.Context) error {
	return c.clear(ctx, "forced")
}

func (c *LinkCache) clear(ctx context.Context, kind string) error {
	size, err := c.repo.Size(ctx)
	if err != nil {
		return err
	}
	if err := c.repo.Reset(ctx); err != nil {
		return err
	}
	c.metrics.LinkCacheFlushes.WithLabelValues(kind).Inc()
	c.metrics.LinkCacheSize.Set(0)
	c.logger.Info("Link cache flushed", zap.String("kind", kind), zap.Int64("urls", size))
	return nil
}
