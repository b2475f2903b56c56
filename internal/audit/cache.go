package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/nap-audit-cli/internal/webscrape"
)

// PageCache is the subset of the store the caching scraper needs.
type PageCache interface {
	GetCachedPage(ctx context.Context, siteURL string) (*webscrape.Page, error)
	SetCachedPage(ctx context.Context, siteURL string, page *webscrape.Page, ttl time.Duration) error
}

// CachedScraper wraps a Scraper with a persistent page cache so repeat
// audits of the same business skip the network fetch. Cache failures
// degrade to a live scrape.
type CachedScraper struct {
	inner Scraper
	cache PageCache
	ttl   time.Duration
}

func NewCachedScraper(inner Scraper, cache PageCache, ttl time.Duration) *CachedScraper {
	return &CachedScraper{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachedScraper) Scrape(ctx context.Context, siteURL string) (*webscrape.Page, error) {
	if page, err := c.cache.GetCachedPage(ctx, siteURL); err != nil {
		zap.L().Warn("scrape cache read failed", zap.String("url", siteURL), zap.Error(err))
	} else if page != nil {
		return page, nil
	}

	page, err := c.inner.Scrape(ctx, siteURL)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetCachedPage(ctx, siteURL, page, c.ttl); err != nil {
		zap.L().Warn("scrape cache write failed", zap.String("url", siteURL), zap.Error(err))
	}
	return page, nil
}
