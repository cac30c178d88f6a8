package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/socialscraper/helpers"
	"sjsage522/socialscraper/internal/record"
	"sjsage522/socialscraper/services/cache"
)

// fetchFunc fetches a page and returns its UTF-8 body
type fetchFunc func(ctx context.Context, url string) (io.Reader, error)

// BaseCrawler provides caching and rate-limit blocking shared by page crawlers.
// A nil CacheSvc disables both.
type BaseCrawler struct {
	Name      string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	CacheTTL  time.Duration
	fetch     fetchFunc
}

// errBlocked is returned while a host is inside its rate-limit block window
var errBlocked = errors.New("host is rate limited")

// blockKey is the cache key marking a host as rate limited
func blockKey(url string) string {
	return "blocked:" + helpers.HostOf(url)
}

// fetchPage fetches url unless its host is blocked. A rate-limited response
// blocks the host for BlockTime.
func (c *BaseCrawler) fetchPage(ctx context.Context, url string) (io.Reader, error) {
	if c.CacheSvc != nil && c.BlockTime > 0 {
		if _, err := c.CacheSvc.Get(blockKey(url)); err == nil {
			return nil, fmt.Errorf("%w for %s", errBlocked, c.BlockTime)
		}
	}

	fetch := c.fetch
	if fetch == nil {
		fetch = helpers.FetchWithBrowserHeaders
	}

	body, err := fetch(ctx, url)
	if err != nil {
		if c.CacheSvc != nil && c.BlockTime > 0 && errors.Is(err, helpers.ErrRateLimited) {
			seconds := fmt.Sprintf("%d", c.BlockTime/time.Second)
			_ = c.CacheSvc.Set(blockKey(url), []byte(seconds), c.BlockTime)
		}
		return nil, err
	}
	return body, nil
}

// cachedItem returns a previously parsed item for url
func (c *BaseCrawler) cachedItem(url string) (record.RawItem, bool) {
	if c.CacheSvc == nil || c.CacheTTL <= 0 {
		return nil, false
	}
	data, err := c.CacheSvc.Get(helpers.CacheKey("page", url))
	if err != nil {
		return nil, false
	}
	var item record.RawItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, false
	}
	return item, true
}

// storeItem caches a parsed item; failures only cost a refetch
func (c *BaseCrawler) storeItem(url string, item record.RawItem) error {
	if c.CacheSvc == nil || c.CacheTTL <= 0 {
		return nil
	}
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return c.CacheSvc.Set(helpers.CacheKey("page", url), data, c.CacheTTL)
}

// createDocument creates a goquery document from a reader
func (c *BaseCrawler) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("HTML parsing error: %w", err)
	}
	return doc, nil
}

// GetName returns the crawler's name for logging
func (c *BaseCrawler) GetName() string {
	return c.Name
}
