package crawler

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/socialscraper/internal/record"
	"sjsage522/socialscraper/logger"
	apperrors "sjsage522/socialscraper/pkg/errors"
	"sjsage522/socialscraper/services/cache"
)

// MetaCrawler reads a single item from the metadata a public page embeds
// in its head. It makes one request per call and never retries.
type MetaCrawler struct {
	BaseCrawler
	Platform  record.Platform
	Selectors MetaSelectors
	log       *logger.Logger
}

var _ Crawler = (*MetaCrawler)(nil)

// NewMetaCrawler creates a new metadata crawler
func NewMetaCrawler(platform record.Platform, cacheSvc cache.CacheService, cacheTTL, blockTime time.Duration) *MetaCrawler {
	name := string(platform) + "-meta"
	return &MetaCrawler{
		BaseCrawler: BaseCrawler{
			Name:      name,
			CacheSvc:  cacheSvc,
			CacheTTL:  cacheTTL,
			BlockTime: blockTime,
		},
		Platform:  platform,
		Selectors: DefaultMetaSelectors,
		log:       logger.ForCrawler(name),
	}
}

// GetPlatform returns the platform the crawler serves
func (c *MetaCrawler) GetPlatform() record.Platform {
	return c.Platform
}

// Fetch retrieves and parses the page at url. Absent optional fields are
// omitted, except the interaction count which defaults to "0".
func (c *MetaCrawler) Fetch(ctx context.Context, url string) (record.RawItem, error) {
	if item, ok := c.cachedItem(url); ok {
		c.log.Debug().Str("url", url).Msg("Serving page from cache")
		return item, nil
	}

	body, err := c.fetchPage(ctx, url)
	if err != nil {
		c.log.Error().Err(err).Str("url", url).Msg("Page fetch failed")
		return nil, apperrors.NewScrapeFailed(string(c.Platform), "failed to scrape "+string(c.Platform), err)
	}

	doc, err := c.createDocument(body)
	if err != nil {
		c.log.Error().Err(err).Str("url", url).Msg("Page parse failed")
		return nil, apperrors.NewScrapeFailed(string(c.Platform), "failed to scrape "+string(c.Platform), err)
	}

	item := c.extract(doc)
	item["url"] = url

	if err := c.storeItem(url, item); err != nil {
		c.log.Warn().Err(err).Str("url", url).Msg("Failed to cache page item")
	}
	return item, nil
}

// extract pulls the metadata fields out of doc
func (c *MetaCrawler) extract(doc *goquery.Document) record.RawItem {
	item := record.RawItem{}

	title := metaContent(doc, c.Selectors.Title)
	if title == "" && c.Selectors.FallbackTitle != "" {
		title = strings.TrimSpace(doc.Find(c.Selectors.FallbackTitle).First().Text())
	}
	if title != "" {
		item["title"] = title
	}
	if description := metaContent(doc, c.Selectors.Description); description != "" {
		item["description"] = description
	}
	if image := metaContent(doc, c.Selectors.Image); image != "" {
		item["image"] = image
	}

	views := metaContent(doc, c.Selectors.Interactions)
	if views == "" {
		views = "0"
	}
	item["views"] = views

	return item
}

// metaContent returns the trimmed content attribute of the first match
func metaContent(doc *goquery.Document, selector string) string {
	if selector == "" {
		return ""
	}
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
