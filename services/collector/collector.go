// Package collector routes fetch requests to the right channel and records
// the results.
package collector

import (
	"context"
	"strings"

	"sjsage522/socialscraper/helpers"
	"sjsage522/socialscraper/internal/crawler"
	"sjsage522/socialscraper/internal/provider"
	"sjsage522/socialscraper/internal/record"
	"sjsage522/socialscraper/logger"
	apperrors "sjsage522/socialscraper/pkg/errors"
	"sjsage522/socialscraper/services/publisher"
	"sjsage522/socialscraper/services/store"
)

// JobRunner collects items through an asynchronous provider
type JobRunner interface {
	Collect(ctx context.Context, query string) ([]record.RawItem, error)
}

// Collector handles the fetch, store and publish sequence
type Collector struct {
	jobs      JobRunner
	pages     crawler.Crawler
	store     *store.Store
	publisher publisher.Publisher
	log       *logger.Logger
}

// NewCollector creates a new collector. A nil publisher disables events.
func NewCollector(jobs JobRunner, pages crawler.Crawler, st *store.Store, pub publisher.Publisher) *Collector {
	if pub == nil {
		pub = publisher.Nop{}
	}
	return &Collector{
		jobs:      jobs,
		pages:     pages,
		store:     st,
		publisher: pub,
		log:       logger.ForCollector(),
	}
}

// FetchTikTok collects the posts of a TikTok profile through the provider
func (c *Collector) FetchTikTok(ctx context.Context, username string) (record.ScrapedRecord, error) {
	username = provider.CleanUsername(username)
	if username == "" {
		return record.ScrapedRecord{}, apperrors.NewValidation("username is required")
	}

	c.log.Info().Str("username", username).Msg("Collecting TikTok profile")
	items, err := c.jobs.Collect(ctx, username)
	if err != nil {
		return record.ScrapedRecord{}, err
	}
	return c.save(ctx, record.PlatformTikTok, username, items)
}

// FetchYouTube scrapes one YouTube page directly
func (c *Collector) FetchYouTube(ctx context.Context, url string) (record.ScrapedRecord, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return record.ScrapedRecord{}, apperrors.NewValidation("url is required")
	}
	if !helpers.IsHTTPURL(url) {
		return record.ScrapedRecord{}, apperrors.NewValidation("url must be an absolute http(s) URL")
	}

	c.log.Info().Str("url", url).Str("crawler", c.pages.GetName()).Msg("Scraping page")
	item, err := c.pages.Fetch(ctx, url)
	if err != nil {
		return record.ScrapedRecord{}, err
	}
	return c.save(ctx, c.pages.GetPlatform(), url, []record.RawItem{item})
}

// save appends the result and announces it. Publish failures are logged only.
func (c *Collector) save(ctx context.Context, platform record.Platform, username string, items []record.RawItem) (record.ScrapedRecord, error) {
	rec, err := c.store.Append(ctx, platform, username, items)
	if err != nil {
		return record.ScrapedRecord{}, err
	}

	if err := c.publisher.Publish(ctx, rec); err != nil {
		c.log.Warn().Err(err).Str("record_id", rec.ID).Msg("Failed to publish record")
	}

	c.log.Info().
		Str("record_id", rec.ID).
		Str("platform", string(platform)).
		Int("items", len(rec.Items)).
		Msg("Record saved")
	return rec, nil
}
