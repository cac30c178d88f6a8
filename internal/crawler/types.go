package crawler

import (
	"context"

	"sjsage522/socialscraper/internal/record"
)

// Crawler interface defines the contract for direct page fetchers
type Crawler interface {
	// Fetch retrieves one item's metadata from a public page
	Fetch(ctx context.Context, url string) (record.RawItem, error)

	// GetName returns the crawler's name for logging and identification
	GetName() string

	// GetPlatform returns the platform the crawler serves
	GetPlatform() record.Platform
}

// MetaSelectors contains CSS selectors for the embedded page metadata
type MetaSelectors struct {
	Title         string
	FallbackTitle string
	Description   string
	Image         string
	Interactions  string
}

// DefaultMetaSelectors reads Open Graph tags plus the schema.org interaction count
var DefaultMetaSelectors = MetaSelectors{
	Title:         `meta[property="og:title"]`,
	FallbackTitle: "title",
	Description:   `meta[property="og:description"]`,
	Image:         `meta[property="og:image"]`,
	Interactions:  `meta[itemprop="interactionCount"]`,
}
