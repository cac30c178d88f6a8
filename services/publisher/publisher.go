package publisher

import (
	"context"

	"sjsage522/socialscraper/internal/record"
)

// Publisher announces newly stored records to downstream consumers
type Publisher interface {
	// Publish sends an event describing rec
	Publish(ctx context.Context, rec record.ScrapedRecord) error

	// Close closes the publisher connection
	Close() error
}

// Nop is a Publisher that drops every event
type Nop struct{}

// Publish does nothing
func (Nop) Publish(ctx context.Context, rec record.ScrapedRecord) error { return nil }

// Close does nothing
func (Nop) Close() error { return nil }
