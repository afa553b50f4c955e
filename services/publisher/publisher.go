package publisher

import (
	"context"

	"sjsage522/encarworker/internal/crawler"
)

// Publisher fans new listings out to downstream consumers
type Publisher interface {
	// Publish publishes a listing found under link
	Publish(ctx context.Context, link string, listing crawler.Listing) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}
