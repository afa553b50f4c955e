package store

import (
	"context"

	"sjsage522/encarworker/internal/crawler"
)

// KnownStore records every listing id ever seen per search link
type KnownStore interface {
	// Init creates the storage if absent; safe to call on every start
	Init(ctx context.Context) error

	// Existing returns the ids recorded for link. The set is never nil;
	// on failure it is empty and the error is for logging only.
	Existing(ctx context.Context, link string) (map[string]struct{}, error)

	// Add records listings under link, ignoring ids already present
	Add(ctx context.Context, link string, listings []crawler.Listing) error

	// Stats returns the number of known ids per link
	Stats(ctx context.Context) (map[string]int, error)
}
