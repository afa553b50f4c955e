package notifier

import (
	"context"

	"sjsage522/encarworker/internal/crawler"
)

// Notifier delivers a new listing to a chat
type Notifier interface {
	// Notify sends one message for listing found under link
	Notify(ctx context.Context, link string, listing crawler.Listing) error
}
