package crawler

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// Listing represents a single car ad scraped from a search page.
// All fields are display strings taken from the page as-is.
type Listing struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Details string `json:"details,omitempty"`
	Year    string `json:"year,omitempty"`
	Mileage string `json:"km,omitempty"`
	Price   string `json:"price,omitempty"`
}

// Row is one <tr> of the rendered car list table
type Row struct {
	Index     int
	Selection *goquery.Selection
}

// PageFetcher loads a search page and returns its car list rows
type PageFetcher interface {
	// FetchRows navigates to url and waits, bounded, for the car list table
	FetchRows(ctx context.Context, url string) ([]Row, error)

	// Close releases the underlying session
	Close() error
}

// FetcherFactory opens a fresh fetcher session
type FetcherFactory func(ctx context.Context) (PageFetcher, error)

// Translator maps a raw model title to its display title
type Translator interface {
	Translate(word string) string
}
