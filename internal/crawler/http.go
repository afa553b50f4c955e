package crawler

import (
	"context"
	stderrors "errors"
	"net/http"

	"sjsage522/encarworker/helpers"
	"sjsage522/encarworker/pkg/errors"
)

// HTTPFetcher implements PageFetcher for server-rendered pages
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher using client
func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{client: client, userAgent: userAgent}
}

// FetchRows downloads url and returns the car list rows
func (f *HTTPFetcher) FetchRows(ctx context.Context, url string) ([]Row, error) {
	body, err := helpers.FetchPage(ctx, f.client, url, f.userAgent)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewTimeout(url, f.client.Timeout, err)
		}
		return nil, errors.NewNetwork(url, "fetch page", err)
	}

	rows, err := RowsFromHTML(body)
	if stderrors.Is(err, ErrTableNotFound) || stderrors.Is(err, ErrNoRows) {
		return nil, errors.NewTimeout(url, f.client.Timeout, err)
	}
	if err != nil {
		return nil, errors.NewExtraction(url, "parse page", err)
	}
	return rows, nil
}

// Close drops idle connections
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
