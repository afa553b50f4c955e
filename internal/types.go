package internal

import (
	"sjsage522/encarworker/internal/crawler"
	"sjsage522/encarworker/services/cache"
	"sjsage522/encarworker/services/notifier"
	"sjsage522/encarworker/services/publisher"
	"sjsage522/encarworker/services/store"
)

// Dependencies holds all service dependencies.
// Publisher and Cache are optional and may be nil.
type Dependencies struct {
	Fetchers  crawler.FetcherFactory
	Store     store.KnownStore
	Notifier  notifier.Notifier
	Publisher publisher.Publisher
	Cache     cache.CacheService
}
