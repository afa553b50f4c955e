package worker

import (
	"context"
	"fmt"
	"maps"
	"runtime/debug"
	"slices"
	"time"

	"github.com/google/uuid"

	"sjsage522/encarworker/helpers"
	"sjsage522/encarworker/internal"
	"sjsage522/encarworker/internal/crawler"
	"sjsage522/encarworker/logger"
	"sjsage522/encarworker/pkg/errors"
	"sjsage522/encarworker/services/cache"
)

// Options controls what a pass reads and how it is paced
type Options struct {
	LinksFile      string
	AllowedHosts   []string
	DictionaryPath string
	MessageDelay   time.Duration
	LinkDelay      time.Duration
	RetryDelay     time.Duration
	NotifyGuardTTL time.Duration
}

// PassStats summarizes one pass over the link file
type PassStats struct {
	ID       string
	Links    int
	Skipped  int
	Listings int
	New      int
	Notified int
	Elapsed  time.Duration
}

// linkResult summarizes one search link
type linkResult struct {
	listings int
	new      int
	notified int
	skipped  bool
}

// Worker scrapes every search link in turn and notifies new listings
type Worker struct {
	deps internal.Dependencies
	opts Options
	log  *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(deps internal.Dependencies, opts Options, log *logger.Logger) *Worker {
	return &Worker{
		deps: deps,
		opts: opts,
		log:  log.ForComponent("worker"),
	}
}

// Start runs passes until ctx is cancelled. A failed pass is logged and the
// whole pass is retried after RetryDelay; a clean pass waits the same delay.
func (w *Worker) Start(ctx context.Context) error {
	for {
		stats, err := w.safePass(ctx)
		if ctx.Err() != nil {
			w.log.Info().Msg("Worker stopped")
			return nil
		}
		if err != nil {
			w.log.Error().Err(err).Str("pass", stats.ID).Msg("Pass failed")
		} else {
			w.log.Info().
				Str("pass", stats.ID).
				Int("links", stats.Links).
				Int("new", stats.New).
				Int("notified", stats.Notified).
				Dur("elapsed", stats.Elapsed).
				Msg("Pass finished")
		}

		if err := sleep(ctx, w.opts.RetryDelay); err != nil {
			w.log.Info().Msg("Worker stopped")
			return nil
		}
	}
}

// safePass runs a pass and turns a panic into an error
func (w *Worker) safePass(ctx context.Context) (stats PassStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pass panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return w.RunPass(ctx)
}

// RunPass reloads the link file and processes every link sequentially
func (w *Worker) RunPass(ctx context.Context) (PassStats, error) {
	start := time.Now()
	stats := PassStats{ID: uuid.NewString()}
	log := w.log.WithField("pass", stats.ID)

	links, err := helpers.LoadLinks(w.opts.LinksFile, w.opts.AllowedHosts)
	if err != nil {
		return stats, errors.NewConfiguration("load links", err)
	}
	stats.Links = len(links)
	if len(links) == 0 {
		log.Warn().Str("file", w.opts.LinksFile).Msg("No search links to process")
	}

	dict, err := crawler.LoadDictionary(w.opts.DictionaryPath)
	if err != nil {
		log.Error().Err(err).Msg("Dictionary unavailable, titles stay untranslated")
	}
	extractor := crawler.NewExtractor(dict)

	for _, link := range links {
		if ctx.Err() != nil {
			break
		}

		res := w.processLink(ctx, log.ForLink(link), extractor, link)
		stats.Listings += res.listings
		stats.New += res.new
		stats.Notified += res.notified
		if res.skipped {
			stats.Skipped++
		}

		if err := sleep(ctx, w.opts.LinkDelay); err != nil {
			break
		}
	}

	if w.deps.Publisher != nil && ctx.Err() == nil {
		if err := w.deps.Publisher.TrimStreams(ctx); err != nil {
			log.Warn().Err(err).Msg("Stream trimming failed")
		}
	}

	stats.Elapsed = time.Since(start)
	return stats, ctx.Err()
}

// processLink fetches one search link, diffs it against the store and
// notifies the new listings. Every failure stays local to the link.
func (w *Worker) processLink(ctx context.Context, log *logger.Logger, extractor *crawler.Extractor, link string) (res linkResult) {
	log.Info().Msg("Processing link")

	fetcher, err := w.deps.Fetchers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open fetcher session")
		res.skipped = true
		return res
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close fetcher session")
		}
	}()

	rows, err := fetcher.FetchRows(ctx, link)
	if err != nil {
		res.skipped = true
		switch {
		case ctx.Err() != nil:
		case errors.IsType(err, errors.ErrorTypeTimeout):
			log.Warn().Err(err).Msg("Car list table failed to load, skipping link")
		default:
			log.Error().Err(err).Msg("Failed to fetch link")
		}
		return res
	}

	extracted := make(map[string]crawler.Listing)
	for listing, err := range extractor.Extract(link, rows) {
		if err != nil {
			log.Error().Err(err).Msg("Failed to extract row")
			continue
		}
		extracted[listing.ID] = listing
	}
	res.listings = len(extracted)

	if log.IsDebugEnabled() {
		for _, id := range slices.Sorted(maps.Keys(extracted)) {
			log.Debug().Interface("listing", extracted[id]).Msg("Extracted listing")
		}
	}

	if len(extracted) == 0 {
		log.Warn().Msg("Ads not found")
		return res
	}

	known, err := w.deps.Store.Existing(ctx, link)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read known listings, treating all as new")
	}

	newIDs := crawler.Diff(extracted, known)
	res.new = len(newIDs)
	log.Info().Int("found", len(extracted)).Int("new", len(newIDs)).Msg("Listings diffed")

	handled := make([]crawler.Listing, 0, len(newIDs))
	for _, id := range newIDs {
		listing := extracted[id]
		if w.notify(ctx, log, link, listing) {
			res.notified++
		}
		handled = append(handled, listing)

		if w.deps.Publisher != nil {
			if err := w.deps.Publisher.Publish(ctx, link, listing); err != nil {
				log.Warn().Err(err).Str("car_id", id).Msg("Failed to publish listing")
			}
		}

		if err := sleep(ctx, w.opts.MessageDelay); err != nil {
			break
		}
	}

	// Persist what was handled even when shutting down mid-link
	if err := w.deps.Store.Add(context.WithoutCancel(ctx), link, handled); err != nil {
		log.Error().Err(err).Msg("Failed to record listings")
	}

	return res
}

// notify sends one listing unless the guard says it was already sent.
// It reports whether a message went out.
func (w *Worker) notify(ctx context.Context, log *logger.Logger, link string, listing crawler.Listing) bool {
	var key string
	if w.deps.Cache != nil {
		key = cache.SentKey(link, listing.ID)
		if _, err := w.deps.Cache.Get(key); err == nil {
			log.Debug().Str("car_id", listing.ID).Msg("Already notified, skipping message")
			return false
		} else if !cache.IsMiss(err) {
			log.Warn().Err(errors.NewCache(link, "guard lookup", err)).Msg("Notification guard unavailable")
		}
	}

	if err := w.deps.Notifier.Notify(ctx, link, listing); err != nil {
		log.Error().Err(err).Str("car_id", listing.ID).Msg("Failed to send notification")
		return false
	}
	log.Info().Str("car_id", listing.ID).Str("title", listing.Title).Msg("New listing notified")

	if w.deps.Cache != nil {
		if err := w.deps.Cache.Set(key, []byte(time.Now().UTC().Format(time.RFC3339)), w.opts.NotifyGuardTTL); err != nil {
			log.Warn().Err(errors.NewCache(link, "guard write", err)).Msg("Failed to mark listing as notified")
		}
	}
	return true
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
