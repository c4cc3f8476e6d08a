// Package watcher runs the ingestion loop: poll the listing page, extract
// and enrich new ads, persist them, and fan out notifications.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"avito_bot/internal/bot"
	"avito_bot/internal/enricher"
	"avito_bot/internal/fetcher"
	"avito_bot/internal/model"
	"avito_bot/internal/parser"
	"avito_bot/internal/storage"
)

// Sender is the interface for delivering notifications.
type Sender interface {
	SendMessage(chatID int64, text string)
}

// Watcher polls one listing page and notifies subscribers about ads it has
// not seen before.
type Watcher struct {
	store    storage.Storage
	fetcher  *fetcher.Fetcher
	enricher *enricher.Enricher
	sender   Sender
	log      *slog.Logger

	listingURL string
	origin     string
	interval   time.Duration
	itemDelay  time.Duration
	sleep      func(time.Duration)
}

// New creates a Watcher for the given listing URL and site origin.
func New(store storage.Storage, f *fetcher.Fetcher, e *enricher.Enricher, sender Sender, log *slog.Logger, listingURL, origin string) *Watcher {
	return &Watcher{
		store:      store,
		fetcher:    f,
		enricher:   e,
		sender:     sender,
		log:        log,
		listingURL: listingURL,
		origin:     origin,
		interval:   120 * time.Second,
		itemDelay:  500 * time.Millisecond,
		sleep:      time.Sleep,
	}
}

// SetPollInterval overrides the default 120-second cycle interval.
func (w *Watcher) SetPollInterval(d time.Duration) {
	w.interval = d
}

// SetItemDelay overrides the default 500 ms pacing delay between items.
func (w *Watcher) SetItemDelay(d time.Duration) {
	w.itemDelay = d
}

// Run starts the polling loop, blocking until ctx is cancelled. Cycles
// never overlap: the next one starts one interval after the previous one
// finished.
func (w *Watcher) Run(ctx context.Context) {
	w.runCycle(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// runCycle performs one full pass: fetch the listing page, then extract,
// enrich, dedup, persist and notify for each item strictly in order. Items
// are processed sequentially on purpose, concurrent fetching gets the
// scraper blocked.
func (w *Watcher) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	// Read the subscriber list once per cycle. A subscriber registering
	// mid-cycle may or may not get this cycle's notifications.
	subs, err := w.store.ListSubscribers(ctx)
	if err != nil {
		w.log.Error("list subscribers", "error", err)
		return
	}

	doc, err := w.fetcher.Fetch(ctx, w.listingURL)
	if err != nil {
		w.log.Error("fetch listing page", "url", w.listingURL, "error", err)
		return
	}

	items := parser.Items(doc)
	w.log.Debug("listing page fetched", "items", items.Length(), "subscribers", len(subs))

	var newIDs []int64
	items.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}
		if ad := w.processItem(ctx, i, sel, subs); ad != nil {
			newIDs = append(newIDs, ad.ID)
		}
		// Pace every item regardless of outcome to stay under the site's
		// anti-scraping threshold.
		w.sleep(w.itemDelay)
		return true
	})

	w.log.Info("cycle complete", "new_ads", len(newIDs), "ids", newIDs)
}

// processItem runs one item through the pipeline and returns the ad if it
// was new this cycle. All failures are logged and confined to the item.
func (w *Watcher) processItem(ctx context.Context, i int, sel *goquery.Selection, subs []model.Subscriber) *model.Advertisement {
	ad, err := parser.ExtractAd(sel)
	if err != nil {
		var schemaErr *parser.SchemaError
		if errors.As(err, &schemaErr) {
			// Loud on purpose: a missing required marker means the page
			// layout changed and extraction is silently rotting.
			w.log.Error("listing schema violation", "item", i, "marker", schemaErr.Marker, "error", err)
		} else {
			w.log.Error("extract item", "item", i, "error", err)
		}
		return nil
	}
	if ad == nil {
		w.log.Debug("item without address marker skipped", "item", i)
		return nil
	}

	if err := w.enricher.Enrich(ctx, ad); err != nil {
		w.log.Error("enrich ad, skipping", "ad_id", ad.ID, "error", err)
		return nil
	}

	exists, err := w.store.AdExists(ctx, ad.ID)
	if err != nil {
		w.log.Error("check ad exists", "ad_id", ad.ID, "error", err)
		return nil
	}
	if exists {
		// Already notified. Refresh the mutable fields and move on.
		if err := w.store.CreateAd(ctx, ad); err != nil {
			w.log.Error("refresh ad", "ad_id", ad.ID, "error", err)
		}
		return nil
	}

	if err := w.store.CreateAd(ctx, ad); err != nil {
		w.log.Error("persist ad", "ad_id", ad.ID, "error", err)
		return nil
	}

	w.notifyAll(subs, ad)
	return ad
}

// notifyAll delivers one notification per subscriber. Delivery failures
// are the sender's problem to report; the fanout never stops early.
func (w *Watcher) notifyAll(subs []model.Subscriber, ad *model.Advertisement) {
	text := bot.FormatAdNotification(ad, w.origin)
	for _, sub := range subs {
		w.sender.SendMessage(sub.ChatID, text)
	}
}
