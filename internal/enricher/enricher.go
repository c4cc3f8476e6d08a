// Package enricher fills in the detail-page fields of extracted ads.
package enricher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sethvargo/go-retry"

	"avito_bot/internal/datetext"
	"avito_bot/internal/fetcher"
	"avito_bot/internal/model"
	"avito_bot/internal/parser"
)

// Enricher fetches an ad's own page and fills in PostedAt and Description.
type Enricher struct {
	fetcher    *fetcher.Fetcher
	normalizer *datetext.Normalizer
	origin     string
	log        *slog.Logger

	baseDelay  time.Duration
	maxRetries uint64
	now        func() time.Time
}

// New creates an Enricher for the given site origin.
func New(f *fetcher.Fetcher, n *datetext.Normalizer, origin string, log *slog.Logger) *Enricher {
	return &Enricher{
		fetcher:    f,
		normalizer: n,
		origin:     origin,
		log:        log,
		baseDelay:  3 * time.Second,
		maxRetries: 7,
		now:        time.Now,
	}
}

// SetRetryPolicy overrides the backoff applied to transient fetch failures.
func (e *Enricher) SetRetryPolicy(baseDelay time.Duration, maxRetries uint64) {
	e.baseDelay = baseDelay
	e.maxRetries = maxRetries
}

// Enrich downloads the ad's detail page and populates PostedAt and
// Description. The site's anti-bot layer rejects bursts, so fetch failures
// are retried with exponential backoff; an exhausted retry budget returns
// an error and leaves the ad unchanged so the caller can skip it instead
// of stalling the rest of the batch. A posting date the normalizer cannot
// resolve stays nil, that alone is not an error.
func (e *Enricher) Enrich(ctx context.Context, ad *model.Advertisement) error {
	url := ad.FullURL(e.origin)

	var doc *goquery.Document
	backoff := retry.WithMaxRetries(e.maxRetries, retry.NewExponential(e.baseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		d, err := e.fetcher.Fetch(ctx, url)
		if err != nil {
			e.log.Debug("detail fetch failed", "ad_id", ad.ID, "error", err)
			return retry.RetryableError(err)
		}
		doc = d
		return nil
	})
	if err != nil {
		return fmt.Errorf("fetch detail page for ad %d: %w", ad.ID, err)
	}

	detail, err := parser.ParseDetail(doc)
	if err != nil {
		return fmt.Errorf("parse detail page for ad %d: %w", ad.ID, err)
	}

	postedAt, err := e.normalizer.Normalize(detail.DateText, e.now())
	if err != nil {
		return fmt.Errorf("posting date for ad %d: %w", ad.ID, err)
	}

	ad.PostedAt = postedAt
	ad.Description = &detail.Description
	return nil
}
