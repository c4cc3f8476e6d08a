// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"avito_bot/internal/model"
)

// Storage is the interface for all persistence operations. It is the
// system of record for which ads have already been seen and notified.
type Storage interface {
	// CreateAd inserts an ad. If the id is already known, only price and
	// posted_at are refreshed; every other field keeps its stored value.
	CreateAd(ctx context.Context, ad *model.Advertisement) error
	GetAd(ctx context.Context, id int64) (*model.Advertisement, error)
	AdExists(ctx context.Context, id int64) (bool, error)
	ListRecentAds(ctx context.Context, limit int) ([]model.Advertisement, error)

	// CreateSubscriber is idempotent: re-registering an existing id is a
	// no-op.
	CreateSubscriber(ctx context.Context, sub *model.Subscriber) error
	ListSubscribers(ctx context.Context) ([]model.Subscriber, error)

	Close() error
}
