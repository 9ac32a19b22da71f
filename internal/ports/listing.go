package ports

import (
	"context"
	"time"

	"github.com/hillstay/hillstay/internal/domain/model"
)

// ListingStore is the remote store for owner listings.
type ListingStore interface {
	QueryByOwner(ctx context.Context, ownerID string) ([]model.Listing, error)

	// BatchUpsertAndPruneByOwner makes the owner's stored listings exactly match listings.
	BatchUpsertAndPruneByOwner(ctx context.Context, ownerID string, listings []model.Listing) error
}

// ListingCache is the local fallback copy of an owner's listings.
type ListingCache interface {
	// Get returns the cached listings and when they were cached; ok is false on a miss.
	Get(ctx context.Context, ownerID string) (listings []model.Listing, cachedAt time.Time, ok bool, err error)
	Set(ctx context.Context, ownerID string, listings []model.Listing) error
	Delete(ctx context.Context, ownerID string) error
}
