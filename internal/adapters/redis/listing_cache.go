package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hillstay/hillstay/internal/domain/model"
	"github.com/hillstay/hillstay/internal/ports"
)

const defaultListingPrefix = "listings:"

// ListingCache holds the last known copy of each owner's listings.
// Entries expire after TTL; a zero TTL keeps them until overwritten.
type ListingCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

var _ ports.ListingCache = (*ListingCache)(nil)

// ListingCacheOptions configures a ListingCache.
type ListingCacheOptions struct {
	Prefix string
	TTL    time.Duration
	Now    func() time.Time
}

type cachedListings struct {
	CachedAt time.Time       `json:"cached_at"`
	Listings []model.Listing `json:"listings"`
}

// NewListingCache creates a Redis-backed listing cache.
func NewListingCache(client redis.UniversalClient, opts ListingCacheOptions) *ListingCache {
	c := &ListingCache{client: client, prefix: opts.Prefix, ttl: opts.TTL, now: opts.Now}
	if c.prefix == "" {
		c.prefix = defaultListingPrefix
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c *ListingCache) Get(ctx context.Context, ownerID string) ([]model.Listing, time.Time, bool, error) {
	if ownerID == "" {
		return nil, time.Time{}, false, nil
	}
	data, err := c.client.Get(ctx, c.prefix+ownerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, time.Time{}, false, nil
		}
		return nil, time.Time{}, false, fmt.Errorf("redis get: %w", err)
	}
	var entry cachedListings
	if unmarshalErr := json.Unmarshal(data, &entry); unmarshalErr != nil {
		return nil, time.Time{}, false, fmt.Errorf("unmarshal listings: %w", unmarshalErr)
	}
	if entry.Listings == nil {
		entry.Listings = []model.Listing{}
	}
	return entry.Listings, entry.CachedAt, true, nil
}

func (c *ListingCache) Set(ctx context.Context, ownerID string, listings []model.Listing) error {
	if ownerID == "" {
		return errors.New("owner ID cannot be empty")
	}
	data, err := json.Marshal(cachedListings{CachedAt: c.now().UTC(), Listings: listings})
	if err != nil {
		return fmt.Errorf("marshal listings: %w", err)
	}
	return c.client.Set(ctx, c.prefix+ownerID, data, c.ttl).Err()
}

func (c *ListingCache) Delete(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return nil
	}
	return c.client.Del(ctx, c.prefix+ownerID).Err()
}
