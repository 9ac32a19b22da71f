package memstore

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/hillstay/hillstay/internal/domain/model"
	apperrors "github.com/hillstay/hillstay/internal/errors"
	"github.com/hillstay/hillstay/internal/ports"
)

// ListingStore keeps listings per owner in memory.
type ListingStore struct {
	mu      sync.RWMutex
	byOwner map[string]map[string]model.Listing
	clock   func() time.Time
}

var _ ports.ListingStore = (*ListingStore)(nil)

// NewListingStore creates an empty store.
func NewListingStore() *ListingStore {
	return &ListingStore{byOwner: make(map[string]map[string]model.Listing), clock: time.Now}
}

// QueryByOwner returns the owner's listings ordered by name then id.
func (s *ListingStore) QueryByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, apperrors.InvalidArgument("owner id is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Listing, 0, len(s.byOwner[ownerID]))
	for _, l := range s.byOwner[ownerID] {
		out = append(out, copyListing(l))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// BatchUpsertAndPruneByOwner replaces the owner's listings with listings.
func (s *ListingStore) BatchUpsertAndPruneByOwner(ctx context.Context, ownerID string, listings []model.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ownerID == "" {
		return apperrors.InvalidArgument("owner id is required")
	}
	now := s.clock().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.byOwner[ownerID]
	next := make(map[string]model.Listing, len(listings))
	for _, l := range listings {
		if l.ID == "" {
			return apperrors.InvalidArgumentField("id", "listing id is required")
		}
		l = copyListing(l)
		l.OwnerID = ownerID
		if old, ok := prev[l.ID]; ok && !old.CreatedAt.IsZero() {
			l.CreatedAt = old.CreatedAt
		} else if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		l.UpdatedAt = now
		next[l.ID] = l
	}
	s.byOwner[ownerID] = next
	return nil
}

func copyListing(l model.Listing) model.Listing {
	out := l
	if l.Photos != nil {
		out.Photos = append([]string(nil), l.Photos...)
	}
	if l.Details != nil {
		out.Details = maps.Clone(l.Details)
	}
	return out
}
