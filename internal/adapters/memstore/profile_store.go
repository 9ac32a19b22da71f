package memstore

// Package memstore provides in-process profile and listing stores for local runs and tests.

import (
	"context"
	"fmt"
	"sync"

	"github.com/hillstay/hillstay/internal/domain/model"
	apperrors "github.com/hillstay/hillstay/internal/errors"
	"github.com/hillstay/hillstay/internal/ports"
)

// ProfileStore keeps profile documents in memory. Safe for concurrent use.
type ProfileStore struct {
	mu   sync.RWMutex
	docs map[string]model.ProfileDocument
}

var _ ports.ProfileStore = (*ProfileStore)(nil)

// NewProfileStore creates an empty store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{docs: make(map[string]model.ProfileDocument)}
}

// Get returns a copy of the document, or nil when absent.
func (s *ProfileStore) Get(ctx context.Context, uid string) (*model.ProfileDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if uid == "" {
		return nil, apperrors.InvalidArgument("uid is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uid]
	if !ok {
		return nil, nil
	}
	out := copyDocument(doc)
	return &out, nil
}

// Merge shallow-merges fields and bumps the version.
func (s *ProfileStore) Merge(ctx context.Context, uid string, fields map[string]any, opts model.MergeOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if uid == "" {
		return apperrors.InvalidArgument("uid is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.docs[uid]
	if opts.ExpectedVersion != nil && *opts.ExpectedVersion != cur.Version {
		return apperrors.Conflictf("profile %s is at version %d, expected %d", uid, cur.Version, *opts.ExpectedVersion)
	}
	merged, err := model.MergeProfile(cur, fields)
	if err != nil {
		return fmt.Errorf("merge profile: %w", err)
	}
	merged.Version = cur.Version + 1
	s.docs[uid] = merged
	return nil
}

// Len reports how many documents are stored.
func (s *ProfileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func copyDocument(doc model.ProfileDocument) model.ProfileDocument {
	out := doc
	out.VisitedPlaces = cloneStrings(doc.VisitedPlaces)
	out.RecentBookings = cloneStrings(doc.RecentBookings)
	out.SavedPlaces = cloneStrings(doc.SavedPlaces)
	if doc.UpdatedAt != nil {
		t := *doc.UpdatedAt
		out.UpdatedAt = &t
	}
	if doc.DeletedAt != nil {
		t := *doc.DeletedAt
		out.DeletedAt = &t
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
