package ports

import (
	"context"

	"github.com/hillstay/hillstay/internal/domain/model"
)

// ProfileStore is the remote profile document store keyed by uid.
type ProfileStore interface {
	// Get returns the document for uid, or (nil, nil) when none exists.
	Get(ctx context.Context, uid string) (*model.ProfileDocument, error)

	// Merge shallow-merges fields into the document, creating it when absent,
	// and bumps its version. A version mismatch fails with a Conflict error.
	Merge(ctx context.Context, uid string, fields map[string]any, opts model.MergeOptions) error
}
