// Package redis provides Redis-backed profile storage and the listing fallback cache.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/hillstay/hillstay/internal/domain/model"
	apperrors "github.com/hillstay/hillstay/internal/errors"
	"github.com/hillstay/hillstay/internal/ports"
)

const (
	fieldDoc     = "doc"
	fieldVersion = "version"

	defaultProfilePrefix = "profile:"
	maxMergeAttempts     = 5
)

// ProfileStore keeps each profile document in a hash holding the JSON body and its version.
// Merges run optimistically under WATCH and retry when another writer wins.
type ProfileStore struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.ProfileStore = (*ProfileStore)(nil)

// NewProfileStore creates a Redis-backed profile store.
func NewProfileStore(client redis.UniversalClient) *ProfileStore {
	return NewProfileStoreWithPrefix(client, defaultProfilePrefix)
}

// NewProfileStoreWithPrefix creates a profile store with a custom key prefix.
func NewProfileStoreWithPrefix(client redis.UniversalClient, prefix string) *ProfileStore {
	return &ProfileStore{client: client, prefix: prefix}
}

// Get returns the profile document for uid, or nil when absent.
func (s *ProfileStore) Get(ctx context.Context, uid string) (*model.ProfileDocument, error) {
	if uid == "" {
		return nil, apperrors.InvalidArgument("uid is required")
	}
	vals, err := s.client.HGetAll(ctx, s.prefix+uid).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	return decodeProfile(vals)
}

// Merge shallow-merges fields into the document and bumps its version.
func (s *ProfileStore) Merge(ctx context.Context, uid string, fields map[string]any, opts model.MergeOptions) error {
	if uid == "" {
		return apperrors.InvalidArgument("uid is required")
	}
	key := s.prefix + uid

	txf := func(tx *redis.Tx) error {
		vals, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("redis hgetall: %w", err)
		}
		cur, err := decodeProfile(vals)
		if err != nil {
			return err
		}
		var base model.ProfileDocument
		if cur != nil {
			base = *cur
		}
		if opts.ExpectedVersion != nil && *opts.ExpectedVersion != base.Version {
			return apperrors.Conflictf("profile %s is at version %d, expected %d", uid, base.Version, *opts.ExpectedVersion)
		}

		merged, err := model.MergeProfile(base, fields)
		if err != nil {
			return err
		}
		body, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("encode profile: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fieldDoc, body, fieldVersion, base.Version+1)
			return nil
		})
		return err
	}

	for range maxMergeAttempts {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			if opts.ExpectedVersion != nil {
				return apperrors.Conflictf("profile %s changed during update", uid)
			}
			continue
		}
		if err != nil && apperrors.GetCode(err) == "" {
			return fmt.Errorf("merge profile %s: %w", uid, err)
		}
		return err
	}
	return apperrors.Conflictf("profile %s is under heavy contention", uid)
}

func decodeProfile(vals map[string]string) (*model.ProfileDocument, error) {
	body, ok := vals[fieldDoc]
	if !ok {
		return nil, nil
	}
	var doc model.ProfileDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if v, ok := vals[fieldVersion]; ok {
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode profile version: %w", err)
		}
		doc.Version = version
	}
	return &doc, nil
}
