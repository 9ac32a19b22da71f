package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hillstay/hillstay/internal/data/pgxutil"
	"github.com/hillstay/hillstay/internal/domain/model"
	apperrors "github.com/hillstay/hillstay/internal/errors"
	"github.com/hillstay/hillstay/internal/ports"
)

// ProfileRepo stores profile documents as JSONB rows. Merges use "doc || patch",
// so patch keys replace stored keys and absent keys are kept.
type ProfileRepo struct {
	DB *sql.DB
}

var _ ports.ProfileStore = (*ProfileRepo)(nil)

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db}
}

// Get returns the profile document for uid, or nil when none exists.
func (r *ProfileRepo) Get(ctx context.Context, uid string) (*model.ProfileDocument, error) {
	if uid == "" {
		return nil, apperrors.InvalidArgument("uid is required")
	}
	var (
		raw     []byte
		version int64
	)
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `SELECT doc, version FROM profiles WHERE uid = $1`, uid).Scan(&raw, &version)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", uid, apperrors.MapDBError(err))
	}

	var doc model.ProfileDocument
	if unmarshalErr := json.Unmarshal(raw, &doc); unmarshalErr != nil {
		return nil, fmt.Errorf("decode profile %s: %w", uid, unmarshalErr)
	}
	doc.Version = version
	return &doc, nil
}

// Merge shallow-merges fields into the document and bumps its version.
// With an expected version the write only applies when the stored version matches.
func (r *ProfileRepo) Merge(ctx context.Context, uid string, fields map[string]any, opts model.MergeOptions) error {
	if uid == "" {
		return apperrors.InvalidArgument("uid is required")
	}
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode profile patch: %w", err)
	}

	var (
		query string
		args  []any
	)
	switch {
	case opts.ExpectedVersion == nil:
		query = `
			INSERT INTO profiles (uid, doc, version, updated_at)
			VALUES ($1, $2::jsonb, 1, now())
			ON CONFLICT (uid) DO UPDATE
			SET doc = profiles.doc || EXCLUDED.doc,
			    version = profiles.version + 1,
			    updated_at = now()`
		args = []any{uid, patch}
	case *opts.ExpectedVersion == 0:
		query = `
			INSERT INTO profiles (uid, doc, version, updated_at)
			VALUES ($1, $2::jsonb, 1, now())
			ON CONFLICT (uid) DO NOTHING`
		args = []any{uid, patch}
	default:
		query = `
			UPDATE profiles
			SET doc = doc || $2::jsonb,
			    version = version + 1,
			    updated_at = now()
			WHERE uid = $1 AND version = $3`
		args = []any{uid, patch, *opts.ExpectedVersion}
	}

	var affected int64
	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, execErr := conn.Exec(ctx, query, args...)
		affected = tag.RowsAffected()
		return execErr
	})
	if err != nil {
		return fmt.Errorf("merge profile %s: %w", uid, apperrors.MapDBError(err))
	}
	if opts.ExpectedVersion != nil && affected == 0 {
		return apperrors.Conflictf("profile %s is no longer at version %d", uid, *opts.ExpectedVersion)
	}
	return nil
}
