package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hillstay/hillstay/internal/data/pgxutil"
	"github.com/hillstay/hillstay/internal/domain/model"
	apperrors "github.com/hillstay/hillstay/internal/errors"
	"github.com/hillstay/hillstay/internal/ports"
)

const listingColumns = `id, owner_id, category, name, location, description, price, photos, details, created_at, updated_at`

// ListingRepo persists owner listings in Postgres.
type ListingRepo struct {
	DB *sql.DB
	// Clock stamps created_at and updated_at; defaults to time.Now.
	Clock func() time.Time
}

var _ ports.ListingStore = (*ListingRepo)(nil)

// NewListingRepo creates a new ListingRepo using the system clock.
func NewListingRepo(db *sql.DB) *ListingRepo {
	return &ListingRepo{DB: db, Clock: time.Now}
}

// QueryByOwner returns the owner's listings ordered by name.
func (r *ListingRepo) QueryByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidArgument("owner id is required")
	}
	var out []model.Listing
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+listingColumns+` FROM listings WHERE owner_id = $1 ORDER BY name, id`, ownerID)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Listing])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query listings for %s: %w", ownerID, apperrors.MapDBError(err))
	}
	if out == nil {
		out = []model.Listing{}
	}
	return out, nil
}

// BatchUpsertAndPruneByOwner upserts listings and deletes the owner's rows not in listings,
// in one transaction. A listing ID owned by someone else fails with Conflict.
func (r *ListingRepo) BatchUpsertAndPruneByOwner(ctx context.Context, ownerID string, listings []model.Listing) error {
	if ownerID == "" {
		return apperrors.InvalidArgument("owner id is required")
	}
	now := r.now()
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		if l.ID == "" {
			return apperrors.InvalidArgumentField("id", "listing id is required")
		}
		ids = append(ids, l.ID)
	}

	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted},
		Fn: func(tx pgx.Tx) error {
			batch := &pgx.Batch{}
			for _, l := range listings {
				details := l.Details
				if details == nil {
					details = map[string]string{}
				}
				photos := l.Photos
				if photos == nil {
					photos = []string{}
				}
				batch.Queue(`
					INSERT INTO listings (`+listingColumns+`)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
					ON CONFLICT (id) DO UPDATE
					SET category = EXCLUDED.category,
					    name = EXCLUDED.name,
					    location = EXCLUDED.location,
					    description = EXCLUDED.description,
					    price = EXCLUDED.price,
					    photos = EXCLUDED.photos,
					    details = EXCLUDED.details,
					    updated_at = EXCLUDED.updated_at
					WHERE listings.owner_id = EXCLUDED.owner_id`,
					l.ID, ownerID, string(l.Category), l.Name, l.Location, l.Description, l.Price, photos, details, now)
			}
			batch.Queue(`DELETE FROM listings WHERE owner_id = $1 AND NOT (id = ANY($2))`, ownerID, ids)

			results := tx.SendBatch(ctx, batch)
			for _, l := range listings {
				tag, execErr := results.Exec()
				if execErr != nil {
					_ = results.Close()
					return execErr
				}
				if tag.RowsAffected() == 0 {
					_ = results.Close()
					return apperrors.Conflictf("listing %s belongs to another owner", l.ID)
				}
			}
			if _, execErr := results.Exec(); execErr != nil {
				_ = results.Close()
				return execErr
			}
			return results.Close()
		},
	})
	if err != nil {
		if apperrors.GetCode(err) != "" {
			return err
		}
		return fmt.Errorf("sync listings for %s: %w", ownerID, apperrors.MapDBError(err))
	}
	return nil
}

func (r *ListingRepo) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock().UTC()
}
