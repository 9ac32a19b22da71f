package data

import (
	"context"
	"database/sql"

	"github.com/hillstay/hillstay/internal/migrate"
)

// RunMigrations sets up the profile and listing schema by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}
