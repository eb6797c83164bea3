// Package storage provides durable local persistence for ledger days: an
// sqlite database with embedded goose migrations and repositories for day
// rows and store metadata. The derived-value cache is deliberately never
// persisted; it is cheap to recompute.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/epavlova/macroledger/internal/common"
	"github.com/epavlova/macroledger/internal/dbx"
	"github.com/epavlova/macroledger/internal/storage/migrations"
)

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (or creates) the local database at dsn, applies migrations and
// verifies the store identity recorded in the metadata table. A database
// belonging to a different store name is rejected rather than overwritten.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Name and version are checked and written as one unit so a crash
	// cannot leave a half-claimed database behind.
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return ensureStoreIdentity(ctx, NewSQLiteMetadataRepository(tx))
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func ensureStoreIdentity(ctx context.Context, meta MetadataRepository) error {
	name, err := meta.Get(ctx, "store_name")
	if err != nil {
		return err
	}
	if name == "" {
		if err := meta.Set(ctx, "store_name", common.StoreName); err != nil {
			return err
		}
		return meta.Set(ctx, "store_version", common.StoreVersion)
	}
	if name != common.StoreName {
		return fmt.Errorf("database belongs to store %q, want %q", name, common.StoreName)
	}
	return nil
}
