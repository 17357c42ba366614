package db

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

// Migrations ship inside the binary so cmd/migrate needs no files on disk.
//
//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations brings the schema up to date with goose over the embedded
// migrations. A nil database, as in dev mode without Postgres, is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, database, "migrations")
}
