// Package migrations embeds the SQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

// gooseUpContext is replaced in tests.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Up applies all pending migrations. db must be opened with the pgx
// stdlib driver.
func Up(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(FS)
	err := goose.SetDialect("pgx")
	if err != nil {
		return err
	}

	return gooseUpContext(ctx, db, ".")
}
