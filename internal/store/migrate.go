package store

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/userhub/internal/observability/logger"
	"github.com/dropDatabas3/userhub/migrations"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
)

// Migrate aplica las migraciones embebidas pendientes.
func Migrate(ctx context.Context, db *bun.DB, driver string) error {
	dialect := "postgres"
	if driver == "sqlite" {
		dialect = "sqlite3"
	}

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(logger.Std("goose"))
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("store: goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, migrations.Dir); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// MigrationVersion devuelve la versión aplicada.
func MigrationVersion(ctx context.Context, db *bun.DB) (int64, error) {
	return goose.GetDBVersionContext(ctx, db.DB)
}
