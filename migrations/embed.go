// Package migrations embeds SQL migration files.
package migrations

import "embed"

// FS contains the goose migrations. The SQL is portable between Postgres and SQLite.
//
//go:embed sql/*.sql
var FS embed.FS

// Dir is the directory within FS where migrations live.
const Dir = "sql"
