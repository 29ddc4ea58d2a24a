package migrations

import (
	"context"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

// exec runs each statement after expanding the dialect placeholders
// {{id}} (auto-increment primary key) and {{timestamp}}.
func exec(ctx context.Context, db *bun.DB, statements ...string) error {
	id, ts := "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	if db.Dialect().Name() == dialect.SQLite {
		id, ts = "INTEGER PRIMARY KEY AUTOINCREMENT", "TIMESTAMP"
	}
	replacer := strings.NewReplacer("{{id}}", id, "{{timestamp}}", ts)
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, replacer.Replace(stmt)); err != nil {
			return err
		}
	}
	return nil
}
