package delegate

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
)

const migrationTable = "delegate_migrations"

// Migrations is the schema of the delegate store.
var Migrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "20250101000001-delegate-keystore",
			Up: []string{
				`CREATE TABLE delegate_keystores (
					id TEXT PRIMARY KEY,
					address TEXT NOT NULL,
					keystore_data TEXT NOT NULL,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
			},
			Down: []string{`DROP TABLE delegate_keystores`},
		},
		{
			Id: "20250101000002-delegate-flags",
			Up: []string{
				`CREATE TABLE delegate_authorizations (
					delegate TEXT PRIMARY KEY,
					delegated BOOLEAN NOT NULL DEFAULT FALSE,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE delegate_setups (
					trader TEXT NOT NULL,
					delegate TEXT NOT NULL,
					complete BOOLEAN NOT NULL DEFAULT FALSE,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (trader, delegate)
				)`,
			},
			Down: []string{
				`DROP TABLE delegate_setups`,
				`DROP TABLE delegate_authorizations`,
			},
		},
	},
}

// Migrate applies all pending migrations, returning how many ran.
func Migrate(ctx context.Context, db *sql.DB, dialect string) (int, error) {
	set := migrate.MigrationSet{TableName: migrationTable}

	n, err := set.ExecContext(ctx, db, dialect, Migrations, migrate.Up)
	if err != nil {
		return 0, errors.Wrap(err, "failed to apply delegate store migrations")
	}

	return n, nil
}
