package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the collection all migration files register themselves into.
var Migrations = migrate.NewMigrations()
