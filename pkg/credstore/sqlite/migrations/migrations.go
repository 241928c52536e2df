package migrations

import "embed"

// Migrations holds the SQL files applied by Store.ApplyMigrations.
//
//go:embed *.sql
var Migrations embed.FS
