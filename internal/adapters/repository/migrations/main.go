// Package migrations holds the Postgres schema for podium.
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the ordered set of schema changes.
var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
