package main

import (
	"errors"
	"fmt"

	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"

	"github.com/okian/podium/internal/adapters/repository/migrations"
)

var errNoDatabase = errors.New("database_dsn is not set")

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: withMigrator(func(c *cli.Context, m *migrate.Migrator) error {
					return m.Init(c.Context)
				}),
			},
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: withMigrator(func(c *cli.Context, m *migrate.Migrator) error {
					if err := m.Lock(c.Context); err != nil {
						return err
					}
					defer func() { _ = m.Unlock(c.Context) }()

					group, err := m.Migrate(c.Context)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Fprintln(c.App.Writer, "no new migrations to run")
						return nil
					}
					fmt.Fprintf(c.App.Writer, "migrated to %s\n", group)
					return nil
				}),
			},
			{
				Name:  "down",
				Usage: "roll back the last migration group",
				Action: withMigrator(func(c *cli.Context, m *migrate.Migrator) error {
					if err := m.Lock(c.Context); err != nil {
						return err
					}
					defer func() { _ = m.Unlock(c.Context) }()

					group, err := m.Rollback(c.Context)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Fprintln(c.App.Writer, "no groups to roll back")
						return nil
					}
					fmt.Fprintf(c.App.Writer, "rolled back %s\n", group)
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "print migration status",
				Action: withMigrator(func(c *cli.Context, m *migrate.Migrator) error {
					ms, err := m.MigrationsWithStatus(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "migrations: %s\n", ms)
					fmt.Fprintf(c.App.Writer, "unapplied migrations: %s\n", ms.Unapplied())
					fmt.Fprintf(c.App.Writer, "last migration group: %s\n", ms.LastGroup())
					return nil
				}),
			},
		},
	}
}

func withMigrator(fn func(*cli.Context, *migrate.Migrator) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := setup(c)
		if err != nil {
			return err
		}
		if cfg.DatabaseDSN == "" {
			return errNoDatabase
		}
		db, closeDB, err := openDB(c.Context, cfg)
		if err != nil {
			return err
		}
		defer closeDB()
		return fn(c, migrate.NewMigrator(db, migrations.Migrations))
	}
}
