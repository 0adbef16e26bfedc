package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS teams (
				competition_id TEXT NOT NULL,
				id TEXT NOT NULL,
				name TEXT NOT NULL,
				tag TEXT NOT NULL DEFAULT '',
				seq INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (competition_id, id)
			);
		`)
		if err != nil {
			return fmt.Errorf("create teams table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS teams;`); err != nil {
			return fmt.Errorf("drop teams table: %w", err)
		}
		return nil
	})
}
