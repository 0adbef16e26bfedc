package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS matches (
				id TEXT PRIMARY KEY,
				competition_id TEXT NOT NULL,
				session_id TEXT NOT NULL,
				max_teams INTEGER NOT NULL,
				committed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_matches_competition ON matches (competition_id, committed_at);

			CREATE TABLE IF NOT EXISTS match_results (
				id BIGSERIAL PRIMARY KEY,
				match_id TEXT NOT NULL REFERENCES matches (id) ON DELETE CASCADE,
				team_id TEXT NOT NULL,
				team_name TEXT NOT NULL,
				placement INTEGER NOT NULL CHECK (placement >= 1),
				kills INTEGER NOT NULL CHECK (kills >= 0),
				placement_points INTEGER NOT NULL,
				kill_points INTEGER NOT NULL,
				total_points INTEGER NOT NULL,
				confidence DOUBLE PRECISION NOT NULL,
				is_edited BOOLEAN NOT NULL DEFAULT FALSE,
				source TEXT NOT NULL,
				UNIQUE (match_id, placement),
				UNIQUE (match_id, team_id)
			);
		`)
		if err != nil {
			return fmt.Errorf("create match tables: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS match_results; DROP TABLE IF EXISTS matches;`); err != nil {
			return fmt.Errorf("drop match tables: %w", err)
		}
		return nil
	})
}
