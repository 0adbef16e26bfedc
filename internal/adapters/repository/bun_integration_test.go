//go:build integration

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun/migrate"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/adapters/repository/migrations"
	"github.com/okian/podium/internal/adapters/roster"
	"github.com/okian/podium/internal/domain/model"
)

func newBunStore(t *testing.T) *repository.BunStore {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("podium"),
		postgres.WithUsername("podium"),
		postgres.WithPassword("podium"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db := repository.OpenDB(dsn)
	t.Cleanup(func() { _ = db.Close() })

	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return repository.NewBunStore(db)
}

func TestBunStore(t *testing.T) {
	ctx := context.Background()
	store := newBunStore(t)

	t.Run("roster", func(t *testing.T) {
		_, err := store.Teams(ctx, "cup")
		require.ErrorIs(t, err, roster.ErrCompetitionNotFound)

		teams := []model.RegisteredTeam{
			{ID: "T2", Name: "Beta", Tag: "A2"},
			{ID: "T1", Name: "Alpha", Tag: "A1"},
		}
		require.NoError(t, store.ImportTeams(ctx, "cup", teams))
		got, err := store.Teams(ctx, "cup")
		require.NoError(t, err)
		require.Equal(t, teams, got)

		require.NoError(t, store.ImportTeams(ctx, "cup", teams[:1]))
		got, err = store.Teams(ctx, "cup")
		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("results", func(t *testing.T) {
		_, err := store.Matches(ctx, "cup")
		require.ErrorIs(t, err, repository.ErrNotFound)

		rec := repository.MatchRecord{
			ID:            "m1",
			CompetitionID: "cup",
			SessionID:     "s1",
			MaxTeams:      25,
			CommittedAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Results: model.FinalResultSet{
				{TeamID: "T1", TeamName: "Alpha", Placement: 1, Kills: 8, PlacementPoints: 25, KillPoints: 8, TotalPoints: 33, Confidence: 0.95, Source: model.SourceAutomatic},
				{TeamID: "T2", TeamName: "Beta", Placement: 2, Kills: 3, PlacementPoints: 20, KillPoints: 3, TotalPoints: 23, Confidence: 1, Source: model.SourceManual, IsEdited: true},
			},
		}
		require.NoError(t, store.SaveResults(ctx, rec))

		err = store.SaveResults(ctx, rec)
		require.True(t, errors.Is(err, repository.ErrDuplicateMatch), "got %v", err)

		got, err := store.Matches(ctx, "cup")
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, rec.Results, got[0].Results)
		require.True(t, rec.CommittedAt.Equal(got[0].CommittedAt))

		st, err := store.Standings(ctx, "cup")
		require.NoError(t, err)
		require.Equal(t, "T1", st[0].TeamID)
		require.Equal(t, 33, st[0].TotalPoints)
	})
}
