package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/okian/podium/internal/adapters/roster"
	"github.com/okian/podium/internal/domain/model"
)

const uniqueViolation = "23505"

type teamRow struct {
	bun.BaseModel `bun:"table:teams,alias:t"`
	CompetitionID string `bun:"competition_id,pk"`
	ID            string `bun:"id,pk"`
	Name          string `bun:"name,notnull"`
	Tag           string `bun:"tag,notnull"`
	Seq           int    `bun:"seq,notnull"`
}

type matchRow struct {
	bun.BaseModel `bun:"table:matches,alias:m"`
	ID            string       `bun:"id,pk"`
	CompetitionID string       `bun:"competition_id,notnull"`
	SessionID     string       `bun:"session_id,notnull"`
	MaxTeams      int          `bun:"max_teams,notnull"`
	CommittedAt   time.Time    `bun:"committed_at,notnull,default:current_timestamp"`
	Results       []*resultRow `bun:"rel:has-many,join:id=match_id"`
}

type resultRow struct {
	bun.BaseModel   `bun:"table:match_results,alias:r"`
	ID              int64   `bun:"id,pk,autoincrement"`
	MatchID         string  `bun:"match_id,notnull"`
	TeamID          string  `bun:"team_id,notnull"`
	TeamName        string  `bun:"team_name,notnull"`
	Placement       int     `bun:"placement,notnull"`
	Kills           int     `bun:"kills,notnull"`
	PlacementPoints int     `bun:"placement_points,notnull"`
	KillPoints      int     `bun:"kill_points,notnull"`
	TotalPoints     int     `bun:"total_points,notnull"`
	Confidence      float64 `bun:"confidence,notnull"`
	IsEdited        bool    `bun:"is_edited,notnull"`
	Source          string  `bun:"source,notnull"`
}

// OpenDB connects to Postgres through pgdriver.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// BunStore keeps rosters and committed matches in Postgres.
type BunStore struct {
	DB *bun.DB
}

// NewBunStore wraps db.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{DB: db}
}

// SaveResults writes the match and its rows in one transaction.
func (s *BunStore) SaveResults(ctx context.Context, rec MatchRecord) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	if rec.CommittedAt.IsZero() {
		rec.CommittedAt = time.Now().UTC()
	}

	err := s.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		m := &matchRow{
			ID:            rec.ID,
			CompetitionID: rec.CompetitionID,
			SessionID:     rec.SessionID,
			MaxTeams:      rec.MaxTeams,
			CommittedAt:   rec.CommittedAt,
		}
		if _, err := tx.NewInsert().Model(m).Exec(ctx); err != nil {
			return err
		}
		if len(rec.Results) == 0 {
			return nil
		}
		rows := make([]*resultRow, 0, len(rec.Results))
		for _, r := range rec.Results {
			rows = append(rows, &resultRow{
				MatchID:         rec.ID,
				TeamID:          r.TeamID,
				TeamName:        r.TeamName,
				Placement:       r.Placement,
				Kills:           r.Kills,
				PlacementPoints: r.PlacementPoints,
				KillPoints:      r.KillPoints,
				TotalPoints:     r.TotalPoints,
				Confidence:      r.Confidence,
				IsEdited:        r.IsEdited,
				Source:          r.Source,
			})
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateMatch, rec.ID)
		}
		return fmt.Errorf("save match %s: %w", rec.ID, err)
	}
	return nil
}

// Matches returns the matches of a competition, oldest first.
func (s *BunStore) Matches(ctx context.Context, competitionID string) ([]MatchRecord, error) {
	var rows []matchRow
	err := s.DB.NewSelect().
		Model(&rows).
		Relation("Results", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("r.placement ASC")
		}).
		Where("m.competition_id = ?", competitionID).
		Order("m.committed_at ASC", "m.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, competitionID)
	}

	out := make([]MatchRecord, 0, len(rows))
	for _, m := range rows {
		rec := MatchRecord{
			ID:            m.ID,
			CompetitionID: m.CompetitionID,
			SessionID:     m.SessionID,
			MaxTeams:      m.MaxTeams,
			CommittedAt:   m.CommittedAt,
			Results:       make(model.FinalResultSet, 0, len(m.Results)),
		}
		for _, r := range m.Results {
			rec.Results = append(rec.Results, model.ScoredResult{
				TeamID:          r.TeamID,
				TeamName:        r.TeamName,
				Placement:       r.Placement,
				Kills:           r.Kills,
				PlacementPoints: r.PlacementPoints,
				KillPoints:      r.KillPoints,
				TotalPoints:     r.TotalPoints,
				Confidence:      r.Confidence,
				IsEdited:        r.IsEdited,
				Source:          r.Source,
			})
		}
		out = append(out, rec)
	}
	return out, nil
}

// Standings aggregates the saved matches of a competition.
func (s *BunStore) Standings(ctx context.Context, competitionID string) ([]Standing, error) {
	matches, err := s.Matches(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	return Aggregate(matches), nil
}

// Teams returns the registered roster of a competition in import order.
func (s *BunStore) Teams(ctx context.Context, competitionID string) ([]model.RegisteredTeam, error) {
	var rows []teamRow
	err := s.DB.NewSelect().
		Model(&rows).
		Where("t.competition_id = ?", competitionID).
		Order("t.seq ASC", "t.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", roster.ErrCompetitionNotFound, competitionID)
	}
	out := make([]model.RegisteredTeam, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.RegisteredTeam{ID: r.ID, Name: r.Name, Tag: r.Tag})
	}
	return out, nil
}

// ImportTeams replaces the roster of a competition.
func (s *BunStore) ImportTeams(ctx context.Context, competitionID string, teams []model.RegisteredTeam) error {
	return s.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*teamRow)(nil)).Where("competition_id = ?", competitionID).Exec(ctx); err != nil {
			return fmt.Errorf("clear roster: %w", err)
		}
		if len(teams) == 0 {
			return nil
		}
		rows := make([]*teamRow, 0, len(teams))
		for i, t := range teams {
			rows = append(rows, &teamRow{CompetitionID: competitionID, ID: t.ID, Name: t.Name, Tag: t.Tag, Seq: i})
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert roster: %w", err)
		}
		return nil
	})
}
