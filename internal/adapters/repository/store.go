// Package repository persists committed match results and derives
// competition standings from them.
package repository

import (
	"context"
	"sort"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// MatchRecord is one committed match.
type MatchRecord struct {
	ID            string               `json:"id"`
	CompetitionID string               `json:"competition_id"`
	SessionID     string               `json:"session_id"`
	MaxTeams      int                  `json:"max_teams"`
	Results       model.FinalResultSet `json:"results"`
	CommittedAt   time.Time            `json:"committed_at"`
}

// Standing is a team's aggregate over every committed match of a competition.
type Standing struct {
	Rank        int    `json:"rank"`
	TeamID      string `json:"team_id"`
	TeamName    string `json:"team_name"`
	Matches     int    `json:"matches"`
	Kills       int    `json:"kills"`
	TotalPoints int    `json:"total_points"`
	BestPlace   int    `json:"best_placement"`
}

// ResultSaver stores a committed match.
type ResultSaver interface {
	SaveResults(ctx context.Context, rec MatchRecord) error
}

// ResultReader reads committed matches back.
type ResultReader interface {
	// Matches returns the matches of a competition, oldest first.
	Matches(ctx context.Context, competitionID string) ([]MatchRecord, error)
	// Standings returns the aggregated table of a competition.
	Standings(ctx context.Context, competitionID string) ([]Standing, error)
}

// Store is both a ResultSaver and a ResultReader.
type Store interface {
	ResultSaver
	ResultReader
}

// Aggregate folds matches into standings ordered by total points, then kills,
// then best placement, then team ID. Ranks start at 1.
func Aggregate(matches []MatchRecord) []Standing {
	byTeam := make(map[string]*Standing)
	for _, m := range matches {
		for _, r := range m.Results {
			s, ok := byTeam[r.TeamID]
			if !ok {
				s = &Standing{TeamID: r.TeamID, TeamName: r.TeamName, BestPlace: r.Placement}
				byTeam[r.TeamID] = s
			}
			s.Matches++
			s.Kills += r.Kills
			s.TotalPoints += r.TotalPoints
			if r.Placement < s.BestPlace {
				s.BestPlace = r.Placement
			}
		}
	}

	out := make([]Standing, 0, len(byTeam))
	for _, s := range byTeam {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.Kills != b.Kills {
			return a.Kills > b.Kills
		}
		if a.BestPlace != b.BestPlace {
			return a.BestPlace < b.BestPlace
		}
		return a.TeamID < b.TeamID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func validateRecord(rec MatchRecord) error {
	if rec.ID == "" || rec.CompetitionID == "" {
		return ErrInvalidRecord
	}
	return nil
}
