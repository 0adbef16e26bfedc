// Package results scores correlated entries and maintains the final result set:
// operator edits, manual rows and their reconciliation with automatic rows.
package results

import (
	"github.com/okian/podium/internal/domain/correlate"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
)

// Scorer turns matches into scored rows using a scoring table.
type Scorer struct {
	table *scoring.Table
}

// NewScorer creates a Scorer for table.
func NewScorer(table *scoring.Table) *Scorer {
	return &Scorer{table: table}
}

// Score produces one automatic row per match, in match order.
func (s *Scorer) Score(matches []correlate.Match) []model.ScoredResult {
	out := make([]model.ScoredResult, 0, len(matches))
	for _, m := range matches {
		r := s.Row(m.Team.ID, m.Team.Name, m.Entry.Position, m.Entry.Kills)
		r.Confidence = m.Entry.Confidence
		out = append(out, r)
	}
	return out
}

// Row builds an automatic row, clamping placement into [1, maxTeams] and kills to >= 0.
func (s *Scorer) Row(teamID, teamName string, placement, kills int) model.ScoredResult {
	placement = clamp(placement, 1, s.table.MaxTeams())
	if kills < 0 {
		kills = 0
	}
	r := model.ScoredResult{
		TeamID:    teamID,
		TeamName:  teamName,
		Placement: placement,
		Kills:     kills,
		Source:    model.SourceAutomatic,
	}
	s.rescore(&r)
	return r
}

// Manual converts an operator row. Range checks are the caller's job.
func (s *Scorer) Manual(m model.ManualResult) model.ScoredResult {
	r := model.ScoredResult{
		TeamID:     m.TeamID,
		TeamName:   m.TeamName,
		Placement:  m.Placement,
		Kills:      m.Kills,
		Confidence: model.ManualConfidence,
		Source:     model.SourceManual,
	}
	s.rescore(&r)
	return r
}

func (s *Scorer) rescore(r *model.ScoredResult) {
	r.PlacementPoints = s.table.PointsForPlacement(r.Placement)
	r.KillPoints = s.table.PointsForKills(r.Kills)
	r.TotalPoints = r.PlacementPoints + r.KillPoints
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
