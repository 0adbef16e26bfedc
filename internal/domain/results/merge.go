package results

import (
	"errors"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
)

// Rejection reasons for manual rows.
const (
	ReasonPlacementTaken = "placement_taken"
	ReasonTeamTaken      = "team_taken"
	ReasonOutOfRange     = "out_of_range"
)

// Rejection is a manual row that could not be merged.
type Rejection struct {
	Row    model.ManualResult `json:"row"`
	Reason string             `json:"reason"`
}

// Reconciliation is the merged set plus the manual rows left out of it.
type Reconciliation struct {
	Results  model.FinalResultSet `json:"results"`
	Rejected []Rejection          `json:"rejected"`
}

// Reconciler merges operator rows into the automatic set.
type Reconciler struct {
	scorer *Scorer
}

// NewReconciler creates a Reconciler that scores manual rows with table.
func NewReconciler(table *scoring.Table) *Reconciler {
	return &Reconciler{scorer: NewScorer(table)}
}

// Reconcile keeps every automatic row as is and appends each manual row whose
// placement and team are both still free, checking against automatic rows and
// manual rows accepted before it. The result is sorted by placement.
func (r *Reconciler) Reconcile(auto []model.ScoredResult, manual []model.ManualResult) Reconciliation {
	out := make([]model.ScoredResult, 0, len(auto)+len(manual))
	out = append(out, auto...)
	rejected := make([]Rejection, 0)

	for _, m := range manual {
		if err := r.Check(out, m); err != nil {
			rejected = append(rejected, Rejection{Row: m, Reason: reasonOf(err)})
			continue
		}
		out = append(out, r.scorer.Manual(m))
	}
	model.SortByPlacement(out)

	return Reconciliation{Results: out, Rejected: rejected}
}

// Check reports why m cannot join set, or nil if it can.
func (r *Reconciler) Check(set []model.ScoredResult, m model.ManualResult) error {
	if err := CheckRange(m.Placement, m.Kills, r.scorer.table.MaxTeams()); err != nil {
		return err
	}
	for _, row := range set {
		if row.Placement == m.Placement {
			return &ConflictError{Placement: row.Placement, TeamID: row.TeamID, TeamName: row.TeamName, Reason: ReasonPlacementTaken}
		}
		if row.TeamID == m.TeamID {
			return &ConflictError{Placement: row.Placement, TeamID: row.TeamID, TeamName: row.TeamName, Reason: ReasonTeamTaken}
		}
	}
	return nil
}

func reasonOf(err error) string {
	var c *ConflictError
	if errors.As(err, &c) {
		return c.Reason
	}
	return ReasonOutOfRange
}

// TeamCollision returns a ConflictError for the first team that holds more
// than one row in set, or nil.
func TeamCollision(set []model.ScoredResult) error {
	seen := make(map[string]model.ScoredResult, len(set))
	for _, row := range set {
		if first, ok := seen[row.TeamID]; ok {
			return &ConflictError{Placement: first.Placement, TeamID: first.TeamID, TeamName: first.TeamName, Reason: ReasonTeamTaken}
		}
		seen[row.TeamID] = row
	}
	return nil
}
