package results

import (
	"fmt"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
)

// Editor applies operator corrections to a result set without mutating it.
type Editor struct {
	scorer *Scorer
}

// NewEditor creates an Editor that rescores edited rows with table.
func NewEditor(table *scoring.Table) *Editor {
	return &Editor{scorer: NewScorer(table)}
}

// Edit changes the placement and kills of set[index]. On success it returns a
// new slice sorted by placement with the edited row rescored and flagged. On
// failure set is returned unchanged along with the error.
func (e *Editor) Edit(set []model.ScoredResult, index, placement, kills int) ([]model.ScoredResult, error) {
	if index < 0 || index >= len(set) {
		return set, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(set))
	}
	if err := CheckRange(placement, kills, e.scorer.table.MaxTeams()); err != nil {
		return set, err
	}
	for i, r := range set {
		if i != index && r.Placement == placement {
			return set, &ConflictError{Placement: placement, TeamID: r.TeamID, TeamName: r.TeamName, Reason: ReasonPlacementTaken}
		}
	}

	out := make([]model.ScoredResult, len(set))
	copy(out, set)
	row := &out[index]
	row.Placement = placement
	row.Kills = kills
	row.IsEdited = true
	e.scorer.rescore(row)
	model.SortByPlacement(out)

	return out, nil
}

// CheckRange validates a placement against [1, maxTeams] and kills against >= 0.
func CheckRange(placement, kills, maxTeams int) error {
	if placement < 1 || placement > maxTeams {
		return &ValidationError{Field: "placement", Value: placement, Min: 1, Max: maxTeams}
	}
	if kills < 0 {
		return &ValidationError{Field: "kills", Value: kills, Min: 0}
	}
	return nil
}
