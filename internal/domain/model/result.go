// Package model contains domain models passed between layers.
package model

import "sort"

// Result sources.
const (
	SourceAutomatic = "automatic"
	SourceManual    = "manual"
)

// ManualConfidence is the confidence carried by operator-entered rows.
const ManualConfidence = 1.0

// ScoredResult is a result row for one team in one match.
// TotalPoints always equals PlacementPoints + KillPoints.
type ScoredResult struct {
	TeamID          string  `json:"team_id"`
	TeamName        string  `json:"team_name"`
	Placement       int     `json:"placement"`
	Kills           int     `json:"kills"`
	PlacementPoints int     `json:"placement_points"`
	KillPoints      int     `json:"kill_points"`
	TotalPoints     int     `json:"total_points"`
	Confidence      float64 `json:"confidence"`
	IsEdited        bool    `json:"is_edited"`
	Source          string  `json:"source"`
}

// ManualResult is a row entered by an operator.
type ManualResult struct {
	TeamID    string `json:"team_id"`
	TeamName  string `json:"team_name"`
	Placement int    `json:"placement"`
	Kills     int    `json:"kills"`
}

// FinalResultSet is ordered by placement; no two rows share a placement or a team.
type FinalResultSet []ScoredResult

// SortByPlacement sorts rows by placement, keeping the relative order of ties.
func SortByPlacement(rows []ScoredResult) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Placement < rows[j].Placement
	})
}
