// Package scoring turns placements and kill counts into points.
package scoring

import (
	"sort"
	"strconv"
	"strings"
)

// Default ladder constants.
const (
	DefaultKillPoints   = 1
	ladderTailStart     = 11 // 11th..15th
	ladderTailEnd       = 15
	ladderTailPoints    = 2
	ladderOverflowPoint = 1 // 16th and beyond
)

// ladderHead holds the points for placements 1..10.
var ladderHead = [...]int{25, 20, 18, 16, 14, 12, 10, 8, 6, 4} //nolint:gochecknoglobals // fixed ladder

// Rules is a scoring configuration: points per placement plus a per-kill multiplier.
// Placements missing from PlacementPoints are worth zero.
type Rules struct {
	PlacementPoints map[int]int `json:"placementPoints"`
	KillPoints      int         `json:"killPoints"`
}

// DefaultRules builds the default ladder for placements 1..maxTeams.
func DefaultRules(maxTeams int) Rules {
	points := make(map[int]int, maxTeams)
	for p := 1; p <= maxTeams; p++ {
		points[p] = ladderPoints(p)
	}
	return Rules{PlacementPoints: points, KillPoints: DefaultKillPoints}
}

func ladderPoints(placement int) int {
	switch {
	case placement >= 1 && placement <= len(ladderHead):
		return ladderHead[placement-1]
	case placement >= ladderTailStart && placement <= ladderTailEnd:
		return ladderTailPoints
	default:
		return ladderOverflowPoint
	}
}

// RulesFromConfig converts the string-keyed form used by configuration files
// and request payloads. Keys that are not positive integers are skipped.
func RulesFromConfig(placementPoints map[string]int, killPoints int) (Rules, []string) {
	rules := Rules{PlacementPoints: make(map[int]int, len(placementPoints)), KillPoints: killPoints}
	var skipped []string
	for k, v := range placementPoints {
		p, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || p < 1 {
			skipped = append(skipped, k)
			continue
		}
		rules.PlacementPoints[p] = v
	}
	sort.Strings(skipped)
	return rules, skipped
}

// Table resolves points for one processing run. It is immutable once built.
type Table struct {
	maxTeams   int
	rules      Rules
	custom     bool
	killPoints int
}

// NewTable builds a table for maxTeams. Without WithRules it uses the default ladder.
func NewTable(maxTeams int, opts ...Option) *Table {
	t := &Table{maxTeams: maxTeams, killPoints: DefaultKillPoints}
	for _, opt := range opts {
		opt(t)
	}
	if !t.custom {
		t.rules = DefaultRules(maxTeams)
		t.rules.KillPoints = t.killPoints
	}
	return t
}

// PointsForPlacement returns the points for placement, zero when the table has no entry.
func (t *Table) PointsForPlacement(placement int) int {
	return t.rules.PlacementPoints[placement]
}

// PointsForKills returns kills multiplied by the kill multiplier.
func (t *Table) PointsForKills(kills int) int {
	return kills * t.rules.KillPoints
}

// MaxTeams returns the competition size the table was built for.
func (t *Table) MaxTeams() int { return t.maxTeams }

// Custom reports whether the table came from externally supplied rules.
func (t *Table) Custom() bool { return t.custom }

// Rules returns a copy of the rules in effect.
func (t *Table) Rules() Rules {
	cp := Rules{PlacementPoints: make(map[int]int, len(t.rules.PlacementPoints)), KillPoints: t.rules.KillPoints}
	for k, v := range t.rules.PlacementPoints {
		cp.PlacementPoints[k] = v
	}
	return cp
}
