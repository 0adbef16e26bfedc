// Package dedupe removes repeated (team, placement) rows from a scored result set.
package dedupe

import (
	"strconv"

	"github.com/okian/podium/internal/domain/model"
)

// KeyFunc derives the identity of a row.
type KeyFunc func(model.ScoredResult) string

// TeamPlacementKey is the default identity: teamID + "-" + placement.
func TeamPlacementKey(r model.ScoredResult) string {
	return r.TeamID + "-" + strconv.Itoa(r.Placement)
}

// Result is the output of one deduplication pass.
type Result struct {
	Unique  []model.ScoredResult
	Removed int
}

// Deduper drops every row whose key was already seen, keeping the first.
type Deduper struct {
	key KeyFunc
}

// New creates a Deduper keyed by TeamPlacementKey unless overridden.
func New(opts ...Option) *Deduper {
	d := &Deduper{key: TeamPlacementKey}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dedupe returns the first row for every key in input order. The input slice
// is left untouched. Running it on its own output removes nothing.
func (d *Deduper) Dedupe(rows []model.ScoredResult) Result {
	seen := make(map[string]struct{}, len(rows))
	unique := make([]model.ScoredResult, 0, len(rows))
	removed := 0

	for _, r := range rows {
		k := d.key(r)
		if _, ok := seen[k]; ok {
			removed++
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, r)
	}

	return Result{Unique: unique, Removed: removed}
}
