// Package consolidate merges the entry lists read from every image of a batch
// into a single position-indexed ranking.
package consolidate

import (
	"sort"

	"github.com/okian/podium/internal/domain/model"
)

// Report describes what a merge kept and dropped.
type Report struct {
	// Dropped counts entries whose position fell outside [1, maxTeams].
	Dropped int
	// Replaced counts entries superseded by a strictly more confident one.
	Replaced int
	// Seen counts every entry offered to the merge.
	Seen int
	// Filled counts positions taken from filler lists by Fill.
	Filled int
}

// Merge combines lists in upload order. For each position the first entry is
// kept until an entry with strictly greater confidence arrives; equal
// confidence keeps the earlier entry. The result has at most one entry per
// position, every position lies in [1, maxTeams], and it is sorted by position.
func Merge(lists [][]model.ExtractedEntry, maxTeams int) ([]model.ConsolidatedEntry, Report) {
	var rep Report
	byPosition := make(map[int]model.ExtractedEntry)

	for _, list := range lists {
		for _, e := range list {
			rep.Seen++
			if e.Position < 1 || e.Position > maxTeams {
				rep.Dropped++
				continue
			}
			current, ok := byPosition[e.Position]
			if !ok {
				byPosition[e.Position] = e
				continue
			}
			if e.Confidence > current.Confidence {
				byPosition[e.Position] = e
				rep.Replaced++
			}
		}
	}

	out := make([]model.ConsolidatedEntry, 0, len(byPosition))
	for _, e := range byPosition {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })

	return out, rep
}

// Fill merges filler lists among themselves and adds their entries only at
// positions base does not hold. Entries in base are never replaced, whatever
// the filler confidence.
func Fill(base []model.ConsolidatedEntry, filler [][]model.ExtractedEntry, maxTeams int) ([]model.ConsolidatedEntry, Report) {
	extra, rep := Merge(filler, maxTeams)
	rep.Replaced = 0

	taken := make(map[int]bool, len(base))
	for _, e := range base {
		taken[e.Position] = true
	}

	out := append(make([]model.ConsolidatedEntry, 0, len(base)+len(extra)), base...)
	for _, e := range extra {
		if taken[e.Position] {
			continue
		}
		out = append(out, e)
		rep.Filled++
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })

	return out, rep
}
