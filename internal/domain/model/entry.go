package model

// ExtractedEntry is one (position, label, kills) guess read from a screenshot.
// Entries are values; a better guess replaces an entry, it never edits one.
type ExtractedEntry struct {
	Position   int     `json:"position"`
	TeamLabel  string  `json:"team_label"`
	Kills      int     `json:"kills"`
	Confidence float64 `json:"confidence"`
}

// ConsolidatedEntry is the surviving entry for a position after all images
// of a batch were merged.
type ConsolidatedEntry = ExtractedEntry
