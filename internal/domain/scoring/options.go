package scoring

// Option applies a configuration option to a Table.
type Option func(*Table)

// WithRules replaces the default ladder with externally supplied rules.
// A nil placement map leaves the default ladder in place.
func WithRules(rules Rules) Option {
	return func(t *Table) {
		if rules.PlacementPoints == nil {
			return
		}
		t.custom = true
		t.rules = Rules{PlacementPoints: make(map[int]int, len(rules.PlacementPoints)), KillPoints: rules.KillPoints}
		for k, v := range rules.PlacementPoints {
			t.rules.PlacementPoints[k] = v
		}
	}
}

// WithKillPoints sets the kill multiplier used with the default ladder.
// Custom rules carry their own multiplier and ignore this option.
func WithKillPoints(points int) Option {
	return func(t *Table) {
		if points >= 0 {
			t.killPoints = points
		}
	}
}
