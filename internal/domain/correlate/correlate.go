// Package correlate maps extracted team labels onto registered roster teams.
package correlate

import (
	"strings"

	"github.com/okian/podium/internal/domain/model"
)

// ReusePolicy controls whether one roster team can be matched by several positions.
type ReusePolicy int

const (
	// ReuseAllow lets a team match any number of entries; later stages resolve collisions.
	ReuseAllow ReusePolicy = iota
	// ReuseReject reports later entries for an already matched team as unmatched.
	ReuseReject
)

// Unmatched reasons.
const (
	ReasonNoMatch     = "no_match"
	ReasonEmptyLabel  = "empty_label"
	ReasonTeamReused  = "team_already_matched"
	ReasonEmptyRoster = "empty_roster"
)

// Match pairs an entry with the roster team it resolved to.
type Match struct {
	Entry model.ConsolidatedEntry `json:"entry"`
	Team  model.RegisteredTeam    `json:"team"`
	Tier  string                  `json:"tier"`
}

// Unmatched is an entry no tier could resolve.
type Unmatched struct {
	Entry  model.ConsolidatedEntry `json:"entry"`
	Reason string                  `json:"reason"`
}

// Result is the output of a correlation pass.
type Result struct {
	Matched   []Match     `json:"matched"`
	Unmatched []Unmatched `json:"unmatched"`
}

// Correlator resolves labels with an ordered list of matchers.
type Correlator struct {
	matchers []Matcher
	reuse    ReusePolicy
}

// New creates a Correlator using DefaultMatchers unless overridden.
func New(opts ...Option) *Correlator {
	c := &Correlator{
		matchers: DefaultMatchers(),
		reuse:    ReuseAllow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Correlate resolves entries in order. For each entry every matcher is tried
// across the whole roster before moving to the next one, so a tag match
// always wins over a looser name match.
func (c *Correlator) Correlate(entries []model.ConsolidatedEntry, roster []model.RegisteredTeam) Result {
	res := Result{
		Matched:   make([]Match, 0, len(entries)),
		Unmatched: make([]Unmatched, 0),
	}
	used := make(map[string]struct{})

	for _, e := range entries {
		label := strings.TrimSpace(e.TeamLabel)
		switch {
		case len(roster) == 0:
			res.Unmatched = append(res.Unmatched, Unmatched{Entry: e, Reason: ReasonEmptyRoster})
			continue
		case label == "":
			res.Unmatched = append(res.Unmatched, Unmatched{Entry: e, Reason: ReasonEmptyLabel})
			continue
		}

		team, tier, ok := c.resolve(label, roster)
		if !ok {
			res.Unmatched = append(res.Unmatched, Unmatched{Entry: e, Reason: ReasonNoMatch})
			continue
		}
		if c.reuse == ReuseReject {
			if _, taken := used[team.ID]; taken {
				res.Unmatched = append(res.Unmatched, Unmatched{Entry: e, Reason: ReasonTeamReused})
				continue
			}
		}
		used[team.ID] = struct{}{}
		res.Matched = append(res.Matched, Match{Entry: e, Team: team, Tier: tier})
	}

	return res
}

func (c *Correlator) resolve(label string, roster []model.RegisteredTeam) (model.RegisteredTeam, string, bool) {
	for _, m := range c.matchers {
		for _, team := range roster {
			if m.Match(label, team) {
				return team, m.Tier, true
			}
		}
	}
	return model.RegisteredTeam{}, "", false
}
