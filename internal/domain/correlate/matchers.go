package correlate

import (
	"strings"

	"github.com/okian/podium/internal/domain/model"
)

// Tier names, in evaluation order.
const (
	TierExactTag      = "exact_tag"
	TierTagFold       = "tag_ci"
	TierNameFold      = "name_ci"
	TierNameSubstring = "name_substring"
)

// Matcher reports whether a trimmed label identifies team.
type Matcher struct {
	Tier  string
	Match func(label string, team model.RegisteredTeam) bool
}

// DefaultMatchers returns the tiers from strictest to loosest.
func DefaultMatchers() []Matcher {
	return []Matcher{
		{Tier: TierExactTag, Match: exactTag},
		{Tier: TierTagFold, Match: tagFold},
		{Tier: TierNameFold, Match: nameFold},
		{Tier: TierNameSubstring, Match: nameSubstring},
	}
}

func exactTag(label string, team model.RegisteredTeam) bool {
	tag := strings.TrimSpace(team.Tag)
	return tag != "" && label == tag
}

func tagFold(label string, team model.RegisteredTeam) bool {
	tag := strings.TrimSpace(team.Tag)
	return tag != "" && strings.EqualFold(label, tag)
}

func nameFold(label string, team model.RegisteredTeam) bool {
	name := strings.TrimSpace(team.Name)
	return name != "" && strings.EqualFold(label, name)
}

func nameSubstring(label string, team model.RegisteredTeam) bool {
	name := strings.ToLower(strings.TrimSpace(team.Name))
	l := strings.ToLower(label)
	if name == "" || l == "" {
		return false
	}
	return strings.Contains(name, l) || strings.Contains(l, name)
}
