package model

// RegisteredTeam is an authoritative roster entry for a competition.
type RegisteredTeam struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Tag  string `json:"tag" yaml:"tag"`
}
