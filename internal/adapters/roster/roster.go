// Package roster provides the registered teams of each competition.
package roster

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/okian/podium/internal/domain/model"
)

// Store returns the registered teams of a competition.
type Store interface {
	Teams(ctx context.Context, competitionID string) ([]model.RegisteredTeam, error)
}

// Static is a read-only in-memory Store.
type Static struct {
	teams map[string][]model.RegisteredTeam
}

// NewStatic creates a Static store from competitionID -> teams.
func NewStatic(teams map[string][]model.RegisteredTeam) *Static {
	s := &Static{teams: make(map[string][]model.RegisteredTeam, len(teams))}
	for id, list := range teams {
		s.teams[id] = append([]model.RegisteredTeam(nil), list...)
	}
	return s
}

// Teams returns a copy of the competition roster.
func (s *Static) Teams(ctx context.Context, competitionID string) ([]model.RegisteredTeam, error) {
	list, ok := s.teams[competitionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCompetitionNotFound, competitionID)
	}
	return append([]model.RegisteredTeam(nil), list...), nil
}

// Competitions lists the known competition IDs in sorted order.
func (s *Static) Competitions() []string {
	ids := make([]string, 0, len(s.teams))
	for id := range s.teams {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Open loads a roster file, choosing the parser by extension.
func Open(path string) (*Static, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".xlsx":
		return LoadXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func validate(competitionID string, teams []model.RegisteredTeam) error {
	seen := make(map[string]struct{}, len(teams))
	for i, t := range teams {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("%w: %s team %d has no id", ErrInvalidRoster, competitionID, i+1)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: %s has duplicate team id %s", ErrInvalidRoster, competitionID, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}
