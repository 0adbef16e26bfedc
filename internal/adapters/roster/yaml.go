package roster

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/podium/internal/domain/model"
)

type yamlFile struct {
	Competitions map[string][]model.RegisteredTeam `yaml:"competitions"`
}

// ParseYAML reads a roster of the form
//
//	competitions:
//	  cup-1:
//	    - {id: T1, name: Alpha, tag: A1}
func ParseYAML(r io.Reader) (*Static, error) {
	var f yamlFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	}
	for id, teams := range f.Competitions {
		if err := validate(id, teams); err != nil {
			return nil, err
		}
	}
	return NewStatic(f.Competitions), nil
}

// LoadYAML reads a YAML roster file.
func LoadYAML(path string) (*Static, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer fh.Close()
	return ParseYAML(fh)
}
