package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/podium/internal/domain/model"
)

// DefaultConfidence is assigned to entries whose answer carries no confidence.
// It sits above every synthetic fallback confidence.
const DefaultConfidence = 1.0

type wireTeam struct {
	Position   int      `json:"position"`
	TeamName   string   `json:"teamName"`
	Kills      int      `json:"kills"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type wireAnswer struct {
	Teams []wireTeam `json:"teams"`
}

// ParseAnswer extracts the {"teams":[...]} object from free text. Markdown
// fences and prose around the object are tolerated.
func ParseAnswer(text string) ([]model.ExtractedEntry, error) {
	body := stripFences(text)
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in answer", ErrParse)
	}

	var ans wireAnswer
	if err := json.Unmarshal([]byte(body[start:end+1]), &ans); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if ans.Teams == nil {
		return nil, fmt.Errorf("%w: missing teams", ErrParse)
	}

	out := make([]model.ExtractedEntry, 0, len(ans.Teams))
	for _, t := range ans.Teams {
		conf := DefaultConfidence
		if t.Confidence != nil {
			conf = min(max(*t.Confidence, 0), 1)
		}
		out = append(out, model.ExtractedEntry{
			Position:   t.Position,
			TeamLabel:  strings.TrimSpace(t.TeamName),
			Kills:      t.Kills,
			Confidence: conf,
		})
	}
	return out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
