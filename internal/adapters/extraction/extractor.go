// Package extraction reads leaderboard screenshots through a vision model and
// guards those calls with a single rate-limit retry and a synthetic fallback.
package extraction

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// Image is one uploaded screenshot. Name, Size and ModTime identify it for caching.
type Image struct {
	Name     string
	Size     int64
	ModTime  time.Time
	MIMEType string
	Data     []byte
}

// Extractor reads ranking entries from one image.
type Extractor interface {
	Extract(ctx context.Context, img Image, maxTeams int) ([]model.ExtractedEntry, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, img Image, maxTeams int) ([]model.ExtractedEntry, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, img Image, maxTeams int) ([]model.ExtractedEntry, error) {
	return f(ctx, img, maxTeams)
}

// Prompt builds the instruction sent alongside an image.
func Prompt(maxTeams int) string {
	return fmt.Sprintf(`You are reading a battle royale match results screenshot.
List every team visible with its final position, team name and total kills.
Positions are between 1 and %d. Do not invent teams that are not visible.
Answer with JSON only, in exactly this shape:
{"teams":[{"position":1,"teamName":"NAME","kills":0}]}`, maxTeams)
}
