// Package fallback synthesizes a complete ranking when extraction is unavailable,
// so later stages always receive one entry per position.
package fallback

import (
	"strconv"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/okian/podium/internal/domain/model"
)

const (
	maxBaseKills     = 14 // random part of the kill count: 0..14
	killsPerPosition = 2  // bonus per position above last place
	maxKills         = 25
	minKills         = 1
	minConfidence    = 0.85
	maxConfidence    = 0.95
)

// defaultNamePool labels synthetic rows. Position p uses pool[(p-1) % len(pool)].
var defaultNamePool = []string{ //nolint:gochecknoglobals // fixed label pool
	"Alpha Squad", "Bravo Force", "Charlie Team", "Delta Unit", "Echo Legion",
	"Foxtrot Clan", "Golf Rangers", "Hotel Strikers", "India Wolves", "Juliet Hawks",
	"Kilo Raiders", "Lima Titans", "Mike Vipers", "November Storm", "Oscar Phantoms",
	"Papa Reapers", "Quebec Knights", "Romeo Ghosts", "Sierra Falcons", "Tango Sharks",
	"Uniform Dragons", "Victor Cobras", "Whiskey Lions", "X-ray Scorpions", "Yankee Bears",
}

// Generator produces randomized full rankings.
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
	pool  []string
}

// Option applies a configuration option to a Generator.
type Option func(*Generator)

// WithSeed makes the generated numbers reproducible. Zero picks a random seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.faker = gofakeit.New(uint64(seed)) //nolint:gosec // seeds are never negative in practice
	}
}

// WithNamePool replaces the label pool. An empty pool is ignored.
func WithNamePool(pool []string) Option {
	return func(g *Generator) {
		if len(pool) > 0 {
			g.pool = append([]string(nil), pool...)
		}
	}
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		faker: gofakeit.New(0),
		pool:  defaultNamePool,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns exactly maxTeams entries, one per position 1..maxTeams.
// Kill counts lean upward for better placements; values are random, the shape is not.
func (g *Generator) Generate(maxTeams int) []model.ExtractedEntry {
	if maxTeams < 1 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	entries := make([]model.ExtractedEntry, 0, maxTeams)
	for pos := 1; pos <= maxTeams; pos++ {
		kills := g.faker.IntRange(0, maxBaseKills) + (maxTeams-pos)*killsPerPosition
		kills = min(max(minKills, kills), maxKills)

		entries = append(entries, model.ExtractedEntry{
			Position:   pos,
			TeamLabel:  g.label(pos),
			Kills:      kills,
			Confidence: g.faker.Float64Range(minConfidence, maxConfidence),
		})
	}
	return entries
}

func (g *Generator) label(pos int) string {
	name := g.pool[(pos-1)%len(g.pool)]
	if pos > len(g.pool) {
		return name + " " + strconv.Itoa(pos)
	}
	return name
}
