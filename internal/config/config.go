// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and PODIUM_ environment variables.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Team reuse policies accepted by TeamReuse.
const (
	TeamReuseAllow  = "allow"
	TeamReuseReject = "reject"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory batch job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of batch workers. One keeps batches strictly sequential.
	WorkerCount int `koanf:"worker_count"`

	// MaxTeams is the default competition size when a batch does not name one.
	MaxTeams int `koanf:"max_teams"`

	// InterImageDelayMS is the pause enforced between two extraction calls.
	InterImageDelayMS int `koanf:"inter_image_delay_ms"`

	// RateLimitWaitMS is used when a quota error carries no retry hint.
	RateLimitWaitMS int `koanf:"rate_limit_wait_ms"`

	// CacheSize bounds the extraction cache (images). Zero or less is unbounded.
	CacheSize int `koanf:"cache_size"`

	// TeamReuse is the correlation policy for a team matched by several positions.
	TeamReuse string `koanf:"team_reuse"`

	// KillPoints and PlacementPoints override the default scoring ladder.
	KillPoints      int            `koanf:"kill_points"`
	PlacementPoints map[string]int `koanf:"placement_points"`

	// Extraction service settings.
	ExtractionEndpoint  string `koanf:"extraction_endpoint"`
	ExtractionModel     string `koanf:"extraction_model"`
	ExtractionAPIKey    string `koanf:"extraction_api_key"`
	ExtractionTimeoutMS int    `koanf:"extraction_timeout_ms"`

	// RosterPath points at a YAML or XLSX roster file. Empty uses the database.
	RosterPath string `koanf:"roster_path"`

	// DatabaseDSN is the Postgres DSN for results (and roster when RosterPath is empty).
	DatabaseDSN string `koanf:"database_dsn"`

	// FallbackSeed seeds synthetic rankings; zero draws a fresh seed per process.
	FallbackSeed int64 `koanf:"fallback_seed"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueueSize:           64,
		WorkerCount:         1,
		MaxTeams:            25,
		InterImageDelayMS:   4000,
		RateLimitWaitMS:     35000,
		CacheSize:           512,
		TeamReuse:           TeamReuseAllow,
		KillPoints:          1,
		ExtractionEndpoint:  "https://generativelanguage.googleapis.com/v1beta",
		ExtractionModel:     "gemini-2.0-flash",
		ExtractionTimeoutMS: 60000,
	}
}

// InterImageDelay returns InterImageDelayMS as a duration.
func (c *Config) InterImageDelay() time.Duration {
	return time.Duration(c.InterImageDelayMS) * time.Millisecond
}

// RateLimitWait returns RateLimitWaitMS as a duration.
func (c *Config) RateLimitWait() time.Duration {
	return time.Duration(c.RateLimitWaitMS) * time.Millisecond
}

// ExtractionTimeout returns ExtractionTimeoutMS as a duration.
func (c *Config) ExtractionTimeout() time.Duration {
	return time.Duration(c.ExtractionTimeoutMS) * time.Millisecond
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxTeams < 1:
		return fmt.Errorf("%w: max_teams must be positive", ErrInvalidConfig)
	case c.InterImageDelayMS < 0:
		return fmt.Errorf("%w: inter_image_delay_ms must not be negative", ErrInvalidConfig)
	case c.RateLimitWaitMS < 0:
		return fmt.Errorf("%w: rate_limit_wait_ms must not be negative", ErrInvalidConfig)
	case c.KillPoints < 0:
		return fmt.Errorf("%w: kill_points must not be negative", ErrInvalidConfig)
	}
	switch c.TeamReuse {
	case TeamReuseAllow, TeamReuseReject:
	default:
		return fmt.Errorf("%w: team_reuse must be %q or %q", ErrInvalidConfig, TeamReuseAllow, TeamReuseReject)
	}
	return nil
}
