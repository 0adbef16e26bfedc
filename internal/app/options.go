package service

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/okian/podium/internal/adapters/cache"
	"github.com/okian/podium/internal/adapters/extraction"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/adapters/roster"
	"github.com/okian/podium/internal/domain/correlate"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of batch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of waiting batches.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithExtractor sets the image extraction backend.
func WithExtractor(ex extraction.Extractor) Option {
	return func(s *Service) {
		if ex != nil {
			s.extractor = ex
		}
	}
}

// WithFallback sets the source of synthetic rankings.
func WithFallback(fb extraction.FallbackSource) Option {
	return func(s *Service) {
		if fb != nil {
			s.fallback = fb
		}
	}
}

// WithCache sets the shared extraction cache.
func WithCache(c cache.Store) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithRoster sets where competition rosters are read from.
func WithRoster(r roster.Store) Option {
	return func(s *Service) {
		if r != nil {
			s.roster = r
		}
	}
}

// WithResultStore sets where committed matches are saved.
func WithResultStore(r repository.Store) Option {
	return func(s *Service) {
		if r != nil {
			s.store = r
		}
	}
}

// WithInterImageDelay sets the pause between two extraction calls. Zero disables pacing.
func WithInterImageDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.interImageDelay = d
		}
	}
}

// WithRateLimitWait sets the wait used when a rate limit names no delay.
func WithRateLimitWait(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.rateLimitWait = d
		}
	}
}

// WithSleeper replaces the timer used while waiting out a rate limit.
func WithSleeper(sl extraction.Sleeper) Option {
	return func(s *Service) {
		if sl != nil {
			s.sleeper = sl
		}
	}
}

// WithDefaultMaxTeams sets the lobby size used when a batch names none.
func WithDefaultMaxTeams(n int) Option {
	return func(s *Service) {
		if n > 0 && n <= MaxLobbySize {
			s.defaultMaxTeams = n
		}
	}
}

// WithDefaultRules sets the scoring rules used when a batch brings none.
func WithDefaultRules(r scoring.Rules) Option {
	return func(s *Service) {
		if r.PlacementPoints != nil {
			s.defaultRules = &r
		}
	}
}

// WithKillPoints sets the kill multiplier of the default ladder.
func WithKillPoints(points int) Option {
	return func(s *Service) {
		if points >= 0 {
			s.killPoints = points
		}
	}
}

// WithReusePolicy sets how a team matched by several positions is handled.
func WithReusePolicy(p correlate.ReusePolicy) Option {
	return func(s *Service) {
		s.reuse = p
	}
}

// WithClock sets the time source for session and commit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTracer sets the tracer for batch spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}
