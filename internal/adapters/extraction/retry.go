package extraction

import (
	"context"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// DefaultRateLimitWait is used when a rate-limit answer carries no delay.
const DefaultRateLimitWait = 35 * time.Second

// State is a step in the life of one image extraction.
type State string

const (
	StateIdle        State = "idle"
	StateRequesting  State = "requesting"
	StateRateLimited State = "rate_limited"
	StateWaiting     State = "waiting"
	StateSuccess     State = "success"
	StateFailed      State = "failed"
)

// FallbackSource produces a synthetic ranking when extraction fails.
type FallbackSource interface {
	Generate(maxTeams int) []model.ExtractedEntry
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Outcome describes how the entries for one image were obtained.
type Outcome struct {
	Entries  []model.ExtractedEntry
	States   []State
	Attempts int
	Waited   time.Duration
	// Fallback is true when Entries are synthetic.
	Fallback bool
	// Err is the last extraction error, absorbed by the fallback.
	Err error
}

// Policy runs an Extractor with one retry after a rate limit.
type Policy struct {
	defaultWait time.Duration
	sleep       Sleeper
	fallback    FallbackSource
	logger      logger.Logger
}

// NewPolicy creates a Policy that falls back to fb.
func NewPolicy(fb FallbackSource, opts ...PolicyOption) *Policy {
	p := &Policy{
		defaultWait: DefaultRateLimitWait,
		sleep:       sleepContext,
		fallback:    fb,
		logger:      logger.Get().Named("extraction"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run extracts img. Success returns real entries. A rate limit waits for the
// requested delay and retries once. Any other failure, or a failed retry,
// substitutes fallback entries. A configuration error or a cancelled context
// is returned as an error and no entries are produced.
func (p *Policy) Run(ctx context.Context, ex Extractor, img Image, maxTeams int) (Outcome, error) {
	out := Outcome{States: []State{StateIdle}}

	entries, err := p.attempt(ctx, ex, img, maxTeams, &out)
	if err == nil {
		return p.succeed(out, entries), nil
	}
	if fatal := p.fatal(ctx, err, &out); fatal != nil {
		return out, fatal
	}

	if Classify(err) == KindRateLimit {
		out.States = append(out.States, StateRateLimited, StateWaiting)
		wait := RetryDelay(err, p.defaultWait)
		metrics.RecordRateLimited()
		p.logger.Warn(ctx, "rate limited, waiting before retry",
			logger.String("image", img.Name),
			logger.Duration("wait", wait),
		)
		if serr := p.sleep(ctx, wait); serr != nil {
			out.States = append(out.States, StateFailed)
			out.Err = serr
			return out, serr
		}
		out.Waited = wait

		metrics.RecordRetry()
		entries, err = p.attempt(ctx, ex, img, maxTeams, &out)
		if err == nil {
			return p.succeed(out, entries), nil
		}
		if fatal := p.fatal(ctx, err, &out); fatal != nil {
			return out, fatal
		}
	}

	out.States = append(out.States, StateFailed)
	out.Err = err
	out.Fallback = true
	out.Entries = p.fallback.Generate(maxTeams)

	kind := Classify(err)
	if kind == KindParse {
		metrics.RecordParseError()
	}
	metrics.RecordFallback()
	p.logger.Warn(ctx, "extraction failed, using fallback ranking",
		logger.String("image", img.Name),
		logger.String("kind", kind.String()),
		logger.Int("attempts", out.Attempts),
		logger.Error(err),
	)
	return out, nil
}

func (p *Policy) attempt(ctx context.Context, ex Extractor, img Image, maxTeams int, out *Outcome) ([]model.ExtractedEntry, error) {
	out.States = append(out.States, StateRequesting)
	out.Attempts++
	start := time.Now()
	entries, err := ex.Extract(ctx, img, maxTeams)
	metrics.RecordExtractionLatency(float64(time.Since(start).Milliseconds()))
	return entries, err
}

func (p *Policy) succeed(out Outcome, entries []model.ExtractedEntry) Outcome {
	out.States = append(out.States, StateSuccess)
	out.Entries = entries
	return out
}

// fatal returns the error that must abort the batch, if any.
func (p *Policy) fatal(ctx context.Context, err error, out *Outcome) error {
	if Classify(err) == KindConfiguration {
		out.States = append(out.States, StateFailed)
		out.Err = err
		return err
	}
	if cerr := ctx.Err(); cerr != nil {
		out.States = append(out.States, StateFailed)
		out.Err = cerr
		return cerr
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
