package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/okian/podium/internal/adapters/cache"
	"github.com/okian/podium/internal/adapters/extraction"
	"github.com/okian/podium/internal/domain/consolidate"
	"github.com/okian/podium/internal/domain/correlate"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/results"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// BatchResult is the output of one pipeline run.
type BatchResult struct {
	Results    model.FinalResultSet
	Unmatched  []correlate.Unmatched
	Images     []ImageReport
	Overflow   []OverflowWarning
	Duplicates int
}

// ProcessBatch runs the ranking pipeline over req without creating a session.
// Images are processed in order; every real extraction call after the first
// starts at least the inter-image delay after the previous call finished.
// Fallback rows only fill positions no real extraction reported. A partial
// BatchResult is returned with any error.
func (s *Service) ProcessBatch(ctx context.Context, req BatchRequest) (res BatchResult, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "ProcessBatch",
		attribute.String("competition", req.CompetitionID),
		attribute.Int("images", len(req.Images)),
	)
	defer func() {
		status := "ready"
		if err != nil {
			status = "failed"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		metrics.RecordBatch(status)
		metrics.RecordBatchDuration(float64(time.Since(start).Milliseconds()))
	}()

	maxTeams := req.MaxTeams
	if maxTeams == 0 {
		maxTeams = s.defaultMaxTeams
	}
	if len(req.Images) == 0 {
		return res, fmt.Errorf("%w: no images", ErrInvalidBatch)
	}

	teams, err := s.roster.Teams(ctx, req.CompetitionID)
	if err != nil {
		return res, fmt.Errorf("load roster %s: %w", req.CompetitionID, err)
	}
	if len(teams) == 0 {
		return res, &CorrelationError{CompetitionID: req.CompetitionID, Reason: correlate.ReasonEmptyRoster}
	}

	lists, reports, err := s.extractAll(ctx, req.Images, maxTeams)
	res.Images = reports
	if err != nil {
		return res, err
	}

	var extracted, synthetic [][]model.ExtractedEntry
	for i, list := range lists {
		if reports[i].Source == metrics.SourceFallback {
			synthetic = append(synthetic, list)
			continue
		}
		extracted = append(extracted, list)
	}
	merged, report := consolidate.Merge(extracted, maxTeams)
	merged, filled := consolidate.Fill(merged, synthetic, maxTeams)
	if dropped := report.Dropped + filled.Dropped; dropped > 0 {
		res.Overflow = append(res.Overflow, OverflowWarning{Stage: StageConsolidation, Limit: maxTeams, Dropped: dropped})
		metrics.RecordOverflowDropped(dropped)
	}
	if filled.Filled > 0 {
		s.logger.Warn(ctx, "positions filled from fallback data", logger.Int("positions", filled.Filled))
	}

	corr := s.correlator.Correlate(merged, teams)
	res.Unmatched = corr.Unmatched
	metrics.RecordUnmatched(len(corr.Unmatched))
	for _, m := range corr.Matched {
		metrics.RecordCorrelationTier(m.Tier)
	}
	if len(corr.Matched) == 0 {
		labels := make([]string, 0, len(corr.Unmatched))
		for _, u := range corr.Unmatched {
			labels = append(labels, u.Entry.TeamLabel)
		}
		return res, &CorrelationError{CompetitionID: req.CompetitionID, Reason: correlate.ReasonNoMatch, Unmatched: labels}
	}

	table := s.table(maxTeams, req.Rules)
	scored := results.NewScorer(table).Score(corr.Matched)
	unique := s.deduper.Dedupe(scored)
	res.Duplicates = unique.Removed
	metrics.RecordDuplicatesRemoved(unique.Removed)

	rows := unique.Unique
	if limit := min(maxTeams, len(teams)); len(rows) > limit {
		dropped := len(rows) - limit
		rows = rows[:limit]
		res.Overflow = append(res.Overflow, OverflowWarning{Stage: StageResults, Limit: limit, Dropped: dropped})
		metrics.RecordOverflowDropped(dropped)
	}
	res.Results = rows

	for _, w := range res.Overflow {
		s.logger.Warn(ctx, "rows dropped", logger.String("stage", w.Stage), logger.Int("limit", w.Limit), logger.Int("dropped", w.Dropped))
	}
	s.logger.Info(ctx, "batch processed",
		logger.String("competition", req.CompetitionID),
		logger.Int("images", len(req.Images)),
		logger.Int("results", len(rows)),
		logger.Int("unmatched", len(corr.Unmatched)),
		logger.Int("duplicates", unique.Removed),
		logger.Duration("took", time.Since(start)),
	)
	return res, nil
}

// extractAll returns one entry list per image. Cached images skip both the
// extraction call and the pacing delay. Fallback entries are never cached.
func (s *Service) extractAll(ctx context.Context, images []extraction.Image, maxTeams int) ([][]model.ExtractedEntry, []ImageReport, error) {
	policy := extraction.NewPolicy(s.fallback,
		extraction.WithDefaultWait(s.rateLimitWait),
		extraction.WithSleeper(s.sleeper),
		extraction.WithPolicyLogger(s.logger.Named("extraction")),
	)

	// nil until the first real call; reset when each call finishes.
	var limiter *rate.Limiter

	lists := make([][]model.ExtractedEntry, 0, len(images))
	reports := make([]ImageReport, 0, len(images))
	for _, img := range images {
		key := cache.NewKey(img.Name, img.Size, img.ModTime)
		if entries, ok := s.cache.Get(ctx, key); ok {
			lists = append(lists, entries)
			reports = append(reports, ImageReport{Name: img.Name, Source: metrics.SourceCache, Entries: len(entries)})
			metrics.RecordImageProcessed(metrics.SourceCache)
			continue
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return lists, reports, fmt.Errorf("pace extraction: %w", err)
			}
		}

		out, err := s.extractImage(ctx, policy, img, maxTeams)
		limiter = s.pause()
		report := ImageReport{
			Name:     img.Name,
			Source:   metrics.SourceExtracted,
			Entries:  len(out.Entries),
			Attempts: out.Attempts,
			States:   out.States,
			Fallback: out.Fallback,
		}
		if out.Err != nil {
			report.Error = out.Err.Error()
		}
		if err != nil {
			report.Error = err.Error()
			reports = append(reports, report)
			return lists, reports, fmt.Errorf("extract %s: %w", img.Name, err)
		}
		if out.Fallback {
			report.Source = metrics.SourceFallback
		} else {
			s.cache.Put(ctx, key, out.Entries)
		}
		metrics.RecordImageProcessed(report.Source)

		lists = append(lists, out.Entries)
		reports = append(reports, report)
	}
	return lists, reports, nil
}

// pause returns a limiter whose next token arrives one inter-image delay
// from now, or nil when pacing is disabled.
func (s *Service) pause() *rate.Limiter {
	if s.interImageDelay <= 0 {
		return nil
	}
	l := rate.NewLimiter(rate.Every(s.interImageDelay), 1)
	l.Allow()
	return l
}

func (s *Service) extractImage(ctx context.Context, policy *extraction.Policy, img extraction.Image, maxTeams int) (extraction.Outcome, error) {
	ctx, span := s.startSpan(ctx, "ExtractImage",
		attribute.String("image", img.Name),
		attribute.Int64("size", img.Size),
	)
	defer span.End()

	out, err := policy.Run(ctx, s.extractor, img, maxTeams)
	span.SetAttributes(
		attribute.Int("attempts", out.Attempts),
		attribute.Bool("fallback", out.Fallback),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, extraction.ErrNotConfigured) {
			s.logger.Error(ctx, "extraction service is not configured", logger.Error(err))
		}
	}
	return out, err
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
