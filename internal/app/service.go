// Package service runs ranking batches: it extracts entries from uploaded
// screenshots, consolidates and correlates them against a roster, scores them,
// and keeps each batch as a session the operator can review and commit.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/podium/internal/adapters/cache"
	"github.com/okian/podium/internal/adapters/extraction"
	eventqueue "github.com/okian/podium/internal/adapters/mq/queue"
	workerpool "github.com/okian/podium/internal/adapters/mq/worker"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/adapters/roster"
	"github.com/okian/podium/internal/domain/correlate"
	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/fallback"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Lobby limits.
const (
	// MaxLobbySize is the largest lobby a batch may declare.
	MaxLobbySize = 100
	// DefaultMaxTeams is used when neither the batch nor the service names a size.
	DefaultMaxTeams = 25
)

// BatchRequest is a set of screenshots of one match.
type BatchRequest struct {
	CompetitionID string
	// MaxTeams is the lobby size; zero uses the service default.
	MaxTeams int
	// Rules overrides the default scoring for this batch.
	Rules  *scoring.Rules
	Images []extraction.Image
}

// Service implements the API dependencies for ranking batches.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	extractor extraction.Extractor
	fallback  extraction.FallbackSource
	cache     cache.Store
	roster    roster.Store
	store     repository.Store
	sleeper   extraction.Sleeper

	// Core components
	sessions   *sessionStore
	deduper    *dedupe.Deduper
	correlator *correlate.Correlator
	jobQueue   eventqueue.Queue
	workerPool *workerpool.Pool
	tracer     trace.Tracer

	// Configuration
	workerCount     int
	queueSize       int
	interImageDelay time.Duration
	rateLimitWait   time.Duration
	defaultMaxTeams int
	defaultRules    *scoring.Rules
	killPoints      int
	reuse           correlate.ReusePolicy
	now             func() time.Time

	// State
	started bool

	logger logger.Logger
}

// New constructs a Service. Without options it uses an unconfigured
// extraction client, an empty roster and in-memory result storage.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     1,
		queueSize:       64,
		interImageDelay: 4 * time.Second,
		rateLimitWait:   extraction.DefaultRateLimitWait,
		defaultMaxTeams: DefaultMaxTeams,
		killPoints:      1,
		reuse:           correlate.ReuseAllow,
		now:             time.Now,
		sessions:        newSessionStore(),
		deduper:         dedupe.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.extractor == nil {
		s.extractor = extraction.NewHTTPClient()
	}
	if s.fallback == nil {
		s.fallback = fallback.New()
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryStore()
	}
	if s.roster == nil {
		s.roster = roster.NewStatic(nil)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("github.com/okian/podium/internal/app")
	}
	s.correlator = correlate.New(correlate.WithReusePolicy(s.reuse))

	return s
}

// Start creates the job queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.jobQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s)
	// workers outlive the request that started the service
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "ranking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("interImageDelay", s.interImageDelay),
	)
	return nil
}

// Stop closes the queue and waits for running batches to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping ranking service...")

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "ranking service stopped")
}

// Submit validates req, stores it as a queued session and enqueues it.
func (s *Service) Submit(ctx context.Context, req BatchRequest) (Session, error) {
	s.mu.RLock()
	started, q := s.started, s.jobQueue
	s.mu.RUnlock()
	if !started {
		return Session{}, ErrNotStarted
	}

	sess, err := s.newSession(req)
	if err != nil {
		return Session{}, err
	}
	s.sessions.add(sess)

	job := model.BatchJob{
		SessionID:     sess.ID,
		CompetitionID: sess.CompetitionID,
		Images:        len(req.Images),
		EnqueuedAt:    sess.CreatedAt,
	}
	if !q.Enqueue(ctx, job) {
		s.sessions.remove(sess.ID)
		metrics.RecordBatch("rejected")
		return Session{}, ErrQueueFull
	}
	s.updateSessionGauge()

	s.logger.Info(ctx, "batch queued",
		logger.String("session", sess.ID),
		logger.String("competition", sess.CompetitionID),
		logger.Int("images", len(req.Images)),
	)
	return sess.clone(), nil
}

// RunBatch creates a session for req and processes it before returning.
func (s *Service) RunBatch(ctx context.Context, req BatchRequest) (Session, error) {
	sess, err := s.newSession(req)
	if err != nil {
		return Session{}, err
	}
	s.sessions.add(sess)
	s.updateSessionGauge()

	err = s.process(ctx, sess.ID)
	s.updateSessionGauge()
	out, gerr := s.Session(ctx, sess.ID)
	if gerr != nil {
		return Session{}, gerr
	}
	return out, err
}

// Process runs a queued job. It is called by the worker pool.
func (s *Service) Process(ctx context.Context, job workerpool.Job) error {
	defer s.updateSessionGauge()
	return s.process(ctx, job.SessionID)
}

func (s *Service) process(ctx context.Context, sessionID string) error {
	e, ok := s.sessions.get(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	e.mu.Lock()
	if e.s.Status != StatusQueued {
		e.mu.Unlock()
		return nil
	}
	e.s.Status = StatusProcessing
	e.s.UpdatedAt = s.now()
	req := BatchRequest{
		CompetitionID: e.s.CompetitionID,
		MaxTeams:      e.s.MaxTeams,
		Rules:         &e.s.Rules,
		Images:        e.s.images,
	}
	e.mu.Unlock()

	res, err := s.ProcessBatch(ctx, req)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.s.images = nil
	e.s.UpdatedAt = s.now()
	e.s.Images = res.Images
	e.s.Overflow = res.Overflow
	e.s.Unmatched = res.Unmatched
	if err != nil {
		e.s.Status = StatusFailed
		e.s.Error = err.Error()
		return err
	}
	e.s.Status = StatusReady
	e.s.Results = res.Results
	e.s.Duplicates = res.Duplicates
	return nil
}

// Session returns a snapshot of a session.
func (s *Service) Session(ctx context.Context, id string) (Session, error) {
	e, ok := s.sessions.get(id)
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.clone(), nil
}

// Roster returns the registered teams of a competition.
func (s *Service) Roster(ctx context.Context, competitionID string) ([]model.RegisteredTeam, error) {
	return s.roster.Teams(ctx, competitionID)
}

// Standings returns the aggregated table of a competition's committed matches.
func (s *Service) Standings(ctx context.Context, competitionID string) ([]repository.Standing, error) {
	return s.store.Standings(ctx, competitionID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	counts := s.sessions.counts()
	sessions := make(map[string]int, len(counts))
	for status, n := range counts {
		sessions[string(status)] = n
	}
	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"sessions":     sessions,
		"cachedImages": s.cache.Len(),
	}
	if s.started {
		stats["queueLength"] = s.jobQueue.Len(ctx)
	}
	return stats
}

func (s *Service) newSession(req BatchRequest) (Session, error) {
	if req.CompetitionID == "" {
		return Session{}, fmt.Errorf("%w: competition id is required", ErrInvalidBatch)
	}
	if len(req.Images) == 0 {
		return Session{}, fmt.Errorf("%w: no images", ErrInvalidBatch)
	}
	maxTeams := req.MaxTeams
	if maxTeams == 0 {
		maxTeams = s.defaultMaxTeams
	}
	if maxTeams < 1 || maxTeams > MaxLobbySize {
		return Session{}, fmt.Errorf("%w: max teams %d outside 1..%d", ErrInvalidBatch, maxTeams, MaxLobbySize)
	}

	now := s.now()
	return Session{
		ID:            uuid.NewString(),
		CompetitionID: req.CompetitionID,
		Status:        StatusQueued,
		MaxTeams:      maxTeams,
		Rules:         s.table(maxTeams, req.Rules).Rules(),
		CreatedAt:     now,
		UpdatedAt:     now,
		images:        append([]extraction.Image(nil), req.Images...),
	}, nil
}

// table builds the scoring table for a batch: the batch rules, else the
// configured default rules, else the default ladder.
func (s *Service) table(maxTeams int, rules *scoring.Rules) *scoring.Table {
	switch {
	case rules != nil && rules.PlacementPoints != nil:
		return scoring.NewTable(maxTeams, scoring.WithRules(*rules))
	case s.defaultRules != nil:
		return scoring.NewTable(maxTeams, scoring.WithRules(*s.defaultRules))
	default:
		return scoring.NewTable(maxTeams, scoring.WithKillPoints(s.killPoints))
	}
}

func (s *Service) updateSessionGauge() {
	counts := s.sessions.counts()
	metrics.UpdateActiveSessions(counts[StatusQueued] + counts[StatusProcessing] + counts[StatusReady])
}
