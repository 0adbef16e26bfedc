// Package api exposes the ranking service over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/podium/internal/adapters/repository"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Submit(ctx context.Context, req service.BatchRequest) (service.Session, error)
	Session(ctx context.Context, id string) (service.Session, error)
	EditResult(ctx context.Context, id string, index, placement, kills int) (service.Session, error)
	DiscardResult(ctx context.Context, id string, index int) (service.Session, error)
	AddManual(ctx context.Context, id string, m model.ManualResult) (service.Session, error)
	RemoveManual(ctx context.Context, id string, index int) (service.Session, error)
	Commit(ctx context.Context, id string) (service.Session, error)
	Roster(ctx context.Context, competitionID string) ([]model.RegisteredTeam, error)
	Standings(ctx context.Context, competitionID string) ([]repository.Standing, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	batchHandler       *BatchHandler
	sessionHandler     *SessionHandler
	competitionHandler *CompetitionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{maxUploadBytes: defaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Get().Named("api")
	}

	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		batchHandler:       NewBatchHandler(deps, cfg.maxUploadBytes, cfg.logger),
		sessionHandler:     NewSessionHandler(deps, cfg.logger),
		competitionHandler: NewCompetitionHandler(deps, cfg.logger),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/competitions/{competitionID}", func(r chi.Router) {
			r.Post("/batches", MetricsMiddleware(s.batchHandler.HandleSubmit, "batches"))
			r.Get("/roster", MetricsMiddleware(s.competitionHandler.HandleRoster, "roster"))
			r.Get("/standings", MetricsMiddleware(s.competitionHandler.HandleStandings, "standings"))
		})
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", MetricsMiddleware(s.sessionHandler.HandleGet, "session"))
			r.Patch("/results/{index}", MetricsMiddleware(s.sessionHandler.HandleEditResult, "results"))
			r.Delete("/results/{index}", MetricsMiddleware(s.sessionHandler.HandleDiscardResult, "results"))
			r.Post("/manual", MetricsMiddleware(s.sessionHandler.HandleAddManual, "manual"))
			r.Delete("/manual/{index}", MetricsMiddleware(s.sessionHandler.HandleRemoveManual, "manual"))
			r.Post("/commit", MetricsMiddleware(s.sessionHandler.HandleCommit, "commit"))
		})
	})
}

// Handler returns a router with every route registered.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	s.Register(ctx, r)
	return r
}
