package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
)

type rosterResponse struct {
	CompetitionID string                 `json:"competition_id"`
	Teams         []model.RegisteredTeam `json:"teams"`
}

type standingsResponse struct {
	CompetitionID string                `json:"competition_id"`
	Standings     []repository.Standing `json:"standings"`
}

// CompetitionHandler serves per-competition reads.
type CompetitionHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewCompetitionHandler creates a new competition handler.
func NewCompetitionHandler(deps Dependencies, l logger.Logger) *CompetitionHandler {
	return &CompetitionHandler{deps: deps, logger: l}
}

// HandleRoster handles GET /v1/competitions/{competitionID}/roster.
func (h *CompetitionHandler) HandleRoster(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "competitionID")
	teams, err := h.deps.Roster(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rosterResponse{CompetitionID: id, Teams: teams})
}

// HandleStandings handles GET /v1/competitions/{competitionID}/standings.
func (h *CompetitionHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "competitionID")
	table, err := h.deps.Standings(r.Context(), id)
	if err != nil {
		h.logger.Error(r.Context(), "standings query failed", logger.String("competition", id), logger.Error(err))
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standingsResponse{CompetitionID: id, Standings: table})
}
