package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
)

type editRequest struct {
	Placement *int `json:"placement"`
	Kills     *int `json:"kills"`
}

type manualRequest struct {
	TeamID    string `json:"team_id"`
	Placement int    `json:"placement"`
	Kills     int    `json:"kills"`
}

// SessionHandler serves session review and commit.
type SessionHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps Dependencies, l logger.Logger) *SessionHandler {
	return &SessionHandler{deps: deps, logger: l}
}

// HandleGet handles GET /v1/sessions/{sessionID}.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.deps.Session(r.Context(), sessionID(r)))
}

// HandleEditResult handles PATCH /v1/sessions/{sessionID}/results/{index}.
// Omitted fields keep their current value.
func (h *SessionHandler) HandleEditResult(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r, "index")
	if err != nil {
		writeFailure(w, err)
		return
	}
	var body editRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFailure(w, err)
		return
	}

	id := sessionID(r)
	sess, err := h.deps.Session(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	placement, kills := -1, -1
	if index < len(sess.Results) {
		placement, kills = sess.Results[index].Placement, sess.Results[index].Kills
	}
	if body.Placement != nil {
		placement = *body.Placement
	}
	if body.Kills != nil {
		kills = *body.Kills
	}
	h.respond(w)(h.deps.EditResult(r.Context(), id, index, placement, kills))
}

// HandleDiscardResult handles DELETE /v1/sessions/{sessionID}/results/{index}.
func (h *SessionHandler) HandleDiscardResult(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r, "index")
	if err != nil {
		writeFailure(w, err)
		return
	}
	h.respond(w)(h.deps.DiscardResult(r.Context(), sessionID(r), index))
}

// HandleAddManual handles POST /v1/sessions/{sessionID}/manual.
func (h *SessionHandler) HandleAddManual(w http.ResponseWriter, r *http.Request) {
	var body manualRequest
	if err := decodeJSON(r, &body); err != nil {
		writeFailure(w, err)
		return
	}
	m := model.ManualResult{TeamID: body.TeamID, Placement: body.Placement, Kills: body.Kills}
	h.respond(w)(h.deps.AddManual(r.Context(), sessionID(r), m))
}

// HandleRemoveManual handles DELETE /v1/sessions/{sessionID}/manual/{index}.
func (h *SessionHandler) HandleRemoveManual(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r, "index")
	if err != nil {
		writeFailure(w, err)
		return
	}
	h.respond(w)(h.deps.RemoveManual(r.Context(), sessionID(r), index))
}

// HandleCommit handles POST /v1/sessions/{sessionID}/commit.
func (h *SessionHandler) HandleCommit(w http.ResponseWriter, r *http.Request) {
	sess, err := h.deps.Commit(r.Context(), sessionID(r))
	if err != nil {
		h.logger.Warn(r.Context(), "commit refused", logger.String("session", sessionID(r)), logger.Error(err))
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// respond writes the session or the error of a session operation.
func (h *SessionHandler) respond(w http.ResponseWriter) func(service.Session, error) {
	return func(sess service.Session, err error) {
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func sessionID(r *http.Request) string { return chi.URLParam(r, "sessionID") }
