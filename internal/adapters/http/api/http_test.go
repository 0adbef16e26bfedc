package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/okian/podium/internal/adapters/extraction"
	"github.com/okian/podium/internal/adapters/http/api"
	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/adapters/roster"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/results"
	"github.com/okian/podium/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// mockDependencies records calls and returns canned answers.
type mockDependencies struct {
	session   service.Session
	err       error
	submitted service.BatchRequest
	edits     [][3]int
	manual    []model.ManualResult
	teams     []model.RegisteredTeam
	standings []repository.Standing
}

func (m *mockDependencies) answer() (service.Session, error) {
	if m.err != nil {
		return service.Session{}, m.err
	}
	return m.session, nil
}

func (m *mockDependencies) Submit(ctx context.Context, req service.BatchRequest) (service.Session, error) {
	m.submitted = req
	if m.err != nil {
		return service.Session{}, m.err
	}
	return service.Session{ID: "s-1", Status: service.StatusQueued}, nil
}

func (m *mockDependencies) Session(ctx context.Context, id string) (service.Session, error) {
	return m.answer()
}

func (m *mockDependencies) EditResult(ctx context.Context, id string, index, placement, kills int) (service.Session, error) {
	m.edits = append(m.edits, [3]int{index, placement, kills})
	return m.answer()
}

func (m *mockDependencies) DiscardResult(ctx context.Context, id string, index int) (service.Session, error) {
	return m.answer()
}

func (m *mockDependencies) AddManual(ctx context.Context, id string, r model.ManualResult) (service.Session, error) {
	m.manual = append(m.manual, r)
	return m.answer()
}

func (m *mockDependencies) RemoveManual(ctx context.Context, id string, index int) (service.Session, error) {
	return m.answer()
}

func (m *mockDependencies) Commit(ctx context.Context, id string) (service.Session, error) {
	return m.answer()
}

func (m *mockDependencies) Roster(ctx context.Context, competitionID string) ([]model.RegisteredTeam, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.teams, nil
}

func (m *mockDependencies) Standings(ctx context.Context, competitionID string) ([]repository.Standing, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.standings, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newHandler(deps *mockDependencies) http.Handler {
	stats := &mockStatsProvider{stats: map[string]interface{}{"started": true}}
	return api.NewServer(deps, stats).Handler(context.Background())
}

func do(h http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

type upload struct {
	name     string
	data     []byte
	modified int64
}

func multipartBatch(fields map[string]string, files ...upload) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, f.name))
		h.Set("Content-Type", "image/png")
		part, _ := mw.CreatePart(h)
		_, _ = part.Write(f.data)
		if f.modified != 0 {
			_ = mw.WriteField("last_modified", fmt.Sprint(f.modified))
		}
	}
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		h := newHandler(&mockDependencies{})

		Convey("Then health endpoint should be accessible", func() {
			w := do(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"ok"`)
		})

		Convey("And stats endpoint should be accessible", func() {
			w := do(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("And metrics endpoint should expose Prometheus text", func() {
			w := do(h, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "podium_")
		})

		Convey("And unknown routes are not found", func() {
			w := do(h, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSubmitBatch(t *testing.T) {
	Convey("Given a server", t, func() {
		deps := &mockDependencies{}
		h := newHandler(deps)
		modified := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		Convey("When two screenshots are uploaded with scoring overrides", func() {
			body, ctype := multipartBatch(
				map[string]string{"max_teams": "20", "scoring": `{"placementPoints":{"1":30,"2":22},"killPoints":2}`},
				upload{name: "a.png", data: []byte("first"), modified: modified.UnixMilli()},
				upload{name: "b.png", data: []byte("second"), modified: modified.UnixMilli()},
			)
			req := httptest.NewRequest(http.MethodPost, "/v1/competitions/cup/batches", body)
			req.Header.Set("Content-Type", ctype)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then the batch is accepted and forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(w.Body.String(), ShouldContainSubstring, `"session_id":"s-1"`)

				got := deps.submitted
				So(got.CompetitionID, ShouldEqual, "cup")
				So(got.MaxTeams, ShouldEqual, 20)
				So(got.Rules, ShouldNotBeNil)
				So(got.Rules.PlacementPoints[1], ShouldEqual, 30)
				So(got.Rules.KillPoints, ShouldEqual, 2)
				So(len(got.Images), ShouldEqual, 2)
				So(got.Images[0].Name, ShouldEqual, "a.png")
				So(got.Images[0].Size, ShouldEqual, 5)
				So(got.Images[0].MIMEType, ShouldEqual, "image/png")
				So(got.Images[1].ModTime.Equal(modified), ShouldBeTrue)
			})
		})

		Convey("When no image is uploaded", func() {
			body, ctype := multipartBatch(map[string]string{"max_teams": "20"})
			req := httptest.NewRequest(http.MethodPost, "/v1/competitions/cup/batches", body)
			req.Header.Set("Content-Type", ctype)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			})
		})

		Convey("When the scoring field is not JSON", func() {
			body, ctype := multipartBatch(map[string]string{"scoring": "25,20,18"}, upload{name: "a.png", data: []byte("x")})
			req := httptest.NewRequest(http.MethodPost, "/v1/competitions/cup/batches", body)
			req.Header.Set("Content-Type", ctype)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the queue is full", func() {
			deps.err = service.ErrQueueFull
			body, ctype := multipartBatch(nil, upload{name: "a.png", data: []byte("x")})
			req := httptest.NewRequest(http.MethodPost, "/v1/competitions/cup/batches", body)
			req.Header.Set("Content-Type", ctype)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then the client is asked to back off", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(errorCode(w), ShouldEqual, "backpressure")
			})
		})
	})
}

func TestSessionRoutes(t *testing.T) {
	Convey("Given a ready session", t, func() {
		deps := &mockDependencies{session: service.Session{
			ID:     "s-1",
			Status: service.StatusReady,
			Results: model.FinalResultSet{
				{TeamID: "T1", Placement: 1, Kills: 8, TotalPoints: 33},
				{TeamID: "T2", Placement: 2, Kills: 3, TotalPoints: 23},
			},
		}}
		h := newHandler(deps)

		Convey("When it is fetched", func() {
			w := do(h, http.MethodGet, "/v1/sessions/s-1/", "")

			Convey("Then the session is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got service.Session
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.Results[0].TotalPoints, ShouldEqual, 33)
			})
		})

		Convey("When only the placement of a row is patched", func() {
			w := do(h, http.MethodPatch, "/v1/sessions/s-1/results/1", `{"placement":3}`)

			Convey("Then the current kills are kept", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.edits, ShouldResemble, [][3]int{{1, 3, 3}})
			})
		})

		Convey("When the index is not a number", func() {
			w := do(h, http.MethodPatch, "/v1/sessions/s-1/results/x", `{"placement":3}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(deps.edits, ShouldBeEmpty)
			})
		})

		Convey("When a manual row is posted", func() {
			w := do(h, http.MethodPost, "/v1/sessions/s-1/manual", `{"team_id":"T3","placement":3,"kills":1}`)

			Convey("Then it is forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.manual, ShouldResemble, []model.ManualResult{{TeamID: "T3", Placement: 3, Kills: 1}})
			})
		})

		Convey("When a manual row carries unknown fields", func() {
			w := do(h, http.MethodPost, "/v1/sessions/s-1/manual", `{"team":"T3"}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the session is committed", func() {
			deps.session.Status = service.StatusCommitted
			w := do(h, http.MethodPost, "/v1/sessions/s-1/commit", "")

			Convey("Then the committed session is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"committed"`)
			})
		})

		Convey("When rows are removed", func() {
			So(do(h, http.MethodDelete, "/v1/sessions/s-1/results/1", "").Code, ShouldEqual, http.StatusOK)
			So(do(h, http.MethodDelete, "/v1/sessions/s-1/manual/0", "").Code, ShouldEqual, http.StatusOK)
			So(do(h, http.MethodDelete, "/v1/sessions/s-1/manual/-1", "").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing session", fmt.Errorf("%w: s-9", service.ErrSessionNotFound), http.StatusNotFound, "not_found"},
		{"bad index", results.ErrIndexOutOfRange, http.StatusNotFound, "not_found"},
		{"placement conflict", &results.ConflictError{Placement: 1, TeamID: "T1", Reason: results.ReasonPlacementTaken}, http.StatusConflict, "conflict"},
		{"double commit", service.ErrAlreadyCommitted, http.StatusConflict, "conflict"},
		{"not ready", service.ErrSessionNotReady, http.StatusConflict, "conflict"},
		{"out of range", &results.ValidationError{Field: "placement", Value: 30, Min: 1, Max: 25}, http.StatusUnprocessableEntity, "validation_failed"},
		{"correlation", &service.CorrelationError{CompetitionID: "cup", Reason: "no_match"}, http.StatusUnprocessableEntity, "correlation_failed"},
		{"not configured", fmt.Errorf("extract: %w", extraction.ErrNotConfigured), http.StatusServiceUnavailable, "not_configured"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "internal"},
	}

	Convey("Given session operations that fail", t, func() {
		for _, tc := range cases {
			deps := &mockDependencies{err: tc.err}
			h := newHandler(deps)
			w := do(h, http.MethodPost, "/v1/sessions/s-1/commit", "")

			So(w.Code, ShouldEqual, tc.status)
			So(errorCode(w), ShouldEqual, tc.code)
		}
	})
}

func TestCompetitionRoutes(t *testing.T) {
	Convey("Given a competition with a roster and standings", t, func() {
		deps := &mockDependencies{
			teams:     []model.RegisteredTeam{{ID: "T1", Name: "Team 1", Tag: "A1"}},
			standings: []repository.Standing{{Rank: 1, TeamID: "T1", Matches: 2, TotalPoints: 50}},
		}
		h := newHandler(deps)

		Convey("Then the roster is served", func() {
			w := do(h, http.MethodGet, "/v1/competitions/cup/roster", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"competition_id":"cup"`)
			So(w.Body.String(), ShouldContainSubstring, `"T1"`)
		})

		Convey("Then the standings are served", func() {
			w := do(h, http.MethodGet, "/v1/competitions/cup/standings", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"standings"`)
		})

		Convey("When the competition is unknown", func() {
			deps.err = fmt.Errorf("%w: nope", roster.ErrCompetitionNotFound)
			w := do(h, http.MethodGet, "/v1/competitions/nope/roster", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
