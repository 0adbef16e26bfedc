package service

import (
	"sync"
	"time"

	"github.com/okian/podium/internal/adapters/extraction"
	"github.com/okian/podium/internal/domain/correlate"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/results"
	"github.com/okian/podium/internal/domain/scoring"
)

// Status is the lifecycle stage of a session.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
	StatusCommitted  Status = "committed"
)

// ImageReport describes where the entries of one image came from.
type ImageReport struct {
	Name     string             `json:"name"`
	Source   string             `json:"source"`
	Entries  int                `json:"entries"`
	Attempts int                `json:"attempts"`
	States   []extraction.State `json:"states,omitempty"`
	Fallback bool               `json:"fallback"`
	Error    string             `json:"error,omitempty"`
}

// CommitSummary is the outcome of a commit.
type CommitSummary struct {
	MatchID     string               `json:"match_id"`
	Results     model.FinalResultSet `json:"results"`
	Rejected    []results.Rejection  `json:"rejected"`
	CommittedAt time.Time            `json:"committed_at"`
}

// Session is one submitted batch and the operator's work on its results.
type Session struct {
	ID            string                `json:"id"`
	CompetitionID string                `json:"competition_id"`
	Status        Status                `json:"status"`
	MaxTeams      int                   `json:"max_teams"`
	Rules         scoring.Rules         `json:"rules"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Results       model.FinalResultSet  `json:"results"`
	Manual        []model.ManualResult  `json:"manual"`
	Unmatched     []correlate.Unmatched `json:"unmatched"`
	Images        []ImageReport         `json:"images"`
	Overflow      []OverflowWarning     `json:"overflow"`
	Duplicates    int                   `json:"duplicates_removed"`
	Error         string                `json:"error,omitempty"`
	Commit        *CommitSummary        `json:"commit,omitempty"`

	images []extraction.Image
}

func (s *Session) clone() Session {
	out := *s
	out.Results = append(model.FinalResultSet(nil), s.Results...)
	out.Manual = append([]model.ManualResult(nil), s.Manual...)
	out.Unmatched = append([]correlate.Unmatched(nil), s.Unmatched...)
	out.Images = append([]ImageReport(nil), s.Images...)
	out.Overflow = append([]OverflowWarning(nil), s.Overflow...)
	out.images = nil
	if s.Commit != nil {
		c := *s.Commit
		out.Commit = &c
	}
	return out
}

type sessionEntry struct {
	mu sync.Mutex
	s  Session
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*sessionEntry)}
}

func (st *sessionStore) add(s Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = &sessionEntry{s: s}
}

func (st *sessionStore) remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *sessionStore) get(id string) (*sessionEntry, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	e, ok := st.sessions[id]
	return e, ok
}

// counts returns the number of sessions per status.
func (st *sessionStore) counts() map[Status]int {
	st.mu.RLock()
	entries := make([]*sessionEntry, 0, len(st.sessions))
	for _, e := range st.sessions {
		entries = append(entries, e)
	}
	st.mu.RUnlock()

	out := make(map[Status]int)
	for _, e := range entries {
		e.mu.Lock()
		out[e.s.Status]++
		e.mu.Unlock()
	}
	return out
}
