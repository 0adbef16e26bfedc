package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/results"
	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// EditResult changes the placement and kills of the automatic row at index.
// A rejected edit leaves the session unchanged.
func (s *Service) EditResult(ctx context.Context, id string, index, placement, kills int) (Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		for _, m := range sess.Manual {
			if m.Placement == placement {
				metrics.RecordEditConflict()
				return &results.ConflictError{Placement: placement, TeamID: m.TeamID, TeamName: m.TeamName, Reason: results.ReasonPlacementTaken}
			}
		}

		edited, err := results.NewEditor(sessionTable(sess)).Edit(sess.Results, index, placement, kills)
		if err != nil {
			if errors.Is(err, results.ErrConflict) {
				metrics.RecordEditConflict()
			}
			return err
		}
		sess.Results = edited
		metrics.RecordEdit()
		s.logger.Info(ctx, "result edited",
			logger.String("session", sess.ID),
			logger.Int("index", index),
			logger.Int("placement", placement),
			logger.Int("kills", kills),
		)
		return nil
	})
}

// DiscardResult removes the automatic row at index, typically a second row
// for a team that would otherwise block the commit.
func (s *Service) DiscardResult(ctx context.Context, id string, index int) (Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		if index < 0 || index >= len(sess.Results) {
			return fmt.Errorf("%w: %d of %d", results.ErrIndexOutOfRange, index, len(sess.Results))
		}
		row := sess.Results[index]
		sess.Results = append(sess.Results[:index:index], sess.Results[index+1:]...)
		s.logger.Info(ctx, "result discarded",
			logger.String("session", sess.ID),
			logger.String("team", row.TeamID),
			logger.Int("placement", row.Placement),
		)
		return nil
	})
}

// AddManual records an operator row. The team must be in the competition
// roster and both its placement and team must be free among the automatic
// and manual rows.
func (s *Service) AddManual(ctx context.Context, id string, m model.ManualResult) (Session, error) {
	e, ok := s.sessions.get(id)
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	e.mu.Lock()
	competition := e.s.CompetitionID
	e.mu.Unlock()

	teams, err := s.roster.Teams(ctx, competition)
	if err != nil {
		return Session{}, fmt.Errorf("load roster %s: %w", competition, err)
	}
	var found bool
	for _, t := range teams {
		if t.ID == m.TeamID {
			m.TeamName = t.Name
			found = true
			break
		}
	}
	if !found {
		metrics.RecordManualRejected("unknown_team")
		return Session{}, fmt.Errorf("%w: %w: %s", results.ErrValidation, ErrUnknownTeam, m.TeamID)
	}

	return s.update(ctx, id, func(sess *Session) error {
		table := sessionTable(sess)
		current := currentSet(sess, table)
		if err := results.NewReconciler(table).Check(current, m); err != nil {
			metrics.RecordManualRejected(rejectReason(err))
			return err
		}
		sess.Manual = append(sess.Manual, m)
		metrics.RecordManualAccepted(1)
		s.logger.Info(ctx, "manual result added",
			logger.String("session", sess.ID),
			logger.String("team", m.TeamID),
			logger.Int("placement", m.Placement),
		)
		return nil
	})
}

// RemoveManual drops the manual row at index.
func (s *Service) RemoveManual(ctx context.Context, id string, index int) (Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		if index < 0 || index >= len(sess.Manual) {
			return fmt.Errorf("%w: %d of %d", ErrManualNotFound, index, len(sess.Manual))
		}
		sess.Manual = append(sess.Manual[:index:index], sess.Manual[index+1:]...)
		return nil
	})
}

// Commit merges the manual rows into the automatic set and saves the match.
// A session commits at most once.
func (s *Service) Commit(ctx context.Context, id string) (Session, error) {
	defer s.updateSessionGauge()
	return s.update(ctx, id, func(sess *Session) error {
		if err := results.TeamCollision(sess.Results); err != nil {
			return err
		}

		rec := results.NewReconciler(sessionTable(sess)).Reconcile(sess.Results, sess.Manual)
		match := repository.MatchRecord{
			ID:            uuid.NewString(),
			CompetitionID: sess.CompetitionID,
			SessionID:     sess.ID,
			MaxTeams:      sess.MaxTeams,
			Results:       rec.Results,
			CommittedAt:   s.now(),
		}
		if err := s.store.SaveResults(ctx, match); err != nil {
			return fmt.Errorf("save match %s: %w", match.ID, err)
		}

		sess.Status = StatusCommitted
		sess.Commit = &CommitSummary{
			MatchID:     match.ID,
			Results:     rec.Results,
			Rejected:    rec.Rejected,
			CommittedAt: match.CommittedAt,
		}
		for _, r := range rec.Rejected {
			metrics.RecordManualRejected(r.Reason)
		}
		metrics.RecordCommitted(len(rec.Results))
		s.logger.Info(ctx, "session committed",
			logger.String("session", sess.ID),
			logger.String("match", match.ID),
			logger.Int("results", len(rec.Results)),
			logger.Int("rejected", len(rec.Rejected)),
		)
		return nil
	})
}

// update runs fn on a ready session under its lock. fn works on a copy that
// replaces the session only when fn succeeds.
func (s *Service) update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	e, ok := s.sessions.get(id)
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.s.Status {
	case StatusReady:
	case StatusCommitted:
		return Session{}, fmt.Errorf("%w: %s", ErrAlreadyCommitted, id)
	default:
		return Session{}, fmt.Errorf("%w: %s is %s", ErrSessionNotReady, id, e.s.Status)
	}

	work := e.s.clone()
	if err := fn(&work); err != nil {
		return Session{}, err
	}
	work.UpdatedAt = s.now()
	work.images = e.s.images
	e.s = work
	return e.s.clone(), nil
}

func sessionTable(sess *Session) *scoring.Table {
	return scoring.NewTable(sess.MaxTeams, scoring.WithRules(sess.Rules))
}

// currentSet is the automatic rows plus the accepted manual rows.
func currentSet(sess *Session, table *scoring.Table) []model.ScoredResult {
	scorer := results.NewScorer(table)
	out := make([]model.ScoredResult, 0, len(sess.Results)+len(sess.Manual))
	out = append(out, sess.Results...)
	for _, m := range sess.Manual {
		out = append(out, scorer.Manual(m))
	}
	return out
}

func rejectReason(err error) string {
	var conflict *results.ConflictError
	if errors.As(err, &conflict) {
		return conflict.Reason
	}
	return results.ReasonOutOfRange
}
