package service

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted         = errors.New("service not started")
	ErrInvalidBatch       = errors.New("invalid batch")
	ErrQueueFull          = errors.New("batch queue full")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionNotReady    = errors.New("session not ready")
	ErrAlreadyCommitted   = errors.New("session already committed")
	ErrCorrelationFailure = errors.New("correlation failed")
	ErrUnknownTeam        = errors.New("team not in roster")
	ErrManualNotFound     = errors.New("manual result not found")
)

// CorrelationError reports a batch in which no extracted row could be tied
// to the roster.
type CorrelationError struct {
	CompetitionID string
	Reason        string
	Unmatched     []string
}

func (e *CorrelationError) Error() string {
	if len(e.Unmatched) == 0 {
		return fmt.Sprintf("correlation failed for %s: %s", e.CompetitionID, e.Reason)
	}
	return fmt.Sprintf("correlation failed for %s: %s (unmatched: %s)",
		e.CompetitionID, e.Reason, strings.Join(e.Unmatched, ", "))
}

func (e *CorrelationError) Unwrap() error { return ErrCorrelationFailure }

// Overflow stages.
const (
	StageConsolidation = "consolidation"
	StageResults       = "results"
)

// OverflowWarning reports rows dropped because they did not fit the lobby.
// It never fails a batch.
type OverflowWarning struct {
	Stage   string `json:"stage"`
	Limit   int    `json:"limit"`
	Dropped int    `json:"dropped"`
}

func (w OverflowWarning) Error() string {
	return fmt.Sprintf("%s overflow: %d rows beyond limit %d dropped", w.Stage, w.Dropped, w.Limit)
}
