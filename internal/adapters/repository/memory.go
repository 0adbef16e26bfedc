package repository

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps committed matches in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string][]MatchRecord // competitionID -> matches
	ids     map[string]struct{}
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		matches: make(map[string][]MatchRecord),
		ids:     make(map[string]struct{}),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveResults stores rec. A record ID can only be saved once.
func (s *MemoryStore) SaveResults(ctx context.Context, rec MatchRecord) error {
	if err := validateRecord(rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.ids[rec.ID]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateMatch, rec.ID)
	}
	if rec.CommittedAt.IsZero() {
		rec.CommittedAt = s.now()
	}
	rec.Results = append(rec.Results[:0:0], rec.Results...)
	s.matches[rec.CompetitionID] = append(s.matches[rec.CompetitionID], rec)
	s.ids[rec.ID] = struct{}{}
	return nil
}

// Matches returns copies of the saved matches of a competition.
func (s *MemoryStore) Matches(ctx context.Context, competitionID string) ([]MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.matches[competitionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, competitionID)
	}
	out := make([]MatchRecord, len(list))
	for i, m := range list {
		m.Results = append(m.Results[:0:0], m.Results...)
		out[i] = m
	}
	return out, nil
}

// Standings aggregates the saved matches of a competition.
func (s *MemoryStore) Standings(ctx context.Context, competitionID string) ([]Standing, error) {
	matches, err := s.Matches(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	return Aggregate(matches), nil
}

// Count returns the number of saved matches across all competitions.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
