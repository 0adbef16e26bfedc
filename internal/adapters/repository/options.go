package repository

import "time"

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithClock sets the clock used to stamp records saved without a commit time.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
