// Package cache stores extraction results keyed by image identity so that a
// re-uploaded screenshot is not sent to the extraction backend twice.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

const defaultMaxSize = 512

// Key identifies an image by name, size and modification time.
type Key struct {
	Name    string
	Size    int64
	ModTime int64 // unix nanoseconds
}

// NewKey builds a Key from image metadata.
func NewKey(name string, size int64, modTime time.Time) Key {
	return Key{Name: name, Size: size, ModTime: modTime.UnixNano()}
}

// Store is a shared extraction cache.
type Store interface {
	Get(ctx context.Context, k Key) ([]model.ExtractedEntry, bool)
	Put(ctx context.Context, k Key, entries []model.ExtractedEntry)
	Len() int
}

type node struct {
	key        Key
	entries    []model.ExtractedEntry
	prev, next *node
}

// memoryStore keeps the most recently added keys, evicting the oldest
// insertion once maxSize is reached. maxSize <= 0 means unbounded.
type memoryStore struct {
	mu      sync.Mutex
	items   map[Key]*node
	head    *node // newest
	tail    *node // oldest
	maxSize int
}

// NewMemoryStore creates an in-memory Store.
func NewMemoryStore(opts ...Option) Store {
	s := &memoryStore{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(s)
	}
	s.items = make(map[Key]*node)
	return s
}

// Get returns a copy of the cached entries for k.
func (s *memoryStore) Get(ctx context.Context, k Key) ([]model.ExtractedEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[k]
	if !ok {
		metrics.RecordCacheMiss()
		return nil, false
	}
	metrics.RecordCacheHit()
	return clone(n.entries), true
}

// Put stores a copy of entries under k, replacing any previous value.
func (s *memoryStore) Put(ctx context.Context, k Key, entries []model.ExtractedEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.items[k]; ok {
		n.entries = clone(entries)
		return
	}
	if s.maxSize > 0 && len(s.items) >= s.maxSize {
		s.evictOldest()
	}

	n := &node{key: k, entries: clone(entries), next: s.head}
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
	s.items[k] = n
	metrics.UpdateCacheEntries(len(s.items))
}

// Len returns the number of cached images.
func (s *memoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// evictOldest must be called with s.mu held.
func (s *memoryStore) evictOldest() {
	n := s.tail
	if n == nil {
		return
	}
	s.tail = n.prev
	if s.tail != nil {
		s.tail.next = nil
	} else {
		s.head = nil
	}
	delete(s.items, n.key)
}

func clone(in []model.ExtractedEntry) []model.ExtractedEntry {
	if in == nil {
		return nil
	}
	out := make([]model.ExtractedEntry, len(in))
	copy(out, in)
	return out
}
