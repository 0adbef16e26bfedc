package cache

// Option configures the in-memory Store.
type Option func(*memoryStore)

// WithMaxSize caps the number of cached images. maxSize <= 0 disables eviction.
func WithMaxSize(maxSize int) Option {
	return func(s *memoryStore) {
		s.maxSize = maxSize
	}
}
