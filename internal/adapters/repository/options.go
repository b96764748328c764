package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxSize bounds the number of evaluations kept. Once full, the
// oldest inserted evaluation is evicted first. Values <= 0 are ignored.
func WithMaxSize(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxSize = n
		}
	}
}
