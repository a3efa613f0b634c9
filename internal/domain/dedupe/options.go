package dedupe

// Option applies a configuration option to the in-memory registry.
type Option func(*inMemoryRegistry)

// WithMaxSize sets the number of keys kept before the oldest is evicted.
// A value <= 0 keeps every key.
func WithMaxSize(maxSize int) Option {
	return func(r *inMemoryRegistry) {
		r.maxSize = maxSize
	}
}
