// Package cache keeps recent single-pair evaluation results.
package cache

// Default cache configuration constants.
const defaultMaxSize = 1024

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithMaxSize sets the maximum number of results to keep.
// A value of zero or below disables the cache.
func WithMaxSize(maxSize int) Option {
	return func(c *Cache) {
		c.maxSize = maxSize
	}
}
