package cache

import "time"

// NeverStale disables background refetching for an entry.
const NeverStale time.Duration = -1

type options struct {
	enabled   bool
	staleTime time.Duration
	gcTime    time.Duration
}

// Option tunes a single cache call.
type Option func(*options)

// WithEnabled(false) makes the call read-only: nothing is fetched.
func WithEnabled(enabled bool) Option {
	return func(o *options) { o.enabled = enabled }
}

// WithStaleTime sets how long a successful result stays fresh.
// Zero means always stale; NeverStale means never refetched in the background.
func WithStaleTime(d time.Duration) Option {
	return func(o *options) { o.staleTime = d }
}

// WithGCTime sets how long an unused entry is kept in memory.
func WithGCTime(d time.Duration) Option {
	return func(o *options) { o.gcTime = d }
}
