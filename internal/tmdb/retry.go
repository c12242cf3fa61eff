package tmdb

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how failed requests are retried.
// Only kinds present in Delays are retried, each after its fixed delay.
type RetryPolicy struct {
	MaxAttempts int
	Delays      map[Kind]time.Duration
}

// DefaultRetryPolicy retries rate-limit and network failures once after 1s and
// server failures once after 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 2,
		Delays: map[Kind]time.Duration{
			KindRateLimited: time.Second,
			KindServer:      500 * time.Millisecond,
			KindNetwork:     time.Second,
		},
	}
}

func (p RetryPolicy) delayFor(kind Kind) (time.Duration, bool) {
	d, ok := p.Delays[kind]
	return d, ok
}

func (p RetryPolicy) maxAttempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// tableBackOff hands backoff.RetryNotify the delay chosen for the last failure.
// The operation decides whether a retry happens at all by returning backoff.Permanent.
type tableBackOff struct {
	next time.Duration
}

func (b *tableBackOff) NextBackOff() time.Duration { return b.next }

func (b *tableBackOff) Reset() { b.next = 0 }

var _ backoff.BackOff = (*tableBackOff)(nil)
