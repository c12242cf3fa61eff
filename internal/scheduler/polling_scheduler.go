package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/bassista/go_flix/internal/logger"
)

// Prefetcher warms cache entries in the background. catalog.Service implements it.
type Prefetcher interface {
	PrefetchTrending(ctx context.Context)
	PrefetchNowPlaying(ctx context.Context, page int)
	PrefetchGenres(ctx context.Context)
}

// PollingScheduler keeps the landing page data warm: on every tick it prefetches
// the trending list, the first new-release page and the genre list. Prefetching
// only fetches entries that are missing or stale, so a tick is cheap while the
// cache is fresh.
type PollingScheduler struct {
	target Prefetcher
	poll   time.Duration
	ticks  atomic.Int64
}

func NewPollingScheduler(target Prefetcher, poll time.Duration) *PollingScheduler {
	return &PollingScheduler{target: target, poll: poll}
}

// Start warms the cache once and then on every interval until ctx is done.
// A non-positive interval disables the scheduler.
func (s *PollingScheduler) Start(ctx context.Context) {
	if s.poll <= 0 || s.target == nil {
		logger.WithComponent("sched").Info("warm-up scheduler disabled")
		return
	}
	logger.WithComponent("sched").Debugf("starting warm-up scheduler with interval: %v", s.poll)
	ticker := time.NewTicker(s.poll)
	go func() {
		defer ticker.Stop()
		s.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				logger.WithComponent("sched").Info("scheduler stopped")
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Ticks returns how many warm-up rounds have run.
func (s *PollingScheduler) Ticks() int64 {
	return s.ticks.Load()
}

func (s *PollingScheduler) tick(ctx context.Context) {
	select {
	case <-ctx.Done():
		logger.WithComponent("sched").Debugf("tick cancelled")
		return
	default:
	}

	logger.WithComponent("sched").Tracef("warm-up tick started")
	s.target.PrefetchTrending(ctx)
	s.target.PrefetchNowPlaying(ctx, 1)
	s.target.PrefetchGenres(ctx)
	s.ticks.Add(1)
	logger.WithComponent("sched").Tracef("warm-up tick completed")
}
