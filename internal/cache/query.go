// Package cache is the process-wide query cache: responses are keyed by a logical
// key, served immediately while fresh, refetched in the background once stale,
// and evicted after a period of disuse.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bassista/go_flix/internal/logger"
	"github.com/bassista/go_flix/internal/metrics"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultStaleTime       = 5 * time.Minute
	DefaultGCTime          = 10 * time.Minute
	DefaultCleanupInterval = time.Minute
)

// ErrTypeMismatch is returned when a key is read with a different type than it was stored with.
var ErrTypeMismatch = errors.New("cached value has unexpected type")

// Config holds the defaults applied to every call.
type Config struct {
	StaleTime       time.Duration
	GCTime          time.Duration
	CleanupInterval time.Duration
}

// FetchFunc loads the value of one key from its source.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Result is what a reader observes for a key.
type Result[T any] struct {
	Data    T
	HasData bool
	// IsLoading is true while the first fetch of a key is running.
	IsLoading bool
	// IsFetching is true while any fetch of the key is running, including background refetches.
	IsFetching bool
	IsStale    bool
	// Err is the error of the latest attempt. Data from an earlier success is kept alongside it.
	Err       error
	UpdatedAt time.Time
}

type entry struct {
	key         Key
	data        any
	hasData     bool
	updatedAt   time.Time
	err         error
	errorAt     time.Time
	fetching    bool
	invalidated bool
	gcTime      time.Duration
}

// QueryCache is safe for concurrent use. At most one fetch per key runs at a time.
type QueryCache struct {
	mu       sync.Mutex
	items    *gocache.Cache
	flight   singleflight.Group
	defaults options
	now      func() time.Time
	log      *logrus.Entry
}

// NewQueryCache creates a cache; zero durations in cfg fall back to the package defaults.
func NewQueryCache(cfg Config) *QueryCache {
	if cfg.StaleTime == 0 {
		cfg.StaleTime = DefaultStaleTime
	}
	if cfg.GCTime <= 0 {
		cfg.GCTime = DefaultGCTime
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}

	c := &QueryCache{
		items:    gocache.New(cfg.GCTime, cfg.CleanupInterval),
		defaults: options{enabled: true, staleTime: cfg.StaleTime, gcTime: cfg.GCTime},
		now:      time.Now,
		log:      logger.WithComponent("query-cache"),
	}
	c.items.OnEvicted(func(k string, _ interface{}) {
		metrics.CacheEvictions.Inc()
		c.log.WithField("key", k).Trace("entry evicted")
	})
	return c
}

// Get returns the cached value of key. Fresh data is returned as is; stale data is
// returned immediately and refetched in the background. Without data, Get waits for
// the (shared) fetch or for ctx to be done, whichever comes first.
func Get[T any](ctx context.Context, c *QueryCache, key Key, fetch FetchFunc[T], opts ...Option) Result[T] {
	o := c.resolve(opts)
	if !o.enabled {
		metrics.CacheLookups.WithLabelValues("disabled").Inc()
		snap := c.existing(key)
		return resultOf[T](snap, c.isStale(snap, o))
	}

	snap := c.snapshot(key, o)

	if snap.hasData {
		stale := c.isStale(snap, o)
		if stale {
			metrics.CacheLookups.WithLabelValues("stale").Inc()
			c.log.WithField("key", key.String()).Debug("serving stale data, refetching in background")
			c.start(ctx, key, o, erase(fetch))
			snap.fetching = true
		} else {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
		}
		return resultOf[T](snap, stale)
	}

	metrics.CacheLookups.WithLabelValues("miss").Inc()
	return wait[T](ctx, c, key, o, c.start(ctx, key, o, erase(fetch)))
}

// Refetch forces a fetch of key, joining one that is already running, and waits for it.
func Refetch[T any](ctx context.Context, c *QueryCache, key Key, fetch FetchFunc[T], opts ...Option) Result[T] {
	o := c.resolve(opts)
	return wait[T](ctx, c, key, o, c.start(ctx, key, o, erase(fetch)))
}

// Prefetch starts loading key in the background unless fresh data is already cached.
// It never blocks on the fetch.
func Prefetch[T any](ctx context.Context, c *QueryCache, key Key, fetch FetchFunc[T], opts ...Option) {
	o := c.resolve(opts)
	if !o.enabled {
		return
	}
	snap := c.snapshot(key, o)
	if snap.hasData && !c.isStale(snap, o) {
		return
	}
	c.start(ctx, key, o, erase(fetch))
}

// Peek returns the current state of key without fetching.
func Peek[T any](c *QueryCache, key Key) Result[T] {
	snap := c.existing(key)
	return resultOf[T](snap, c.isStale(snap, c.defaults))
}

// Invalidate marks every entry whose key starts with prefix as stale, so the next
// read refetches it. It returns the number of entries marked.
func (c *QueryCache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, item := range c.items.Items() {
		e, ok := item.Object.(*entry)
		if !ok || !e.key.HasPrefix(prefix) {
			continue
		}
		e.invalidated = true
		n++
	}
	c.log.WithFields(logrus.Fields{"prefix": prefix.String(), "count": n}).Debug("entries invalidated")
	return n
}

// Remove drops key from the cache.
func (c *QueryCache) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Delete(key.id())
}

// Len returns the number of live entries.
func (c *QueryCache) Len() int {
	return c.items.ItemCount()
}

// Clear drops every entry.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Flush()
}

func (c *QueryCache) resolve(opts []Option) options {
	o := c.defaults
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (c *QueryCache) isStale(e entry, o options) bool {
	if !e.hasData {
		return false
	}
	if e.invalidated {
		return true
	}
	if o.staleTime < 0 {
		return false
	}
	return c.now().Sub(e.updatedAt) >= o.staleTime
}

// snapshot copies the entry of key, creating it if needed and re-arming its gc window.
func (c *QueryCache) snapshot(key Key, o options) entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.lookupLocked(key, o.gcTime)
}

// existing copies the entry of key without creating it or touching its gc window.
func (c *QueryCache) existing(key Key) entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.items.Get(key.id()); ok {
		if e, ok := v.(*entry); ok {
			return *e
		}
	}
	return entry{key: key}
}

// lookupLocked must be called with c.mu held.
func (c *QueryCache) lookupLocked(key Key, gcTime time.Duration) *entry {
	id := key.id()
	if v, ok := c.items.Get(id); ok {
		if e, ok := v.(*entry); ok {
			if gcTime > 0 {
				e.gcTime = gcTime
			}
			c.items.Set(id, e, e.gcTime)
			return e
		}
	}
	e := &entry{key: key, gcTime: gcTime}
	c.items.Set(id, e, gcTime)
	return e
}

// start runs fetch for key unless a fetch for key is already running, in which case
// the caller joins it. The fetch is detached from ctx cancellation and always lands in the cache.
func (c *QueryCache) start(ctx context.Context, key Key, o options, fetch FetchFunc[any]) <-chan singleflight.Result {
	detached := context.WithoutCancel(ctx)
	return c.flight.DoChan(key.id(), func() (any, error) {
		return c.run(detached, key, o, fetch)
	})
}

func (c *QueryCache) run(ctx context.Context, key Key, o options, fetch FetchFunc[any]) (any, error) {
	c.mu.Lock()
	c.lookupLocked(key, o.gcTime).fetching = true
	c.mu.Unlock()

	started := c.now()
	v, err := safeFetch(ctx, fetch)
	now := c.now()

	c.mu.Lock()
	e := c.lookupLocked(key, o.gcTime)
	e.fetching = false
	if err != nil {
		e.err = err
		e.errorAt = now
	} else {
		e.data = v
		e.hasData = true
		e.updatedAt = now
		e.err = nil
		e.invalidated = false
	}
	c.mu.Unlock()

	fields := logrus.Fields{"key": key.String(), "duration": now.Sub(started)}
	if err != nil {
		metrics.CacheFetches.WithLabelValues("error").Inc()
		c.log.WithFields(fields).WithError(err).Debug("fetch failed")
		return nil, err
	}
	metrics.CacheFetches.WithLabelValues("ok").Inc()
	c.log.WithFields(fields).Debug("fetch completed")
	return v, nil
}

func wait[T any](ctx context.Context, c *QueryCache, key Key, o options, ch <-chan singleflight.Result) Result[T] {
	select {
	case <-ctx.Done():
		snap := c.snapshot(key, o)
		res := resultOf[T](snap, c.isStale(snap, o))
		res.IsLoading = !res.HasData
		res.IsFetching = true
		if !res.HasData {
			res.Err = ctx.Err()
		}
		return res
	case r := <-ch:
		snap := c.snapshot(key, o)
		if !snap.hasData && snap.err == nil {
			// evicted between the fetch and this read
			if r.Err != nil {
				return Result[T]{Err: r.Err}
			}
			snap.data, snap.hasData, snap.updatedAt = r.Val, true, c.now()
		}
		return resultOf[T](snap, c.isStale(snap, o))
	}
}

func resultOf[T any](e entry, stale bool) Result[T] {
	res := Result[T]{
		HasData:    e.hasData,
		IsLoading:  e.fetching && !e.hasData,
		IsFetching: e.fetching,
		IsStale:    stale,
		Err:        e.err,
		UpdatedAt:  e.updatedAt,
	}
	if !e.hasData {
		return res
	}
	v, ok := cast[T](e.data)
	if !ok {
		res.HasData = false
		res.Err = fmt.Errorf("%w: key %s holds %T", ErrTypeMismatch, e.key.String(), e.data)
		return res
	}
	res.Data = v
	return res
}

func cast[T any](v any) (T, bool) {
	var zero T
	if v == nil {
		return zero, true
	}
	t, ok := v.(T)
	return t, ok
}

func erase[T any](fetch FetchFunc[T]) FetchFunc[any] {
	return func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}
}

func safeFetch(ctx context.Context, fetch FetchFunc[any]) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("fetch panicked: %v", rec)
		}
	}()
	return fetch(ctx)
}
