// Package search turns a rapid stream of query keystrokes into a bounded rate
// of catalog calls: bursts are debounced so only the final query executes, and
// recent results are served from a small FIFO cache.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"cinescope/models"
)

const (
	// DefaultQuietWindow is the debounce interval between the last keystroke
	// and the executed search.
	DefaultQuietWindow = 500 * time.Millisecond
	// DefaultCacheSize bounds the number of cached recent queries.
	DefaultCacheSize = 10
)

// Fetcher executes the underlying catalog search for a normalized query.
type Fetcher func(ctx context.Context, query string) ([]models.MediaItem, error)

// Result is delivered to the caller of the surviving search in a burst.
type Result struct {
	Query string
	Items []models.MediaItem
	Err   error
}

type pendingCall struct {
	ctx     context.Context
	query   string
	deliver func(Result)
	gen     uint64
}

// Service debounces and caches catalog searches. One shared instance serves
// all callers; concurrent distinct queries populate and evict the same cache.
type Service struct {
	fetch Fetcher
	quiet time.Duration

	mu      sync.Mutex
	cache   *fifoCache
	timer   *time.Timer
	pending *pendingCall
	gen     uint64
}

// NewService builds a search service around fetch. A non-positive quiet
// window or cache size falls back to the defaults.
func NewService(fetch Fetcher, quiet time.Duration, cacheSize int) *Service {
	if quiet <= 0 {
		quiet = DefaultQuietWindow
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Service{
		fetch: fetch,
		quiet: quiet,
		cache: newFIFOCache(cacheSize),
	}
}

// Normalize folds a raw query into its cache key.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Search schedules query after the quiet window, superseding any call still
// pending; only the last call of a burst executes and delivers. An empty
// normalized query delivers an empty result immediately and cancels whatever
// was pending. Superseded calls never mutate state, hit the network, or
// deliver.
func (s *Service) Search(ctx context.Context, query string, deliver func(Result)) {
	key := Normalize(query)

	s.mu.Lock()
	s.gen++
	s.stopTimerLocked()

	if key == "" {
		s.mu.Unlock()
		deliver(Result{Query: key, Items: []models.MediaItem{}})
		return
	}

	call := &pendingCall{ctx: ctx, query: key, deliver: deliver, gen: s.gen}
	s.pending = call
	s.timer = time.AfterFunc(s.quiet, func() { s.fire(call) })
	s.mu.Unlock()
}

// SearchNow bypasses the debounce window: normalize, consult the cache, fetch
// on a miss. Used where the caller already rate-limits (form submit, HTTP).
func (s *Service) SearchNow(ctx context.Context, query string) ([]models.MediaItem, error) {
	key := Normalize(query)
	if key == "" {
		return []models.MediaItem{}, nil
	}

	s.mu.Lock()
	if items, ok := s.cache.Get(key); ok {
		s.mu.Unlock()
		return items, nil
	}
	s.mu.Unlock()

	items, err := s.fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache.Put(key, items)
	s.mu.Unlock()
	return items, nil
}

// Flush executes the pending call immediately, if any. Used on explicit
// submit so the user does not wait out the quiet window.
func (s *Service) Flush() {
	s.mu.Lock()
	call := s.pending
	s.pending = nil
	s.stopTimerLocked()
	s.mu.Unlock()

	if call != nil {
		s.run(call)
	}
}

// Cancel drops the pending call and marks any in-flight fetch stale so its
// late response cannot clobber newer state. Safe to call at any time,
// including with nothing pending.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.gen++
	s.stopTimerLocked()
}

func (s *Service) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Service) fire(call *pendingCall) {
	s.mu.Lock()
	if s.pending != call {
		// Superseded or cancelled between timer fire and lock acquisition.
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.mu.Unlock()

	s.run(call)
}

func (s *Service) run(call *pendingCall) {
	s.mu.Lock()
	if call.gen != s.gen {
		s.mu.Unlock()
		return
	}
	if items, ok := s.cache.Get(call.query); ok {
		s.mu.Unlock()
		call.deliver(Result{Query: call.query, Items: items})
		return
	}
	s.mu.Unlock()

	items, err := s.fetch(call.ctx, call.query)

	s.mu.Lock()
	current := call.gen == s.gen
	if current && err == nil {
		// Failed queries are never cached.
		s.cache.Put(call.query, items)
	}
	s.mu.Unlock()

	if !current {
		// A newer search superseded us while the fetch was in flight.
		return
	}
	call.deliver(Result{Query: call.query, Items: items, Err: err})
}

// CachedQueries reports how many queries are currently cached.
func (s *Service) CachedQueries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
