// Package ratelimit implements per-client admission control over a sliding
// time window.
//
// A SlidingWindow keeps, for every client key, the arrival times of the
// requests it admitted inside the current window. A request is admitted when
// fewer than MaxCalls timestamps remain after dropping those that are at
// least Window old. The decision is memoryless beyond the window: a denied
// client is admitted again as soon as its oldest timestamp ages out.
//
// State is in-process only. Nothing is shared between instances.
package ratelimit

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Defaults used when a Config field is left at zero.
const (
	DefaultMaxCalls = 100
	DefaultWindow   = 60 * time.Second
	DefaultMaxKeys  = 10000
)

// Config configures a SlidingWindow.
type Config struct {
	// MaxCalls is the number of requests a key may make within Window.
	MaxCalls int
	// Window is the length of the rolling interval ending at "now".
	Window time.Duration
	// MaxKeys caps the number of tracked keys. When a new key would exceed
	// the cap, the least recently active key is forgotten. Zero means
	// DefaultMaxKeys; a negative value disables the cap.
	MaxKeys int
}

func (c Config) withDefaults() Config {
	if c.MaxCalls <= 0 {
		c.MaxCalls = DefaultMaxCalls
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.MaxKeys == 0 {
		c.MaxKeys = DefaultMaxKeys
	}
	return c
}

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	// Remaining is how many more requests the key may make in the current window.
	Remaining int
	// RetryAfter is set on denial: the time until the oldest in-window
	// request ages out and a slot frees up.
	RetryAfter time.Duration
}

// clientLog is the request log of one key. timestamps are in arrival order.
type clientLog struct {
	key        string
	timestamps []time.Time
	lastSeen   time.Time
}

// SlidingWindow is a concurrency-safe sliding-window limiter.
// Construct it once with New and share the pointer.
type SlidingWindow struct {
	cfg Config

	mu   sync.Mutex
	logs map[string]*list.Element
	// recency orders keys by last admission check, most recent at the front.
	recency *list.List
}

// New creates a SlidingWindow. Zero fields in cfg take the package defaults.
func New(cfg Config) *SlidingWindow {
	return &SlidingWindow{
		cfg:     cfg.withDefaults(),
		logs:    make(map[string]*list.Element),
		recency: list.New(),
	}
}

// Config returns the effective configuration.
func (l *SlidingWindow) Config() Config { return l.cfg }

// Admit decides whether the request from key arriving at now is allowed, and
// records it if so. Prune, count and append happen under one lock, so two
// concurrent callers can never both take the last free slot.
func (l *SlidingWindow) Admit(key string, now time.Time) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl := l.touch(key, now)

	// Prune in place; the slice is owned by this log.
	valid := cl.timestamps[:0]
	for _, ts := range cl.timestamps {
		if now.Sub(ts) < l.cfg.Window {
			valid = append(valid, ts)
		}
	}
	clear(cl.timestamps[len(valid):])
	cl.timestamps = valid

	if len(cl.timestamps) >= l.cfg.MaxCalls {
		retry := cl.timestamps[0].Add(l.cfg.Window).Sub(now)
		if retry < 0 {
			retry = 0
		}
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retry}
	}

	cl.timestamps = append(cl.timestamps, now)
	return Decision{Allowed: true, Remaining: l.cfg.MaxCalls - len(cl.timestamps)}
}

// touch returns the log for key, creating it if needed, and marks it as the
// most recently active. Callers must hold l.mu.
func (l *SlidingWindow) touch(key string, now time.Time) *clientLog {
	if el, ok := l.logs[key]; ok {
		l.recency.MoveToFront(el)
		cl := el.Value.(*clientLog)
		cl.lastSeen = now
		return cl
	}

	if l.cfg.MaxKeys > 0 {
		for l.recency.Len() >= l.cfg.MaxKeys {
			l.removeElement(l.recency.Back())
		}
	}

	cl := &clientLog{key: key, lastSeen: now}
	l.logs[key] = l.recency.PushFront(cl)
	return cl
}

func (l *SlidingWindow) removeElement(el *list.Element) {
	if el == nil {
		return
	}
	cl := el.Value.(*clientLog)
	l.recency.Remove(el)
	delete(l.logs, cl.key)
}

// Sweep forgets every key that has not been checked within the window as of
// now. Such keys hold only expired timestamps, so dropping them does not
// change any future decision. It returns the number of keys removed.
func (l *SlidingWindow) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for el := l.recency.Back(); el != nil; {
		prev := el.Prev()
		if now.Sub(el.Value.(*clientLog).lastSeen) >= l.cfg.Window {
			l.removeElement(el)
			removed++
		}
		el = prev
	}
	return removed
}

// Len returns the number of keys currently tracked.
func (l *SlidingWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.logs)
}

// StartJanitor runs Sweep every interval until ctx is done. onSweep, if not
// nil, receives the number of keys removed by each pass.
func (l *SlidingWindow) StartJanitor(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n := l.Sweep(now)
				if onSweep != nil {
					onSweep(n)
				}
			}
		}
	}()
}
