package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatsEvent describes one admission decision.
type StatsEvent struct {
	Key     string
	Allowed bool
	// Route is the matched route pattern, or empty for requests that match
	// none. Raw request paths must not be used here: they are client-chosen.
	Route string
	At    time.Time
}

// UnmatchedRoute labels events whose request matched no route.
const UnmatchedRoute = "unmatched"

// StatsRecorder receives admission decisions for reporting. Implementations
// must not block the request path; recording is best-effort.
type StatsRecorder interface {
	Record(ev StatsEvent)
}

// RedisStats aggregates decision counts in Redis hashes:
//
//	<prefix>:total                 allowed|denied
//	<prefix>:minute:<YYYYMMDDhhmm>  allowed|denied (expires after TTL)
//	<prefix>:route                 "<route>:allowed|denied" (expiry refreshed on write)
//
// Events are queued to a single writer goroutine. When the queue is full,
// events are dropped rather than delaying the request.
type RedisStats struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration

	events  chan StatsEvent
	done    chan struct{}
	once    sync.Once
	dropped func()
}

// RedisStatsOption configures RedisStats.
type RedisStatsOption func(*RedisStats)

// WithStatsPrefix sets the key prefix (default "webmatic:ratelimit").
func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStats) { s.prefix = strings.Trim(prefix, ":") }
}

// WithStatsTTL sets the expiry of per-minute buckets and of the route hash
// (default 24h).
func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStats) { s.ttl = d }
}

// WithStatsQueueSize sets the event queue capacity (default 1024).
func WithStatsQueueSize(n int) RedisStatsOption {
	return func(s *RedisStats) {
		if n > 0 {
			s.events = make(chan StatsEvent, n)
		}
	}
}

// WithStatsOnDrop registers a callback invoked for each dropped event.
func WithStatsOnDrop(fn func()) RedisStatsOption {
	return func(s *RedisStats) { s.dropped = fn }
}

// NewRedisStats starts the writer goroutine. Call Close to drain and stop it.
func NewRedisStats(rdb *redis.Client, opts ...RedisStatsOption) *RedisStats {
	s := &RedisStats{
		rdb:    rdb,
		prefix: "webmatic:ratelimit",
		ttl:    24 * time.Hour,
		events: make(chan StatsEvent, 1024),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

// Record queues ev. It never blocks.
func (s *RedisStats) Record(ev StatsEvent) {
	select {
	case s.events <- ev:
	default:
		if s.dropped != nil {
			s.dropped()
		}
	}
}

// Close stops accepting events, flushes the queue and waits for the writer.
// Record must not be called after Close.
func (s *RedisStats) Close() {
	s.once.Do(func() { close(s.events) })
	<-s.done
}

func (s *RedisStats) run() {
	defer close(s.done)
	for ev := range s.events {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := s.write(ctx, ev); err != nil {
			slog.Warn("ratelimit stats write failed", "error", err)
		}
		cancel()
	}
}

func (s *RedisStats) write(ctx context.Context, ev StatsEvent) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucketKey, s.ttl)
	}

	route := ev.Route
	if route == "" {
		route = UnmatchedRoute
	}
	routeKey := s.prefix + ":route"
	pipe.HIncrBy(ctx, routeKey, route+":"+field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, routeKey, s.ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Totals reads the cumulative allowed/denied counters.
func (s *RedisStats) Totals(ctx context.Context) (allowed, denied int64, err error) {
	vals, err := s.rdb.HGetAll(ctx, s.prefix+":total").Result()
	if err != nil {
		return 0, 0, err
	}
	if allowed, err = parseCount(vals["allowed"]); err != nil {
		return 0, 0, err
	}
	if denied, err = parseCount(vals["denied"]); err != nil {
		return 0, 0, err
	}
	return allowed, denied, nil
}

func parseCount(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}
