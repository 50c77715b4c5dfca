package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisStats_RecordsTotalsBucketsAndRoutes(t *testing.T) {
	mr, rdb := newTestRedis(t)
	stats := NewRedisStats(rdb, WithStatsPrefix("test:rl:"))

	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	stats.Record(StatsEvent{Key: "10.0.0.1", Allowed: true, Route: "POST /api/contact", At: at})
	stats.Record(StatsEvent{Key: "10.0.0.1", Allowed: true, Route: "POST /api/contact", At: at})
	stats.Record(StatsEvent{Key: "10.0.0.1", Allowed: false, Route: "POST /api/contact", At: at})
	stats.Close()

	allowed, denied, err := stats.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), allowed)
	assert.Equal(t, int64(1), denied)

	assert.Equal(t, "2", mr.HGet("test:rl:minute:202603040506", "allowed"))
	assert.Equal(t, "1", mr.HGet("test:rl:minute:202603040506", "denied"))
	assert.True(t, mr.TTL("test:rl:minute:202603040506") > 0, "minute bucket should expire")
	assert.Equal(t, "1", mr.HGet("test:rl:route", "POST /api/contact:denied"))
	assert.True(t, mr.TTL("test:rl:route") > 0, "route hash should expire")
}

func TestRedisStats_UnmatchedRouteLabel(t *testing.T) {
	mr, rdb := newTestRedis(t)
	stats := NewRedisStats(rdb)

	for i := 0; i < 50; i++ {
		stats.Record(StatsEvent{Key: "10.0.0.9", Allowed: i%2 == 0})
	}
	stats.Close()

	fields, err := rdb.HKeys(context.Background(), "webmatic:ratelimit:route").Result()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"unmatched:allowed", "unmatched:denied"}, fields)
	assert.Equal(t, "25", mr.HGet("webmatic:ratelimit:route", "unmatched:denied"))
}

func TestRedisStats_CustomTTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	stats := NewRedisStats(rdb, WithStatsPrefix("ttl"), WithStatsTTL(90*time.Second))

	at := time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC)
	stats.Record(StatsEvent{Allowed: true, Route: "GET /health", At: at})
	stats.Close()

	assert.Equal(t, 90*time.Second, mr.TTL("ttl:minute:202603040506"))
	assert.Equal(t, 90*time.Second, mr.TTL("ttl:route"))
}

func TestRedisStats_QueueSize(t *testing.T) {
	_, rdb := newTestRedis(t)
	stats := NewRedisStats(rdb, WithStatsQueueSize(8))
	defer stats.Close()

	assert.Equal(t, 8, cap(stats.events))
}

func TestRedisStats_TotalsEmpty(t *testing.T) {
	_, rdb := newTestRedis(t)
	stats := NewRedisStats(rdb)
	defer stats.Close()

	allowed, denied, err := stats.Totals(context.Background())
	require.NoError(t, err)
	assert.Zero(t, allowed)
	assert.Zero(t, denied)
}

func TestRedisStats_DropsWhenQueueFull(t *testing.T) {
	// No writer goroutine: the queue never drains.
	var drops int
	s := &RedisStats{events: make(chan StatsEvent, 1), dropped: func() { drops++ }}

	s.Record(StatsEvent{Key: "a"})
	s.Record(StatsEvent{Key: "b"})
	s.Record(StatsEvent{Key: "c"})

	assert.Equal(t, 2, drops)
}

func TestRedisStats_WriteFailureIsNotFatal(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	stats := NewRedisStats(rdb)

	stats.Record(StatsEvent{Allowed: true})
	stats.Close()
}
