package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each identifier's window as a sorted set of timestamps,
// scored by nanosecond arrival time. Used when the API runs more than one
// replica; the in-memory store is the single-node default.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// checkScript purges, counts and conditionally records in one atomic step,
// mirroring the mutex in MemoryStore: concurrent requests for the same
// identifier must never all read the pre-record count.
// KEYS[1] window key; ARGV: score, cutoff, max, ttl ms, member.
// Returns {allowed, count, oldest score or ''}.
var checkScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, ARGV[2])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[3]) then
	local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
	local reset = ''
	if oldest[2] then
		reset = oldest[2]
	end
	return {0, count, reset}
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[5])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return {1, count, ''}
`)

// NewRedisStore creates a store backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		now:    time.Now,
	}
}

func redisKey(identifier string) string {
	return "ratelimit:" + identifier
}

// Check implements Store. Members carry a random suffix so requests that
// land on the same nanosecond still count separately.
func (s *RedisStore) Check(ctx context.Context, identifier string, window time.Duration, max int) (Result, error) {
	key := redisKey(identifier)
	now := s.now()
	score := now.UnixNano()
	cutoff := now.Add(-window).UnixNano()
	member := strconv.FormatInt(score, 10) + "-" + uuid.New().String()

	raw, err := checkScript.Run(ctx, s.client, []string{key},
		score, cutoff, max, window.Milliseconds(), member).Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit check: %w", err)
	}
	if len(raw) < 3 {
		return Result{}, fmt.Errorf("rate limit check: short reply (%d values)", len(raw))
	}

	allowed, _ := raw[0].(int64)
	count, _ := raw[1].(int64)

	if allowed == 0 {
		resetAt := now.Add(window)
		if oldest, ok := raw[2].(string); ok && oldest != "" {
			if oldestScore, err := strconv.ParseFloat(oldest, 64); err == nil {
				resetAt = time.Unix(0, int64(oldestScore)).Add(window)
			}
		}
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	return Result{Allowed: true, Remaining: max - int(count) - 1, ResetAt: now.Add(window)}, nil
}
