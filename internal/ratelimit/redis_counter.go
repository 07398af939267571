package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrementScript increments the key, arms the expiry on the first hit of a
// window and returns {count, pttl}. Running it as one script keeps the
// increment and the expiry atomic across gateway instances.
var incrementScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RedisCounter is a Counter shared by every gateway instance.
type RedisCounter struct {
	client redis.Scripter
	prefix string
	now    func() time.Time
}

// NewRedisCounter creates a counter storing keys under prefix (e.g. "leadgate:rl:").
func NewRedisCounter(client redis.Scripter, prefix string) *RedisCounter {
	return &RedisCounter{client: client, prefix: prefix, now: time.Now}
}

// Increment implements Counter.
func (r *RedisCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	res, err := incrementScript.Run(ctx, r.client, []string{r.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis counter increment: %w", err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("redis counter increment: unexpected reply length %d", len(res))
	}
	return res[0], r.now().Add(time.Duration(res[1]) * time.Millisecond), nil
}
