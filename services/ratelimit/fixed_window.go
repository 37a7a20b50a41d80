// Package ratelimit throttles requests per key with Redis fixed windows.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/recomendo/core"
)

const redisTimeout = 2 * time.Second

// INCR the window counter; the first hit of a window sets its expiry.
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Limiter allows `limit` hits per key in each window.
type Limiter struct {
	limit  int
	window time.Duration
	prefix string
	client *redis.Client
}

func NewLimiter(conf *core.Config) (*Limiter, error) {
	return NewFixedWindowLimiter(conf.Redis.Address, conf.Redis.Password, conf.Redis.Prefix, conf.RateLimit.Limit, conf.RateLimit.Window)
}

func NewFixedWindowLimiter(addr, password, prefix string, limit int, window time.Duration) (*Limiter, error) {
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("rate limiter redis address is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "recomendo:ratelimit"
	}
	return &Limiter{
		limit:  limit,
		window: window,
		prefix: prefix,
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
	}, nil
}

// Allow reports whether key is within quota. Redis failures deny the hit and are returned.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	windowMs := l.window.Milliseconds()
	slot := time.Now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64()
	if err != nil {
		return false, errors.Wrap(err, "running rate limit script")
	}
	return count <= int64(l.limit), nil
}

func (l *Limiter) Close() error {
	return l.client.Close()
}
