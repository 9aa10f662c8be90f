package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter shares fixed windows between API instances. It fails open when Redis
// is unreachable.
type RedisLimiter struct {
	client redis.Scripter
	script *redis.Script
	logger zerolog.Logger
}

// NewRedisLimiter returns nil when client is nil
func NewRedisLimiter(client redis.Scripter, logger zerolog.Logger) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(rateLimitScript),
		logger: logger,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if l == nil || key == "" || limit <= 0 || window <= 0 {
		return true
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{key}, ttl, limit).Int64()
	if err != nil {
		l.logger.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable, allowing request")
		return true
	}
	return allowed == 1
}
