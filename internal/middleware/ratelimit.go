package middleware

import (
	"fmt"
	"net"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	redisInfra "marketplace/internal/infrastructure/redis"
)

// Sliding-window limiter: prune expired members, count, then admit or
// reject, all in one atomic script.
// KEYS[1]=limit key, ARGV: now, window start, window seconds, member, limit.
const luaRateLimit = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowStart = tonumber(ARGV[2])
local windowSec = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '0', windowStart)

local count = redis.call('ZCARD', key)

if count < tonumber(ARGV[5]) then
  redis.call('ZADD', key, now, member)
  redis.call('EXPIRE', key, windowSec)
  return count + 1
else
  return -1
end
`

// RateLimit caps requests per session (falling back to client IP) within a
// sliding window. Redis failures admit the request rather than blocking
// checkout on an unavailable limiter.
func RateLimit(rdb *goredis.Client, scope string, limit int, window time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if session, ok := SessionFromContext(r.Context()); ok {
				id = session.UserID
			} else {
				id = clientIP(r)
			}
			key := redisInfra.RateLimitKey(scope, id)

			now := time.Now().Unix()
			windowSec := int64(window.Seconds())
			member := fmt.Sprintf("%d-%d", now, time.Now().UnixNano())

			res, err := rdb.Eval(r.Context(), luaRateLimit, []string{key},
				now, now-windowSec, windowSec, member, limit).Int()
			if err != nil {
				logger.Warn("Rate limiter unavailable, admitting request", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if res < 0 {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
