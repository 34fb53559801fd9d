package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-hexagonal-users/pkg/response"
)

// KeyFunc builds a rate-limit bucket key from the request.
type KeyFunc func(c *gin.Context) string

// SkipFunc reports requests that bypass the limiter.
type SkipFunc func(c *gin.Context) bool

// Limit is a fixed-window limit: at most Max requests per Window per key.
type Limit struct {
	Max    int
	Window time.Duration
	Key    KeyFunc
	Skip   SkipFunc
}

// PerMinute limits each key to n requests a minute.
func PerMinute(n int, key KeyFunc) Limit {
	return Limit{Max: n, Window: time.Minute, Key: key}
}

func (l Limit) SkipWhen(skip SkipFunc) Limit {
	l.Skip = skip
	return l
}

// KeyByIP buckets by client IP.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "rl:ip:" + clientIP(c) }
}

// KeyByIPAndPath buckets by route and client IP.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		return "rl:path:" + path + ":ip:" + clientIP(c)
	}
}

// normalizePath returns the matched route pattern, or the raw path when no
// route matched.
func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyByUserID buckets by the authenticated user, or by IP for anonymous calls.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := CurrentUserID(c); uid != "" {
			return "rl:user:" + uid
		}
		return "rl:user:anon:ip:" + clientIP(c)
	}
}

// Returns {count, pttl}; the expiry is set on the first hit of a window.
var windowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// RateLimit enforces l with counters in Redis and sets the X-RateLimit-*
// headers. It fails open on Redis errors and is a no-op without a client.
func RateLimit(rdb *redis.Client, l Limit) gin.HandlerFunc {
	if rdb == nil || l.Max <= 0 || l.Window <= 0 || l.Key == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (l.Skip != nil && l.Skip(c)) {
			c.Next()
			return
		}

		res, err := windowScript.Run(c.Request.Context(), rdb, []string{l.Key(c)}, l.Window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			c.Next()
			return
		}
		count := int(res[0])
		reset := 0
		if res[1] > 0 {
			reset = int((time.Duration(res[1]) * time.Millisecond).Round(time.Second).Seconds())
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(l.Max-count, 0)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(reset))
		if count > l.Max {
			if reset > 0 {
				c.Header("Retry-After", strconv.Itoa(reset))
			}
			response.Abort(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}
