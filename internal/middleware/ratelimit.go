package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/railbook/train-reservation/internal/config"
)

// Token bucket state and refill arithmetic live in Redis so every
// instance of the service draws from the same budget.  The script is
// atomic: check, refill and debit happen in one round trip.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local cap = tonumber(ARGV[2])
	local refill = tonumber(ARGV[3])
	local interval = tonumber(ARGV[4])
	local ttl = tonumber(ARGV[5])

	local bucket = redis.call('HMGET', key, 'tokens', 'stamp')
	local tokens = tonumber(bucket[1])
	local stamp = tonumber(bucket[2])
	if tokens == nil or stamp == nil then
		tokens = cap
		stamp = now
	end

	if interval > 0 and refill > 0 then
		local ticks = math.floor(math.max(0, now - stamp) / interval)
		if ticks > 0 then
			tokens = math.min(cap, tokens + ticks * refill)
			stamp = stamp + ticks * interval
		end
	end

	local allowed = 0
	local wait = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		wait = math.max(0, interval - (now - stamp))
	end

	redis.call('HMSET', key, 'tokens', tokens, 'stamp', stamp)
	redis.call('EXPIRE', key, ttl)
	return { allowed, tokens, wait }
`)

// NewTokenBucket rate limits the scheduled-booking API.  The create
// endpoint attracts scripted bursts in the minutes before a tatkal
// window opens; the bucket is keyed per user by default so one
// aggressive client exhausts their own budget, not everyone's.  When
// limiting is disabled or Redis is down the middleware fails open —
// losing a limiter must never lose a booking.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)

			ctx := c.Request().Context()
			vals, err := tokenBucketScript.Run(ctx, rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Result()
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("ratelimit: script failed for key=%s: %v", key, err)
				}
				return next(c)
			}

			arr, ok := vals.([]interface{})
			if !ok || len(arr) != 3 {
				return next(c)
			}
			allowed := toInt64(arr[0]) == 1
			remaining := toInt64(arr[1])
			waitMs := toInt64(arr[2])

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				secs := (waitMs + 999) / 1000
				c.Response().Header().Set("Retry-After", strconv.FormatInt(secs, 10))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "rate limit exceeded",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

// rateKey scopes the bucket.  The scheduled-booking routes always run
// after JWT auth, so the default keys on the authenticated user plus
// the route; IP-based strategies exist for deployments that front the
// service with shared credentials.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	route := c.Request().Method + " " + c.Path()
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		return strings.Join([]string{cfg.Prefix, "ip", clientIP(c)}, ":")
	case "user":
		return strings.Join([]string{cfg.Prefix, "user", rateSubject(c)}, ":")
	case "ip_route":
		return strings.Join([]string{cfg.Prefix, "ip", clientIP(c), "route", route}, ":")
	default: // "user_route"
		return strings.Join([]string{cfg.Prefix, "user", rateSubject(c), "route", route}, ":")
	}
}

// rateSubject stringifies the user_id claim however the JWT layer
// left it, falling back to the client IP so a misconfigured route
// order still limits something real.
func rateSubject(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	}
	return clientIP(c)
}

func clientIP(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// toInt64 normalizes a Lua script result element; go-redis returns
// integers as int64 but string replies appear under some proxies.
func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
