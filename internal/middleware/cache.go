package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/railbook/train-reservation/internal/config"
)

// captureWriter tees the response body into a bounded buffer while
// forwarding it to the client unchanged.  overflow is set once the
// body passes the cap, which disqualifies the response from caching
// without ever truncating what the client receives.
type captureWriter struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.overflow {
		if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
			cw.overflow = true
			cw.buf.Reset()
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

// catalogCacheKey hashes the route (and, by default, the query) under
// the configured prefix.  The catalog is identical for every caller,
// so nothing user-specific ever enters the key.
func catalogCacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	parts := []string{c.Path()}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		// route only
	case "method_route":
		parts = append([]string{r.Method}, parts...)
	default: // "route_query"
		parts = append(parts, r.URL.RawQuery)
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum)
}

// NewRedisCache serves the public catalog endpoints from Redis.  The
// train list and class fares change on a timescale of days while
// browse traffic spikes in the minutes before a tatkal window opens;
// a short-TTL cache keeps those reads off the booking database.  Only
// complete 200 JSON bodies are stored.  With a nil client or Enabled
// false the middleware is a no-op.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			ctx := c.Request().Context()
			key := catalogCacheKey(cfg, c)

			if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, body)
			}

			cw := &captureWriter{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          cfg.MaxBodyBytes,
			}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			// Oversized or non-JSON responses are served but never
			// stored; error statuses must not shadow a later recovery.
			contentType := c.Response().Header().Get(echo.HeaderContentType)
			if cw.status == http.StatusOK && !cw.overflow &&
				strings.HasPrefix(contentType, echo.MIMEApplicationJSON) {
				_ = rdb.SetEx(context.Background(), key, cw.buf.Bytes(), ttl).Err()
			}
			return nil
		}
	}
}
