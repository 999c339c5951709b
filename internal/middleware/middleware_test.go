package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railbook/train-reservation/internal/config"
)

func testContext(t *testing.T, method, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestCatalogCacheKeyIsStablePerRouteAndQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "catalog", KeyStrategy: "route_query"}

	a := catalogCacheKey(cfg, testContext(t, http.MethodGet, "/v1/trains?page=1"))
	b := catalogCacheKey(cfg, testContext(t, http.MethodGet, "/v1/trains?page=1"))
	other := catalogCacheKey(cfg, testContext(t, http.MethodGet, "/v1/trains?page=2"))

	assert.Equal(t, a, b, "same route and query must share a key")
	assert.NotEqual(t, a, other, "query must contribute to the key")
	assert.True(t, strings.HasPrefix(a, "catalog:"))
}

func TestCatalogCacheKeyRouteStrategyIgnoresQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "catalog", KeyStrategy: "route"}

	a := catalogCacheKey(cfg, testContext(t, http.MethodGet, "/v1/trains?page=1"))
	b := catalogCacheKey(cfg, testContext(t, http.MethodGet, "/v1/trains?page=2"))
	assert.Equal(t, a, b)
}

func TestCaptureWriterBuffersBody(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 64}

	_, err := cw.Write([]byte(`{"trains":[]}`))
	require.NoError(t, err)

	assert.Equal(t, `{"trains":[]}`, cw.buf.String())
	assert.Equal(t, `{"trains":[]}`, rec.Body.String(), "client sees the body unchanged")
	assert.False(t, cw.overflow)
}

func TestCaptureWriterOverflowServesButDisqualifies(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 8}

	payload := strings.Repeat("x", 32)
	_, err := cw.Write([]byte(payload))
	require.NoError(t, err)

	assert.True(t, cw.overflow)
	assert.Zero(t, cw.buf.Len(), "oversized body must not be kept for caching")
	assert.Equal(t, payload, rec.Body.String(), "client still gets the full body")
}

func TestNewRedisCacheNilClientIsNoOp(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: true}, nil)

	called := false
	h := mw(func(c echo.Context) error { called = true; return nil })
	require.NoError(t, h(testContext(t, http.MethodGet, "/v1/trains")))
	assert.True(t, called)
}

func TestNewTokenBucketNilClientIsNoOp(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil)

	called := false
	h := mw(func(c echo.Context) error { called = true; return nil })
	require.NoError(t, h(testContext(t, http.MethodPost, "/v1/scheduled-bookings")))
	assert.True(t, called)
}

func TestRateKeyDefaultsToUserAndRoute(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl:bookings", KeyStrategy: "user_route"}
	c := testContext(t, http.MethodPost, "/v1/scheduled-bookings")
	c.Set("user_id", "42")

	key := rateKey(cfg, c)
	assert.Contains(t, key, "rl:bookings:user:42")
	assert.Contains(t, key, "POST")
}

func TestRateKeySeparatesUsers(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl:bookings", KeyStrategy: "user"}

	a := testContext(t, http.MethodPost, "/v1/scheduled-bookings")
	a.Set("user_id", "7")
	b := testContext(t, http.MethodPost, "/v1/scheduled-bookings")
	b.Set("user_id", "8")

	assert.NotEqual(t, rateKey(cfg, a), rateKey(cfg, b),
		"one user's burst must not drain another user's bucket")
}

func TestRateSubjectAcceptsClaimTypes(t *testing.T) {
	cases := map[string]struct {
		value interface{}
		want  string
	}{
		"string":  {"42", "42"},
		"float64": {float64(42), "42"},
		"uint64":  {uint64(42), "42"},
		"int64":   {int64(42), "42"},
		"int":     {42, "42"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := testContext(t, http.MethodGet, "/v1/scheduled-bookings")
			c.Set("user_id", tc.value)
			assert.Equal(t, tc.want, rateSubject(c))
		})
	}
}

func TestRateSubjectFallsBackToIP(t *testing.T) {
	c := testContext(t, http.MethodGet, "/v1/trains")
	got := rateSubject(c)
	assert.NotEmpty(t, got)
	assert.NotEqual(t, "anon", got, "missing user id keys on the client address")
}
