package httpmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := &rateLimiter{
		cfg:     RateLimitConfig{Max: 3, Window: time.Minute},
		windows: make(map[string]*window),
	}
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, _, ok := rl.allow("10.0.0.1", now)
		require.True(t, ok, "request %d should pass", i+1)
	}

	_, resetAt, ok := rl.allow("10.0.0.1", now)
	assert.False(t, ok)
	assert.Equal(t, now.Add(time.Minute), resetAt)

	// A different client has its own window.
	_, _, ok = rl.allow("10.0.0.2", now)
	assert.True(t, ok)
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl := &rateLimiter{
		cfg:     RateLimitConfig{Max: 4, Window: time.Minute},
		windows: make(map[string]*window),
	}
	start := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		_, _, ok := rl.allow("k", start)
		require.True(t, ok)
	}
	_, _, ok := rl.allow("k", start)
	require.False(t, ok)

	// Half a window later the previous window still weighs in at 50%, so
	// only part of the budget is back.
	half := start.Add(90 * time.Second)
	_, _, ok = rl.allow("k", half)
	assert.True(t, ok)
	_, _, ok = rl.allow("k", half)
	assert.True(t, ok)
	_, _, ok = rl.allow("k", half)
	assert.False(t, ok)

	// Two idle windows later the budget is fully restored.
	later := start.Add(3 * time.Minute)
	for i := 0; i < 4; i++ {
		_, _, ok := rl.allow("k", later)
		assert.True(t, ok, "request %d after reset", i+1)
	}
}

func TestRateLimiterEvict(t *testing.T) {
	rl := &rateLimiter{
		cfg:     RateLimitConfig{Max: 1, Window: time.Minute},
		windows: make(map[string]*window),
	}
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

	rl.allow("stale", now)
	rl.allow("fresh", now.Add(90*time.Second))

	rl.evict(now.Add(2 * time.Minute))

	assert.NotContains(t, rl.windows, "stale")
	assert.Contains(t, rl.windows, "fresh")
}

func TestRateLimitMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := RateLimit(ctx, RateLimitConfig{
		Max:    2,
		Window: time.Minute,
		KeyFunc: func(*http.Request) string {
			return "fixed"
		},
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		return rec
	}

	first := do()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := do()
	assert.Equal(t, http.StatusOK, second.Code)

	third := do()
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "0", third.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, third.Header().Get("Retry-After"))
	assert.Contains(t, third.Body.String(), "rate limit exceeded")
}
