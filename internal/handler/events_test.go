package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireven/shopfront/internal/domain/coupon"
	"github.com/mireven/shopfront/internal/notify"
)

func TestCouponEventsStream(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/coupon-events", nil)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		env.router.ServeHTTP(rec, req)
	}()

	// Give the handler time to subscribe before publishing. The buffered
	// event is still delivered after Close, so the sequence is deterministic.
	time.Sleep(50 * time.Millisecond)
	env.hub.Publish(notify.Event{
		Action: notify.ActionCreated,
		Coupon: coupon.Coupon{ID: "c-1", Label: "Streamed"},
	})
	env.hub.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream handler did not exit on hub close")
	}

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "data: "))
	assert.True(t, strings.HasSuffix(body, "\n\n"))
	assert.Contains(t, body, `"action":"created"`)
	assert.Contains(t, body, `"id":"c-1"`)
}

func TestCouponEventsExitsOnHubClose(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/coupon-events", nil)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		env.router.ServeHTTP(rec, req)
	}()

	time.Sleep(20 * time.Millisecond)
	env.hub.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream handler did not exit on hub close")
	}
}
