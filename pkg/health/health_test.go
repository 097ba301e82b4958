package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeProbe(t *testing.T, rec *httptest.ResponseRecorder) probeResponse {
	t.Helper()
	var resp probeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestLiveEndpoint(t *testing.T) {
	h := New()
	h.AddLivenessCheck("always-ok", time.Second, func(context.Context) error {
		return nil
	})
	h.Start(context.Background(), 10*time.Millisecond)
	defer h.Stop()

	rec := httptest.NewRecorder()
	h.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeProbe(t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Checks["always-ok"])
}

func TestReadyEndpointGate(t *testing.T) {
	h := New()
	h.Start(context.Background(), 10*time.Millisecond)
	defer h.Stop()

	// Readiness is gated until SetReady(true), even with no checks.
	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h.SetReady(true)
	rec = httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h.SetReady(false)
	rec = httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFailingCheck(t *testing.T) {
	h := New()
	h.SetReady(true)
	h.AddReadinessCheck("db", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})
	h.Start(context.Background(), 10*time.Millisecond)
	defer h.Stop()

	// The probe loop runs all checks once before ticking.
	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		return rec.Code == http.StatusServiceUnavailable
	}, time.Second, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	resp := decodeProbe(t, rec)
	assert.Equal(t, "unavailable", resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["db"])
}

func TestCheckRecovers(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	h := New()
	h.SetReady(true)
	h.AddReadinessCheck("flaky", time.Second, func(context.Context) error {
		if failing.Load() {
			return errors.New("down")
		}
		return nil
	})
	h.Start(context.Background(), 5*time.Millisecond)
	defer h.Stop()

	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		return rec.Code == http.StatusServiceUnavailable
	}, time.Second, 5*time.Millisecond)

	failing.Store(false)

	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		return rec.Code == http.StatusOK
	}, time.Second, 5*time.Millisecond)
}

func TestGoroutineCountCheck(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, GoroutineCountCheck(1_000_000)(ctx))
	assert.Error(t, GoroutineCountCheck(1)(ctx))
}
