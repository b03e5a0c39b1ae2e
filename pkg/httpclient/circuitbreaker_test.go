package httpclient

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testCBConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      1 * time.Second, // Short for tests.
		FailureRatio: 0.5,
		MinRequests:  3,
	}
}

func TestCircuitBreaker_ClosedState_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := New(fastConfig(0))
	cb := NewCircuitBreakerClient(client, testCBConfig("test-closed"), testLogger())

	resp, err := cb.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_TripsOnFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`error`))
	}))
	defer server.Close()

	client := New(fastConfig(0))
	cb := NewCircuitBreakerClient(client, testCBConfig("test-trip"), testLogger())

	// 5xx responses count as failures but are still returned to the caller.
	for i := 0; i < 3; i++ {
		resp, err := cb.Get(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		resp.Body.Close()
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())

	// Subsequent requests fail immediately with ErrCircuitOpen.
	_, err := cb.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenToClosedRecovery(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`error`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	cfg := testCBConfig("test-recovery")
	cfg.Timeout = 100 * time.Millisecond // Very short for test.

	client := New(fastConfig(0))
	cb := NewCircuitBreakerClient(client, cfg, testLogger())

	// Trip the breaker.
	for i := 0; i < 3; i++ {
		resp, err := cb.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	// Wait for the timeout to elapse so the breaker transitions to half-open.
	time.Sleep(150 * time.Millisecond)

	// Now make the server healthy.
	failing.Store(false)

	resp, err := cb.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_5xxBodyReachesCaller(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Something went wrong"}`))
	}))
	defer server.Close()

	client := New(fastConfig(0))
	cb := NewCircuitBreakerClient(client, testCBConfig("test-5xx-body"), testLogger())

	resp, err := cb.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// The envelope must still be parseable downstream.
	parsed := ParseResponseError(resp)
	require.Error(t, parsed)
	assert.Contains(t, parsed.Error(), "Something went wrong")
}

func TestCircuitBreaker_4xxNotCountedAsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"bad request"}`))
	}))
	defer server.Close()

	client := New(fastConfig(0))
	cb := NewCircuitBreakerClient(client, testCBConfig("test-4xx"), testLogger())

	// 4xx responses are structured rejections and must not trip the breaker.
	for i := 0; i < 5; i++ {
		resp, err := cb.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_DefaultConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("test-defaults")
	assert.Equal(t, "test-defaults", cfg.Name)
	assert.Equal(t, uint32(1), cfg.MaxRequests)
	assert.Equal(t, 60*time.Second, cfg.Interval)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 0.5, cfg.FailureRatio)
	assert.Equal(t, uint32(5), cfg.MinRequests)
}

func TestCircuitBreaker_OpenStateStopsTraffic(t *testing.T) {
	var reqCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqCount.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(fastConfig(0))
	cb := NewCircuitBreakerClient(client, testCBConfig("test-open-stops"), testLogger())

	for i := 0; i < 3; i++ {
		resp, err := cb.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())
	before := reqCount.Load()

	// Rejected requests never reach the backend.
	for i := 0; i < 5; i++ {
		_, err := cb.Get(context.Background(), server.URL)
		assert.ErrorIs(t, err, ErrCircuitOpen)
	}
	assert.Equal(t, before, reqCount.Load())
}
