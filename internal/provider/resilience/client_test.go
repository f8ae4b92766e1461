package resilience_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aircast/aircast/internal/provider/resilience"
)

func TestClient_SuccessfulRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := resilience.NewClient(resilience.DefaultConfig("test"))

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClient_RetryOn5xx(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		count := attempts.Add(1)
		if count < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := resilience.NewClient(resilience.Config{
		Name:                "test-retry",
		Timeout:             5 * time.Second,
		MaxRetries:          5,
		InitialInterval:     10 * time.Millisecond,
		MaxInterval:         50 * time.Millisecond,
		ConsecutiveFailures: 100, // keep the breaker out of this test
	})

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), attempts.Load(), "should have retried until success")
}

func TestClient_4xxIsReturnedToCaller(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := resilience.NewClient(resilience.DefaultConfig("test-4xx"))

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// Client errors are the caller's problem, not a transport failure.
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), attempts.Load(), "4xx must not retry")
}

func TestClient_ExhaustedRetriesClassifiedAsHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := resilience.NewClient(resilience.Config{
		Name:                "test-5xx",
		Timeout:             time.Second,
		MaxRetries:          2,
		InitialInterval:     5 * time.Millisecond,
		MaxInterval:         10 * time.Millisecond,
		ConsecutiveFailures: 100,
	})

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	_, err = client.Do(req)
	require.Error(t, err)

	fe, ok := resilience.IsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, resilience.FetchHTTPStatus, fe.Kind)
	assert.Equal(t, http.StatusBadGateway, fe.StatusCode)
	assert.Equal(t, "test-5xx", fe.Provider)
}

func TestClient_TimeoutClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := resilience.NewClient(resilience.Config{
		Name:                "test-timeout",
		Timeout:             20 * time.Millisecond,
		MaxRetries:          1,
		InitialInterval:     5 * time.Millisecond,
		MaxInterval:         10 * time.Millisecond,
		ConsecutiveFailures: 100,
	})

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	_, err = client.Do(req)
	require.Error(t, err)

	fe, ok := resilience.IsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, resilience.FetchTimeout, fe.Kind)
}

func TestClient_UnreachableClassified(t *testing.T) {
	client := resilience.NewClient(resilience.Config{
		Name:                "test-unreachable",
		Timeout:             time.Second,
		MaxRetries:          1,
		InitialInterval:     5 * time.Millisecond,
		MaxInterval:         10 * time.Millisecond,
		ConsecutiveFailures: 100,
	})

	// Nothing listens on port 1.
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://127.0.0.1:1", http.NoBody)
	require.NoError(t, err)

	_, err = client.Do(req)
	require.Error(t, err)

	fe, ok := resilience.IsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, resilience.FetchUnreachable, fe.Kind)
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := resilience.NewClient(resilience.Config{
		Name:                "test-breaker",
		Timeout:             time.Second,
		MaxRetries:          1,
		InitialInterval:     time.Millisecond,
		MaxInterval:         2 * time.Millisecond,
		ConsecutiveFailures: 3,
		OpenTimeout:         time.Minute,
	})

	for i := 0; i < 3; i++ {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
		require.NoError(t, err)
		_, err = client.Do(req)
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateOpen, client.BreakerState())

	// Requests now fail fast without reaching the provider.
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)
	_, err = client.Do(req)
	require.Error(t, err)

	fe, ok := resilience.IsFetchError(err)
	require.True(t, ok)
	assert.Equal(t, resilience.FetchUnreachable, fe.Kind)
}
