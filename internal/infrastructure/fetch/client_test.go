package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(attempts int) (*Client, *[]time.Duration) {
	var waits []time.Duration
	c := NewClient(Options{Attempts: attempts, BaseDelay: 10 * time.Millisecond}, nil)
	c.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return c, &waits
}

func TestFetchTextRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Chrome/124.0")
		assert.Equal(t, "en-US,en;q=0.9", r.Header.Get("Accept-Language"))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	c, waits := newTestClient(3)
	body, err := c.FetchText(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", body)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *waits)
}

func TestFetchTextSurfacesLastError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c, waits := newTestClient(3)
	_, err := c.FetchText(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 3, fetchErr.Attempts)
	assert.Equal(t, server.URL, fetchErr.URL)
	assert.ErrorContains(t, err, "502")
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, *waits, 2)
}

func TestFetchTextTreatsEmptyBodyAsFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("   "))
	}))
	defer server.Close()

	c, _ := newTestClient(2)
	_, err := c.FetchText(context.Background(), server.URL)
	assert.ErrorContains(t, err, "empty body")
}

func TestFetchTextStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(Options{Attempts: 5, BaseDelay: time.Hour}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.FetchText(ctx, server.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
