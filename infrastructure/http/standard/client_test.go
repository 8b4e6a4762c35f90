package standard

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockups-app-api/core/interfaces"
)

var _ interfaces.HTTPClient = (*StandardHTTPClient)(nil)

func fastClient() *StandardHTTPClient {
	return NewStandardHTTPClient(5*time.Second, WithBackoff(time.Millisecond))
}

type countingTransport struct {
	calls int32
	next  http.RoundTripper
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.next.RoundTrip(req)
}

func TestWithTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	rt := &countingTransport{next: http.DefaultTransport}
	client := NewStandardHTTPClient(5*time.Second, WithTransport(rt))

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body().Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
	assert.Equal(t, int32(1), atomic.LoadInt32(&rt.calls))
}

func TestNewStandardHTTPClient(t *testing.T) {
	client := NewStandardHTTPClient(10 * time.Second)
	require.NotNil(t, client)
	assert.Equal(t, 10*time.Second, client.client.Timeout)
}

func TestGet_Success(t *testing.T) {
	var ua string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		ua = r.Header.Get("User-Agent")
		w.Header().Set("X-Test", "yes")
		_, _ = w.Write([]byte("test response"))
	}))
	defer server.Close()

	resp, err := fastClient().Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body().Close()

	body, err := io.ReadAll(resp.Body())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "test response", string(body))
	assert.Equal(t, "yes", resp.Header("x-test"))
	assert.Contains(t, ua, "MockupsAPI")
}

func TestPost_RetriesServerErrorsWithSameBody(t *testing.T) {
	var calls int32
	var mu sync.Mutex
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(data))
		mu.Unlock()
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	resp, err := fastClient().Post(context.Background(), server.URL, strings.NewReader(`{"q":1}`))
	require.NoError(t, err)
	defer resp.Body().Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{`{"q":1}`, `{"q":1}`, `{"q":1}`}, bodies)
}

func TestPost_TooManyRequestsIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	resp, err := fastClient().Post(context.Background(), server.URL, strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body().Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode())
	assert.Equal(t, "2", resp.Header("Retry-After"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGet_PersistentServerErrorReturnsLastResponse(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	resp, err := fastClient().Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body().Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode())
	assert.Equal(t, int32(maxRetries), atomic.LoadInt32(&calls))
}

func TestGet_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resp, err := fastClient().Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body().Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGet_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := fastClient().Get(ctx, server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGet_InvalidURL(t *testing.T) {
	_, err := fastClient().Get(context.Background(), "://bad")
	assert.Error(t, err)
}

func TestGet_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := fastClient().Get(context.Background(), url)
	assert.Error(t, err)
}
