package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scoutlabs/retail-pulse/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analytics/overview", r.URL.Path)
		assert.Equal(t, "NCR", r.URL.Query().Get("region"))
		assert.Equal(t, "vercel", r.Header.Get("X-Client-Platform"))
		assert.Equal(t, "1.4.2", r.Header.Get("X-Client-Version"))
		w.Write([]byte(`{"status":"ok","data":{"total_sales":1000}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithMetadata("vercel", "1.4.2"))
	payload, err := c.Fetch(context.Background(), source.ResourceOverview, source.Params{"region": "NCR"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_sales":1000}`, string(payload))
}

func TestFetchHealthWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	payload, err := c.Fetch(context.Background(), source.ResourceHealth, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"healthy"}`, string(payload))
}

func TestFetchFilterOptionsPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/filters/options/city", r.URL.Path)
		// The type parameter moves into the path and must not be repeated.
		assert.Empty(t, r.URL.Query().Get("type"))
		assert.Equal(t, "NCR", r.URL.Query().Get("region"))
		w.Write([]byte(`{"status":"ok","data":["Manila","Quezon City"]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	payload, err := c.Fetch(context.Background(), source.ResourceFilterOptions, source.Params{"type": "city", "region": "NCR"})
	require.NoError(t, err)
	assert.JSONEq(t, `["Manila","Quezon City"]`, string(payload))
}

func TestFetchFilterOptionsRequiresType(t *testing.T) {
	c := NewClient("http://backend.invalid")
	_, err := c.Fetch(context.Background(), source.ResourceFilterOptions, nil)
	var cliErr *source.ClientError
	require.ErrorAs(t, err, &cliErr)
}

func TestServerErrorRetriedThenClassified(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetries(2, time.Millisecond))
	_, err := c.Fetch(context.Background(), source.ResourceOverview, nil)

	var srvErr *source.ServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, http.StatusBadGateway, srvErr.Status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "initial attempt plus two retries")
}

func TestClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "unknown filter", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetries(3, time.Millisecond))
	_, err := c.Fetch(context.Background(), source.ResourceOverview, nil)

	var cliErr *source.ClientError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, http.StatusBadRequest, cliErr.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"ok","data":{"ready":true}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetries(3, time.Millisecond))
	payload, err := c.Fetch(context.Background(), source.ResourceOverview, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ready":true}`, string(payload))
}

func TestUnreachableBackendIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := NewClient(srv.URL, WithRetries(1, time.Millisecond))
	_, err := c.Fetch(context.Background(), source.ResourceOverview, nil)

	var netErr *source.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, source.IsFatal(err))
}

func TestMalformedEnvelopeIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>definitely not json</html>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetries(0, time.Millisecond))
	_, err := c.Fetch(context.Background(), source.ResourceOverview, nil)
	require.Error(t, err)
	assert.False(t, source.IsFatal(err))
	assert.False(t, source.IsClientError(err))
}

func TestContextCancellationStopsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, WithRetries(3, 10*time.Millisecond))
	_, err := c.Fetch(ctx, source.ResourceOverview, nil)
	require.Error(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}
