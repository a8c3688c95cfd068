package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nominatimBody = `[
  {"display_name": "Union Square, Manhattan", "lat": "40.7359", "lon": "-73.9911"},
  {"display_name": "Union Square, Somerville", "lat": "42.3797", "lon": "-71.0954"}
]`

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearch(t *testing.T) {
	t.Parallel()

	var gotPath, gotAgent string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		assert.Equal(t, "union square", r.URL.Query().Get("q"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		w.Write([]byte(nominatimBody))
	})

	c := NewClient(
		WithBaseURL(srv.URL),
		WithUserAgent("saferoute-test/1.0"),
		WithLimit(2),
		WithRateLimit(1000),
	)

	results, err := c.Search(context.Background(), "union square")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "/search", gotPath)
	assert.Equal(t, "saferoute-test/1.0", gotAgent)
	assert.Equal(t, "Union Square, Manhattan", results[0].DisplayName)
	assert.InDelta(t, 40.7359, results[0].Lat, 1e-6)
	assert.InDelta(t, -73.9911, results[0].Lon, 1e-6)
}

func TestSearchEmptyQuery(t *testing.T) {
	t.Parallel()

	c := NewClient(WithBaseURL("http://127.0.0.1:0"))
	results, err := c.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchCaches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(nominatimBody))
	})

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(1000), WithCacheTTL(time.Minute))

	for range 3 {
		results, err := c.Search(context.Background(), "Union Square")
		require.NoError(t, err)
		assert.Len(t, results, 2)
	}
	// Query normalization folds case and whitespace into one cache key.
	_, err := c.Search(context.Background(), "  union   SQUARE ")
	require.NoError(t, err)

	assert.Equal(t, int64(1), calls.Load())
}

func TestSearchUpstreamError(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(1000))
	_, err := c.Search(context.Background(), "anywhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSearchBadJSON(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"}`))
	})

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(1000))
	_, err := c.Search(context.Background(), "anywhere")
	assert.Error(t, err)
}

func TestSearchSkipsUnparsableCoordinates(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"display_name": "bad", "lat": "n/a", "lon": "-73.9"},
			{"display_name": "good", "lat": "40.7", "lon": "-73.9"}
		]`))
	})

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(1000))
	results, err := c.Search(context.Background(), "anywhere")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].DisplayName)
}

func TestSearchContextCancelled(t *testing.T) {
	t.Parallel()

	// Limiter with zero burst capacity blocks until the context dies.
	c := NewClient(WithBaseURL("http://127.0.0.1:0"), WithRateLimit(0.0001))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// First request consumes the burst token.
	_, _ = c.Search(ctx, "first")
	_, err := c.Search(ctx, "second")
	assert.Error(t, err)
}

func TestCacheExpiry(t *testing.T) {
	t.Parallel()

	ca := newCache(10 * time.Millisecond)
	ca.set("q", []Result{{DisplayName: "x"}})

	got, ok := ca.get("q")
	require.True(t, ok)
	assert.Equal(t, "x", got[0].DisplayName)

	time.Sleep(20 * time.Millisecond)
	_, ok = ca.get("q")
	assert.False(t, ok)
}

func TestCacheDisabled(t *testing.T) {
	t.Parallel()

	ca := newCache(0)
	ca.set("q", []Result{{DisplayName: "x"}})
	_, ok := ca.get("q")
	assert.False(t, ok)
}
