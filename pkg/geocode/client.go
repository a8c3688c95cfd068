// Package geocode resolves free-text place names via the Nominatim search
// API, with request rate limiting and an in-memory result cache.
package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Client resolves place-name queries to candidate coordinates.
type Client interface {
	// Search returns up to the configured number of candidates for a query.
	Search(ctx context.Context, query string) ([]Result, error)
}

// Result is one geocoding candidate.
type Result struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the Nominatim endpoint, for self-hosted instances
// and tests.
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithUserAgent sets the User-Agent header. Nominatim's usage policy
// requires an identifying agent.
func WithUserAgent(ua string) Option {
	return func(c *client) { c.userAgent = ua }
}

// WithRateLimit sets the requests-per-second limit. Nominatim's public
// instance allows at most 1 req/s.
func WithRateLimit(rps float64) Option {
	return func(c *client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithLimit caps the number of candidates per query.
func WithLimit(n int) Option {
	return func(c *client) { c.limit = n }
}

// WithCacheTTL sets how long query results are cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client) { c.cache = newCache(ttl) }
}

type client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	limit      int
	cache      *cache
}

// NewClient creates a geocoding Client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		userAgent:  "saferoute/1.0",
		limiter:    rate.NewLimiter(1, 1),
		limit:      5,
		cache:      newCache(time.Hour),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// nominatimResult is one entry of the jsonv2 search response. Coordinates
// arrive as strings.
type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search implements Client.
func (c *client) Search(ctx context.Context, query string) ([]Result, error) {
	if query == "" {
		return nil, nil
	}
	if cached, ok := c.cache.get(query); ok {
		zap.L().Debug("geocode cache hit", zap.String("query", query))
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: rate limit")
	}

	params := url.Values{
		"q":      {query},
		"format": {"jsonv2"},
		"limit":  {strconv.Itoa(c.limit)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: nominatim returned status %d", resp.StatusCode)
	}

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "geocode: decode response")
	}

	out := make([]Result, 0, len(raw))
	for _, r := range raw {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		out = append(out, Result{DisplayName: r.DisplayName, Lat: lat, Lon: lon})
	}

	c.cache.set(query, out)
	return out, nil
}
