// Package nominatim provides a client for the Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/safemap/safemap/internal/geocode"
	"github.com/safemap/safemap/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultUserAgent is sent with every request; Nominatim's usage policy
	// requires an identifying User-Agent.
	DefaultUserAgent = "SafeMap/1.0"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// maxResults caps the number of candidates requested per query.
	maxResults = 5
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the public instance).
	BaseURL string

	// UserAgent identifies the application (optional).
	UserAgent string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim search API client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		if cfg.Registry != nil {
			clientCfg.Registry = cfg.Registry
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Search returns candidate matches for a free-text query, best first.
func (c *Client) Search(ctx context.Context, query string) ([]geocode.Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(maxResults))
	params.Set("addressdetails", "1")

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("query", query).
		Msg("searching nominatim")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &geocode.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach geocoding provider",
			Err:      geocode.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &geocode.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("geocoding provider returned status %d", resp.StatusCode),
			Err:      geocode.ErrProviderUnavailable,
		}
	}

	var places []place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	candidates := make([]geocode.Candidate, 0, len(places))
	for _, p := range places {
		lat, latErr := strconv.ParseFloat(p.Lat, 64)
		lon, lonErr := strconv.ParseFloat(p.Lon, 64)
		if latErr != nil || lonErr != nil {
			// Skip entries with unparseable coordinates.
			continue
		}
		candidates = append(candidates, geocode.Candidate{
			DisplayName: p.DisplayName,
			Lat:         lat,
			Lon:         lon,
		})
	}

	c.logger.Debug().
		Str("query", query).
		Int("candidates", len(candidates)).
		Msg("nominatim search completed")

	return candidates, nil
}

// place is the Nominatim jsonv2 result shape. Coordinates are strings.
type place struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}
