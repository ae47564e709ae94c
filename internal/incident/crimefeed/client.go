// Package crimefeed provides a client for the crime incident feed, which
// serves a GeoJSON FeatureCollection of point incidents for a bounding box.
package crimefeed

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

	"github.com/safemap/safemap/internal/geo"
	"github.com/safemap/safemap/internal/incident"
	"github.com/safemap/safemap/internal/provider/resilience"
)

const (
	// ProviderName identifies this incident provider.
	ProviderName = "crimefeed"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the crimefeed client.
type ClientConfig struct {
	// BaseURL is the incident feed base URL (required).
	BaseURL string

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

// Client is a crime incident feed client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new crimefeed client.
func NewClient(cfg ClientConfig) *Client {
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
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// featureCollection is the wire shape of the feed response.
type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Properties featureProperties `json:"properties"`
	Geometry   pointGeometry     `json:"geometry"`
}

type featureProperties struct {
	Severity *float64 `json:"severity"`
}

type pointGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// FetchIncidents returns all incidents inside the bounding box.
func (c *Client) FetchIncidents(ctx context.Context, box geo.BBox) ([]incident.Incident, error) {
	if !box.Valid() {
		return nil, &incident.Error{
			Provider: ProviderName,
			Code:     "INVALID_BBOX",
			Message:  "bounding box is empty or inverted",
			Err:      incident.ErrFetchFailed,
		}
	}

	params := url.Values{}
	params.Set("west", formatCoord(box.West))
	params.Set("south", formatCoord(box.South))
	params.Set("east", formatCoord(box.East))
	params.Set("north", formatCoord(box.North))

	reqURL := fmt.Sprintf("%s/crimes?%s", c.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &incident.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach incident feed",
			Err:      incident.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode)
	}

	var collection featureCollection
	if err := json.Unmarshal(body, &collection); err != nil {
		return nil, &incident.Error{
			Provider: ProviderName,
			Code:     "MALFORMED_RESPONSE",
			Message:  "incident feed returned unparseable response",
			Err:      incident.ErrFetchFailed,
		}
	}

	incidents := make([]incident.Incident, 0, len(collection.Features))
	for _, f := range collection.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		inc := incident.Incident{
			// GeoJSON positions are [lon, lat].
			Lon: f.Geometry.Coordinates[0],
			Lat: f.Geometry.Coordinates[1],
		}
		if f.Properties.Severity != nil {
			inc.Severity = *f.Properties.Severity
		}
		incidents = append(incidents, inc)
	}

	c.logger.Debug().
		Int("incident_count", len(incidents)).
		Float64("west", box.West).
		Float64("south", box.South).
		Float64("east", box.East).
		Float64("north", box.North).
		Msg("fetched incidents")

	return incidents, nil
}

// handleErrorResponse maps feed error replies to domain errors.
func (c *Client) handleErrorResponse(statusCode int) error {
	if statusCode >= 500 {
		return &incident.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", statusCode),
			Message:  "incident feed is temporarily unavailable",
			Err:      incident.ErrProviderUnavailable,
		}
	}

	return &incident.Error{
		Provider: ProviderName,
		Code:     fmt.Sprintf("HTTP_%d", statusCode),
		Message:  fmt.Sprintf("incident feed returned status %d", statusCode),
		Err:      incident.ErrFetchFailed,
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
