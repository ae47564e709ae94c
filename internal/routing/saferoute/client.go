// Package saferoute provides a client for the risk-aware multi-route
// service. One request returns the whole β-family of candidate routes.
package saferoute

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
	"github.com/safemap/safemap/internal/provider/resilience"
	"github.com/safemap/safemap/internal/routing"
	"github.com/safemap/safemap/pkg/polyline"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "saferoute"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the saferoute client.
type ClientConfig struct {
	// BaseURL is the routing service base URL (required).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 15s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a saferoute multi-route API client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new saferoute client.
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

// GetRoutes retrieves the β-family of candidate routes in one call.
func (c *Client) GetRoutes(ctx context.Context, req routing.RoutesRequest) (*routing.RouteResultSet, error) {
	if !req.Origin.Valid() || !req.Destination.Valid() {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "INVALID_COORDINATES",
			Message:  "origin or destination out of range",
			Err:      routing.ErrInvalidCoordinates,
		}
	}

	mode := req.Mode
	if mode == "" {
		mode = routing.ModeWalk
	}

	params := url.Values{}
	params.Set("orig_lat", formatCoord(req.Origin.Lat))
	params.Set("orig_lon", formatCoord(req.Origin.Lon))
	params.Set("dest_lat", formatCoord(req.Destination.Lat))
	params.Set("dest_lon", formatCoord(req.Destination.Lon))
	params.Set("mode", string(mode))

	reqURL := fmt.Sprintf("%s/route_multi?%s", c.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Float64("origin_lat", req.Origin.Lat).
		Float64("origin_lon", req.Origin.Lon).
		Float64("dest_lat", req.Destination.Lat).
		Float64("dest_lon", req.Destination.Lon).
		Str("mode", string(mode)).
		Msg("requesting multi-route family")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach routing provider",
			Err:      routing.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}

	var envelope multiRouteResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "MALFORMED_RESPONSE",
			Message:  "routing provider returned unparseable response",
			Err:      routing.ErrRouteComputationFailed,
		}
	}

	set, err := c.toResultSet(&envelope)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("route_count", len(set.Routes)).
		Str("mode", string(set.Mode)).
		Msg("received multi-route family")

	return set, nil
}

// handleErrorResponse maps provider error replies to domain errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	detail := fmt.Sprintf("routing provider returned status %d", statusCode)
	var wireErr errorResponse
	if json.Unmarshal(body, &wireErr) == nil && wireErr.Error != "" {
		detail = wireErr.Error
	}

	if statusCode >= 500 {
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", statusCode),
			Message:  "routing provider is temporarily unavailable",
			Err:      routing.ErrProviderUnavailable,
		}
	}

	return &routing.Error{
		Provider: ProviderName,
		Code:     fmt.Sprintf("HTTP_%d", statusCode),
		Message:  detail,
		Err:      routing.ErrRouteComputationFailed,
	}
}

// toResultSet converts the wire envelope to the domain model.
func (c *Client) toResultSet(envelope *multiRouteResponse) (*routing.RouteResultSet, error) {
	mode, err := routing.ParseMode(envelope.Mode)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "UNKNOWN_MODE",
			Message:  fmt.Sprintf("routing provider returned unknown mode %q", envelope.Mode),
			Err:      routing.ErrRouteComputationFailed,
		}
	}

	set := &routing.RouteResultSet{
		Mode: mode,
		SnappedOrigin: geo.Point{
			Lat:   envelope.SnappedOrigin.Lat,
			Lon:   envelope.SnappedOrigin.Lon,
			Label: "Snapped origin",
		},
		SnappedDestination: geo.Point{
			Lat:   envelope.SnappedDestination.Lat,
			Lon:   envelope.SnappedDestination.Lon,
			Label: "Snapped destination",
		},
	}
	if envelope.SnapDistM != nil {
		set.SnapDistOriginM = envelope.SnapDistM.Origin
		set.SnapDistDestM = envelope.SnapDistM.Destination
	}

	set.Routes = make([]routing.RouteCandidate, 0, len(envelope.Routes))
	for i := range envelope.Routes {
		wire := &envelope.Routes[i]

		geometry, geoErr := decodeGeometry(wire.GeoJSON)
		if geoErr != nil {
			return nil, &routing.Error{
				Provider: ProviderName,
				Code:     "MALFORMED_GEOMETRY",
				Message:  fmt.Sprintf("route %d: %v", i, geoErr),
				Err:      routing.ErrRouteComputationFailed,
			}
		}

		stats := routing.RouteStats{
			LengthM:          wire.Stats.LengthM,
			MeanRisk:         wire.Stats.MeanRisk,
			RiskLengthSumM:   wire.Stats.RiskLengthSumM,
			DetourMVsBeta0:   wire.Stats.DetourMVsBeta0,
			RiskDeltaVsBeta0: wire.Stats.RiskDeltaVsBeta0,
		}
		// Some deployments omit length_m; derive it from the geometry.
		if stats.LengthM == 0 && len(geometry) > 1 {
			stats.LengthM = polyline.Length(geometry)
		}

		set.Routes = append(set.Routes, routing.RouteCandidate{
			Beta:     wire.Beta,
			Name:     wire.Name,
			Color:    wire.Color,
			Geometry: geometry,
			Stats:    stats,
		})
	}

	return set, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
