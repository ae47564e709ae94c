// Package routing requests candidate route families from the remote
// risk-aware routing service and validates the multi-route response envelope.
package routing

import (
	"context"
	"errors"
	"fmt"

	"github.com/safemap/safemap/internal/geo"
	"github.com/safemap/safemap/pkg/polyline"
)

// Sentinel errors for routing operations.
var (
	// ErrRouteComputationFailed indicates the provider returned an HTTP error
	// or a malformed envelope. Fatal to the current request only.
	ErrRouteComputationFailed = errors.New("route computation failed")
	// ErrProviderUnavailable indicates the routing provider is down or the
	// circuit breaker is open.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrInvalidCoordinates indicates out-of-range origin or destination.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrUnknownMode indicates a travel mode outside the supported set.
	ErrUnknownMode = errors.New("unknown travel mode")
)

// Mode is a travel mode understood by the routing service.
type Mode string

const (
	ModeWalk  Mode = "walk"
	ModeBike  Mode = "bike"
	ModeDrive Mode = "drive"
)

// ParseMode normalizes a raw mode string. Empty input defaults to walk.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeWalk, nil
	case ModeWalk, ModeBike, ModeDrive:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// RouteStats are the per-candidate statistics computed by the routing
// service. Deltas are relative to the β=0 baseline of the same response.
type RouteStats struct {
	LengthM          float64
	MeanRisk         float64
	RiskLengthSumM   float64
	DetourMVsBeta0   float64
	RiskDeltaVsBeta0 float64
}

// RouteCandidate is one routing result for a specific risk-aversion
// coefficient β. Color is a display hint assigned by the server and is
// treated as opaque.
type RouteCandidate struct {
	Beta     float64
	Name     string
	Color    string
	Geometry []polyline.Coordinate
	Stats    RouteStats
}

// RouteResultSet is the validated multi-route response. Routes preserve
// server order; exactly one candidate has β=0 and serves as the baseline.
type RouteResultSet struct {
	Mode               Mode
	SnappedOrigin      geo.Point
	SnappedDestination geo.Point
	SnapDistOriginM    float64
	SnapDistDestM      float64
	Routes             []RouteCandidate
}

// Baseline returns the β=0 candidate. Validate must have passed.
func (s *RouteResultSet) Baseline() *RouteCandidate {
	for i := range s.Routes {
		if s.Routes[i].Beta == 0 {
			return &s.Routes[i]
		}
	}
	return nil
}

// Validate checks the envelope invariants from the routing service contract:
// a non-empty route list, non-negative betas, and exactly one β=0 baseline.
func (s *RouteResultSet) Validate() error {
	if len(s.Routes) == 0 {
		return fmt.Errorf("%w: empty route list", ErrRouteComputationFailed)
	}

	baselines := 0
	for i := range s.Routes {
		r := &s.Routes[i]
		if r.Beta < 0 {
			return fmt.Errorf("%w: negative beta %f", ErrRouteComputationFailed, r.Beta)
		}
		if r.Beta == 0 {
			baselines++
		}
		if len(r.Geometry) == 0 {
			return fmt.Errorf("%w: route %d has no geometry", ErrRouteComputationFailed, i)
		}
		if r.Stats.LengthM < 0 || r.Stats.MeanRisk < 0 {
			return fmt.Errorf("%w: route %d has negative stats", ErrRouteComputationFailed, i)
		}
	}
	if baselines != 1 {
		return fmt.Errorf("%w: expected exactly one baseline route, got %d", ErrRouteComputationFailed, baselines)
	}
	return nil
}

// RoutesRequest asks for the candidate family between two resolved points.
type RoutesRequest struct {
	Origin      geo.Point
	Destination geo.Point
	Mode        Mode
}

// Provider defines the interface for multi-route providers.
type Provider interface {
	// GetRoutes retrieves the β-family of candidate routes in one call.
	GetRoutes(ctx context.Context, req RoutesRequest) (*RouteResultSet, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Error provides detailed error information from the routing provider.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable)
}
