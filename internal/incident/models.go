// Package incident fetches crime/incident points for a viewport bounding box
// and maps severity to the display hints used by the incident overlay.
package incident

import (
	"context"
	"errors"
	"math"

	"github.com/safemap/safemap/internal/geo"
)

// Sentinel errors for incident operations.
var (
	// ErrFetchFailed indicates the incident provider returned an error or a
	// malformed feature collection.
	ErrFetchFailed = errors.New("incident fetch failed")
	// ErrProviderUnavailable indicates the incident provider is down or the
	// circuit breaker is open.
	ErrProviderUnavailable = errors.New("incident provider unavailable")
)

// Incident is a single incident point. Severity defaults to 0 when the
// source feature omits it.
type Incident struct {
	Lat      float64
	Lon      float64
	Severity float64
}

// Provider defines the interface for incident data providers.
type Provider interface {
	// FetchIncidents returns all incidents within the bounding box.
	FetchIncidents(ctx context.Context, box geo.BBox) ([]Incident, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Style is the deterministic display mapping derived from severity.
type Style struct {
	Color    string
	RadiusPx int
}

// Severity color tiers, lightest to most saturated.
const (
	colorLow      = "#fca5a5" // severity < 10
	colorMedium   = "#f87171" // severity < 50
	colorHigh     = "#ef4444" // severity < 100
	colorCritical = "#b91c1c" // severity >= 100
)

// Radius curve parameters, in pixels.
const (
	radiusBasePx  = 2.0
	radiusScalePx = 1.5
	minRadiusPx   = 3
	maxRadiusPx   = 10
)

// StyleFor maps severity to a color tier and a logarithmic radius clamped
// to [minRadiusPx, maxRadiusPx]. Pure and deterministic.
func StyleFor(severity float64) Style {
	if severity < 0 {
		severity = 0
	}

	var color string
	switch {
	case severity < 10:
		color = colorLow
	case severity < 50:
		color = colorMedium
	case severity < 100:
		color = colorHigh
	default:
		color = colorCritical
	}

	radius := int(math.Round(radiusBasePx + radiusScalePx*math.Log1p(severity)))
	if radius < minRadiusPx {
		radius = minRadiusPx
	}
	if radius > maxRadiusPx {
		radius = maxRadiusPx
	}

	return Style{Color: color, RadiusPx: radius}
}

// StyledIncident pairs an incident with its display hints.
type StyledIncident struct {
	Incident
	Style Style
}

// Error provides detailed error information from the incident provider.
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
