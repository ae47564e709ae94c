// Package display owns the mutable presentation state: origin and
// destination markers, the live route overlays, and the incident-dot
// overlay. All drawing goes through the Canvas capability so the core
// never depends on a concrete map widget.
package display

import (
	"github.com/safemap/safemap/internal/geo"
	"github.com/safemap/safemap/pkg/polyline"
)

// LineStyle styles a route overlay. Color is the server-supplied hint,
// treated as opaque.
type LineStyle struct {
	Color    string
	WeightPx int
	Opacity  float64
}

// DotStyle styles an incident dot.
type DotStyle struct {
	Color    string
	RadiusPx int
	Opacity  float64
}

// Dot is a styled incident point ready to draw.
type Dot struct {
	Point geo.Point
	Style DotStyle
}

// Marker is a placed point marker whose position and label can be
// updated in place.
type Marker interface {
	SetPosition(p geo.Point)
	SetLabel(label string)
	Remove()
}

// Overlay is a drawn artifact that can be detached from the canvas.
type Overlay interface {
	Remove()
}

// Canvas is the drawing capability the display state renders onto.
type Canvas interface {
	DrawMarker(p geo.Point, label string) Marker
	DrawPolyline(coords []polyline.Coordinate, style LineStyle) Overlay
	DrawDot(dot Dot) Overlay

	// SetView centers the viewport on a point at the given zoom level.
	SetView(center geo.Point, zoom int)

	// FitBounds adjusts the viewport to bound the box with padding on
	// every side.
	FitBounds(box geo.BBox, paddingPx int)
}
