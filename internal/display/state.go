package display

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/safemap/safemap/internal/geo"
	"github.com/safemap/safemap/internal/routing"
)

const (
	// singlePointZoom is the zoom level used when only one endpoint is known.
	singlePointZoom = 16

	// fitPaddingPx is the viewport padding when fitting bounds.
	fitPaddingPx = 40
)

// Route overlay styling applied to every drawn candidate.
const (
	routeWeightPx = 5
	routeOpacity  = 0.9
)

// State is the single mutable display state: at most one origin and one
// destination marker, the route overlays of exactly one result set
// generation, and an independently toggled incident overlay. All
// mutation is serialized by an internal lock.
type State struct {
	canvas Canvas
	logger zerolog.Logger

	mu sync.Mutex

	nextSeq     uint64
	renderedSeq uint64

	originMarker      Marker
	originPoint       *geo.Point
	destinationMarker Marker
	destinationPoint  *geo.Point

	routeOverlays []Overlay
	incidentDots  []Overlay
}

// NewState creates a display state drawing onto the given canvas.
func NewState(canvas Canvas, logger zerolog.Logger) *State {
	return &State{
		canvas: canvas,
		logger: logger,
	}
}

// NextSequence allocates a submission sequence number. Later submissions
// get strictly larger numbers; RenderRoutes discards stale ones.
func (s *State) NextSequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	return s.nextSeq
}

// RenderedSequence returns the sequence of the currently drawn result
// set, 0 when nothing has been rendered.
func (s *State) RenderedSequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderedSeq
}

// PlaceOrigin places or moves the origin marker.
func (s *State) PlaceOrigin(p geo.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.originMarker = s.placeMarker(s.originMarker, p, "Origin: ")
	s.originPoint = &p
}

// PlaceDestination places or moves the destination marker.
func (s *State) PlaceDestination(p geo.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destinationMarker = s.placeMarker(s.destinationMarker, p, "Destination: ")
	s.destinationPoint = &p
}

// placeMarker updates an existing marker in place rather than creating
// a duplicate. Caller holds the lock.
func (s *State) placeMarker(existing Marker, p geo.Point, prefix string) Marker {
	label := prefix + p.Label
	if p.Label == "" {
		label = prefix + p.String()
	}

	if existing != nil {
		existing.SetPosition(p)
		existing.SetLabel(label)
		return existing
	}
	return s.canvas.DrawMarker(p, label)
}

// FocusMarkers adjusts the viewport to the known endpoints: one point
// centers at a fixed zoom, two points fit both with padding. No-op when
// no marker has been placed.
func (s *State) FocusMarkers() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.originPoint != nil && s.destinationPoint != nil:
		box := geo.NewBBox().
			ExtendPoint(*s.originPoint).
			ExtendPoint(*s.destinationPoint)
		s.canvas.FitBounds(box, fitPaddingPx)
	case s.originPoint != nil:
		s.canvas.SetView(*s.originPoint, singlePointZoom)
	case s.destinationPoint != nil:
		s.canvas.SetView(*s.destinationPoint, singlePointZoom)
	}
}

// RenderRoutes atomically replaces the live route overlays with the
// given result set: clears every overlay of the previous generation,
// draws one styled overlay per candidate, then fits the viewport to the
// union of the drawn geometries. Returns false when the sequence number
// is stale, in which case nothing is drawn; only the most recent
// submission's results are ever shown.
func (s *State) RenderRoutes(seq uint64, set *routing.RouteResultSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.nextSeq || seq <= s.renderedSeq {
		s.logger.Debug().
			Uint64("seq", seq).
			Uint64("latest", s.nextSeq).
			Uint64("rendered", s.renderedSeq).
			Msg("discarding stale route render")
		return false
	}

	for _, overlay := range s.routeOverlays {
		overlay.Remove()
	}
	s.routeOverlays = s.routeOverlays[:0]

	box := geo.NewBBox()
	for _, route := range set.Routes {
		overlay := s.canvas.DrawPolyline(route.Geometry, LineStyle{
			Color:    route.Color,
			WeightPx: routeWeightPx,
			Opacity:  routeOpacity,
		})
		s.routeOverlays = append(s.routeOverlays, overlay)

		for _, coord := range route.Geometry {
			box = box.Extend(coord.Lat, coord.Lon)
		}
	}

	if box.Valid() {
		s.canvas.FitBounds(box, fitPaddingPx)
	}

	s.renderedSeq = seq

	s.logger.Debug().
		Uint64("seq", seq).
		Int("overlay_count", len(s.routeOverlays)).
		Msg("rendered route overlays")

	return true
}

// ShowIncidents (re)creates the incident overlay: clears any prior dots
// and draws the given set. Independent of the route overlay lifecycle.
func (s *State) ShowIncidents(dots []Dot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearIncidentsLocked()
	for _, dot := range dots {
		s.incidentDots = append(s.incidentDots, s.canvas.DrawDot(dot))
	}

	s.logger.Debug().
		Int("dot_count", len(dots)).
		Msg("rendered incident overlay")
}

// HideIncidents tears the incident overlay down entirely.
func (s *State) HideIncidents() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearIncidentsLocked()
}

// IncidentsVisible reports whether the incident overlay is currently shown.
func (s *State) IncidentsVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.incidentDots) > 0
}

func (s *State) clearIncidentsLocked() {
	for _, dot := range s.incidentDots {
		dot.Remove()
	}
	s.incidentDots = s.incidentDots[:0]
}
