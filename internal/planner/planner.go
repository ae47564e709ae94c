// Package planner orchestrates the full trip comparison flow: resolve
// both endpoints, place markers, request the candidate route family,
// score it, and commit the overlays to the display state. It also owns
// the user-toggled incident overlay.
package planner

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/safemap/safemap/internal/display"
	"github.com/safemap/safemap/internal/geo"
	"github.com/safemap/safemap/internal/incident"
	"github.com/safemap/safemap/internal/routing"
	"github.com/safemap/safemap/internal/scoring"
)

// Resolver turns free-text queries into resolved points.
type Resolver interface {
	Resolve(ctx context.Context, query string) (geo.Point, error)
}

// RouteSource returns validated route result sets.
type RouteSource interface {
	GetRoutes(ctx context.Context, req routing.RoutesRequest) (*routing.RouteResultSet, error)
}

// IncidentSource returns styled incidents for a bounding box.
type IncidentSource interface {
	GetIncidents(ctx context.Context, box geo.BBox) ([]incident.StyledIncident, error)
}

// Config holds the planner's collaborators.
type Config struct {
	Resolver  Resolver
	Routes    RouteSource
	Incidents IncidentSource
	Display   *display.State
	Logger    zerolog.Logger
}

// Planner runs submissions against a single shared display state.
type Planner struct {
	resolver  Resolver
	routes    RouteSource
	incidents IncidentSource
	display   *display.State
	logger    zerolog.Logger

	mu          sync.RWMutex
	subscribers []func(Update)
}

// New creates a planner.
func New(cfg Config) *Planner {
	return &Planner{
		resolver:  cfg.Resolver,
		routes:    cfg.Routes,
		incidents: cfg.Incidents,
		display:   cfg.Display,
		logger:    cfg.Logger,
	}
}

// SubmitRequest is one form submission: two free-text endpoint queries
// and an optional travel mode.
type SubmitRequest struct {
	OriginQuery      string
	DestinationQuery string
	Mode             string
}

// Result is the outcome of a completed submission.
type Result struct {
	SubmissionID string
	Sequence     uint64

	Origin      geo.Point
	Destination geo.Point

	Set    *routing.RouteResultSet
	Routes []scoring.ScoredRoute

	// Rendered is false when a newer submission won the overlay race and
	// this result was not drawn.
	Rendered bool
}

// Update is delivered to subscribers after a submission's overlays commit.
type Update struct {
	SubmissionID string
	Sequence     uint64
	Routes       []scoring.ScoredRoute
}

// Subscribe registers a listener invoked after each rendered submission.
func (p *Planner) Subscribe(fn func(Update)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, fn)
}

// Submit runs one submission flow, strictly in order: resolve origin,
// resolve destination, place markers, focus the viewport, request
// routes, score, redraw overlays, notify listeners. Markers placed
// before a routing failure are intentionally kept so the user sees
// their input placement.
func (p *Planner) Submit(ctx context.Context, req SubmitRequest) (*Result, error) {
	submissionID := uuid.New().String()
	seq := p.display.NextSequence()

	log := p.logger.With().
		Str("submission_id", submissionID).
		Uint64("seq", seq).
		Logger()

	mode, err := routing.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	origin, err := p.resolver.Resolve(ctx, req.OriginQuery)
	if err != nil {
		return nil, fmt.Errorf("resolving origin: %w", err)
	}

	destination, err := p.resolver.Resolve(ctx, req.DestinationQuery)
	if err != nil {
		return nil, fmt.Errorf("resolving destination: %w", err)
	}

	p.display.PlaceOrigin(origin)
	p.display.PlaceDestination(destination)
	p.display.FocusMarkers()

	set, err := p.routes.GetRoutes(ctx, routing.RoutesRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        mode,
	})
	if err != nil {
		return nil, err
	}

	scored := scoring.Score(set)
	rendered := p.display.RenderRoutes(seq, set)

	result := &Result{
		SubmissionID: submissionID,
		Sequence:     seq,
		Origin:       origin,
		Destination:  destination,
		Set:          set,
		Routes:       scored,
		Rendered:     rendered,
	}

	if rendered {
		p.notify(Update{
			SubmissionID: submissionID,
			Sequence:     seq,
			Routes:       scored,
		})
	}

	log.Info().
		Str("mode", string(set.Mode)).
		Int("route_count", len(scored)).
		Bool("rendered", rendered).
		Msg("submission completed")

	return result, nil
}

func (p *Planner) notify(update Update) {
	p.mu.RLock()
	subscribers := make([]func(Update), len(p.subscribers))
	copy(subscribers, p.subscribers)
	p.mu.RUnlock()

	for _, fn := range subscribers {
		fn(update)
	}
}

// ShowIncidentOverlay fetches incidents for the box and (re)creates the
// incident overlay. Returns the number of dots drawn.
func (p *Planner) ShowIncidentOverlay(ctx context.Context, box geo.BBox) (int, error) {
	styled, err := p.incidents.GetIncidents(ctx, box)
	if err != nil {
		return 0, err
	}

	dots := make([]display.Dot, 0, len(styled))
	for _, inc := range styled {
		dots = append(dots, display.Dot{
			Point: geo.Point{Lat: inc.Lat, Lon: inc.Lon},
			Style: display.DotStyle{
				Color:    inc.Style.Color,
				RadiusPx: inc.Style.RadiusPx,
				Opacity:  0.8,
			},
		})
	}

	p.display.ShowIncidents(dots)
	return len(dots), nil
}

// HideIncidentOverlay tears the incident overlay down.
func (p *Planner) HideIncidentOverlay() {
	p.display.HideIncidents()
}

// IncidentOverlayVisible reports whether the incident overlay is shown.
func (p *Planner) IncidentOverlayVisible() bool {
	return p.display.IncidentsVisible()
}
