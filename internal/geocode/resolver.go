package geocode

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/safemap/safemap/internal/geo"
)

// ResolverConfig holds configuration for the coordinate resolver.
type ResolverConfig struct {
	// Provider is the geocoding fallback for non-numeric input.
	Provider Provider

	// Logger for resolver operations.
	Logger zerolog.Logger
}

// Resolver turns free-text input into a resolved point. Numeric "lat,lon"
// input is parsed directly and never reaches the provider; everything else
// is geocoded and the first candidate wins.
type Resolver struct {
	provider Provider
	logger   zerolog.Logger
}

// NewResolver creates a new coordinate resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Resolve produces a labeled point for the given query.
// Returns ErrNotFound when the provider has no match and
// ErrProviderUnavailable when the provider call fails.
func (r *Resolver) Resolve(ctx context.Context, query string) (geo.Point, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return geo.Point{}, ErrNotFound
	}

	if p, ok := parseLatLon(query); ok {
		r.logger.Debug().
			Float64("lat", p.Lat).
			Float64("lon", p.Lon).
			Msg("resolved raw coordinates")
		return p, nil
	}

	candidates, err := r.provider.Search(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).
			Str("query", query).
			Str("provider", r.provider.Name()).
			Msg("geocoding failed")
		return geo.Point{}, fmt.Errorf("geocoding %q: %w", query, ErrProviderUnavailable)
	}

	if len(candidates) == 0 {
		return geo.Point{}, fmt.Errorf("geocoding %q: %w", query, ErrNotFound)
	}

	// First candidate wins; there is no disambiguation step.
	best := candidates[0]
	r.logger.Debug().
		Str("query", query).
		Str("match", best.DisplayName).
		Int("candidates", len(candidates)).
		Msg("resolved via geocoder")

	return geo.Point{
		Lat:   best.Lat,
		Lon:   best.Lon,
		Label: best.DisplayName,
	}, nil
}

// parseLatLon attempts a strict numeric parse of "<lat><sep><lon>" where the
// separator is a comma or a whitespace run. Both fields must parse as floats
// within WGS84 ranges; anything else falls through to geocoding.
func parseLatLon(query string) (geo.Point, bool) {
	var parts []string
	if strings.Contains(query, ",") {
		parts = strings.SplitN(query, ",", 3)
	} else {
		parts = strings.Fields(query)
	}
	if len(parts) != 2 {
		return geo.Point{}, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Point{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Point{}, false
	}

	p := geo.Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return geo.Point{}, false
	}

	p.Label = fmt.Sprintf("%.5f, %.5f (raw)", lat, lon)
	return p, true
}
