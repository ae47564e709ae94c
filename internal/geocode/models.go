// Package geocode resolves free-form origin/destination input into
// geographic points, either by strict numeric parsing or by delegating to a
// geocoding provider.
package geocode

import (
	"context"
	"errors"
)

// Sentinel errors for geocoding operations.
var (
	// ErrNotFound indicates the provider returned no match for the query.
	// This is a user-visible condition, not a provider failure.
	ErrNotFound = errors.New("no match found for query")
	// ErrProviderUnavailable indicates the geocoding provider is down or the
	// circuit breaker is open.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
)

// Candidate is a single geocoding match, ordered by provider relevance.
type Candidate struct {
	DisplayName string
	Lat         float64
	Lon         float64
}

// Provider defines the interface for geocoding providers.
type Provider interface {
	// Search returns candidate matches for a free-text query, best first.
	// An empty slice means the query matched nothing.
	Search(ctx context.Context, query string) ([]Candidate, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Error provides detailed error information from the geocoding provider.
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
