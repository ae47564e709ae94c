package geocode_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safemap/safemap/internal/geocode"
)

// mockProvider is a test provider returning configurable candidates.
type mockProvider struct {
	candidates []geocode.Candidate
	err        error
	calls      int
}

func (m *mockProvider) Search(_ context.Context, _ string) ([]geocode.Candidate, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.candidates, nil
}

func (m *mockProvider) Name() string { return "mock" }

func newResolver(p geocode.Provider) *geocode.Resolver {
	return geocode.NewResolver(geocode.ResolverConfig{
		Provider: p,
		Logger:   zerolog.New(io.Discard),
	})
}

func TestResolver_NumericInput(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantLat float64
		wantLon float64
	}{
		{"comma separated", "38.64,-90.29", 38.64, -90.29},
		{"comma with spaces", " 38.64 , -90.29 ", 38.64, -90.29},
		{"whitespace separated", "38.64 -90.29", 38.64, -90.29},
		{"multiple spaces", "38.64   -90.29", 38.64, -90.29},
		{"boundary values", "90,-180", 90, -180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{}
			r := newResolver(provider)

			p, err := r.Resolve(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLat, p.Lat)
			assert.Equal(t, tt.wantLon, p.Lon)
			assert.Contains(t, p.Label, "(raw)")
			assert.Equal(t, 0, provider.calls, "numeric input must not hit the geocoder")
		})
	}
}

func TestResolver_OutOfRangeFallsThroughToGeocoder(t *testing.T) {
	tests := []string{
		"95,200",
		"-95,-90.29",
		"38.64,181",
	}

	for _, query := range tests {
		t.Run(query, func(t *testing.T) {
			provider := &mockProvider{candidates: []geocode.Candidate{
				{DisplayName: "Somewhere", Lat: 1, Lon: 2},
			}}
			r := newResolver(provider)

			p, err := r.Resolve(context.Background(), query)
			require.NoError(t, err)
			assert.Equal(t, 1, provider.calls, "out-of-range pairs must be geocoded")
			assert.Equal(t, "Somewhere", p.Label)
		})
	}
}

func TestResolver_GeocoderFirstMatchWins(t *testing.T) {
	provider := &mockProvider{candidates: []geocode.Candidate{
		{DisplayName: "Forest Park, St. Louis", Lat: 38.6366, Lon: -90.2854},
		{DisplayName: "Forest Park, Portland", Lat: 45.5755, Lon: -122.7603},
	}}
	r := newResolver(provider)

	p, err := r.Resolve(context.Background(), "Forest Park")
	require.NoError(t, err)
	assert.Equal(t, "Forest Park, St. Louis", p.Label)
	assert.Equal(t, 38.6366, p.Lat)
	assert.Equal(t, -90.2854, p.Lon)
}

func TestResolver_NotFound(t *testing.T) {
	r := newResolver(&mockProvider{})

	_, err := r.Resolve(context.Background(), "xyzzy nowhere")
	assert.ErrorIs(t, err, geocode.ErrNotFound)
}

func TestResolver_ProviderFailure(t *testing.T) {
	r := newResolver(&mockProvider{err: errors.New("boom")})

	_, err := r.Resolve(context.Background(), "Forest Park")
	assert.ErrorIs(t, err, geocode.ErrProviderUnavailable)
}

func TestResolver_EmptyQuery(t *testing.T) {
	r := newResolver(&mockProvider{})

	_, err := r.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, geocode.ErrNotFound)
}

func TestResolver_SingleNumberIsGeocoded(t *testing.T) {
	provider := &mockProvider{candidates: []geocode.Candidate{
		{DisplayName: "Route 66", Lat: 35, Lon: -97},
	}}
	r := newResolver(provider)

	_, err := r.Resolve(context.Background(), "66")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
}
