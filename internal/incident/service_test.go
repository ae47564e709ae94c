package incident_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safemap/safemap/internal/geo"
	"github.com/safemap/safemap/internal/incident"
)

// mockProvider is a test provider returning configurable results.
type mockProvider struct {
	incidents  []incident.Incident
	err        error
	fetchCount atomic.Int32
}

func (m *mockProvider) FetchIncidents(_ context.Context, _ geo.BBox) ([]incident.Incident, error) {
	m.fetchCount.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.incidents, nil
}

func (m *mockProvider) Name() string { return "mock" }

func testIncidents() []incident.Incident {
	return []incident.Incident{
		{Lat: 38.6521540, Lon: -90.2940248, Severity: 500},
		{Lat: 38.6400000, Lon: -90.2900000, Severity: 5},
	}
}

func testBox() geo.BBox {
	return geo.BBox{West: -90.31, South: 38.635, East: -90.28, North: 38.655}
}

func newService(p incident.Provider) *incident.Service {
	return incident.NewService(incident.ServiceConfig{
		Provider: p,
		Logger:   zerolog.New(io.Discard),
	})
}

func TestService_GetIncidents_StylesResults(t *testing.T) {
	provider := &mockProvider{incidents: testIncidents()}
	svc := newService(provider)

	styled, err := svc.GetIncidents(context.Background(), testBox())
	require.NoError(t, err)
	require.Len(t, styled, 2)

	assert.Equal(t, incident.StyleFor(500), styled[0].Style)
	assert.Equal(t, incident.StyleFor(5), styled[1].Style)
	assert.Equal(t, 38.6521540, styled[0].Lat)
}

func TestService_GetIncidents_CachesResponses(t *testing.T) {
	provider := &mockProvider{incidents: testIncidents()}
	svc := newService(provider)

	ctx := context.Background()

	_, err := svc.GetIncidents(ctx, testBox())
	require.NoError(t, err)
	assert.Equal(t, int32(1), provider.fetchCount.Load())

	// Second call within TTL hits the cache.
	_, err = svc.GetIncidents(ctx, testBox())
	require.NoError(t, err)
	assert.Equal(t, int32(1), provider.fetchCount.Load())

	stats := svc.CacheStats()
	assert.Equal(t, 1, stats.TotalEntries)
	assert.Equal(t, 1, stats.FreshEntries)
	assert.Equal(t, "mock", stats.Provider)
}

func TestService_GetIncidents_InvalidBBox(t *testing.T) {
	svc := newService(&mockProvider{incidents: testIncidents()})

	_, err := svc.GetIncidents(context.Background(), geo.NewBBox())
	assert.ErrorIs(t, err, incident.ErrFetchFailed)
}

func TestService_GetIncidents_ProviderError(t *testing.T) {
	provider := &mockProvider{err: errors.New("feed down")}
	svc := newService(provider)

	_, err := svc.GetIncidents(context.Background(), testBox())
	require.Error(t, err)
}

func TestService_GetIncidents_StaleIfError(t *testing.T) {
	provider := &mockProvider{incidents: testIncidents()}
	svc := incident.NewService(incident.ServiceConfig{
		Provider:        provider,
		Logger:          zerolog.New(io.Discard),
		CacheTTL:        time.Nanosecond,
		StaleIfErrorTTL: time.Hour,
	})

	ctx := context.Background()

	styled, err := svc.GetIncidents(ctx, testBox())
	require.NoError(t, err)

	// Expire the fresh entry, then fail the provider; the stale copy serves.
	time.Sleep(time.Millisecond)
	provider.err = errors.New("feed down")

	styled2, err := svc.GetIncidents(ctx, testBox())
	require.NoError(t, err)
	assert.Equal(t, styled, styled2)
}

func TestService_InvalidateCache(t *testing.T) {
	provider := &mockProvider{incidents: testIncidents()}
	svc := newService(provider)

	ctx := context.Background()
	_, err := svc.GetIncidents(ctx, testBox())
	require.NoError(t, err)

	svc.InvalidateCache()
	assert.Equal(t, 0, svc.CacheStats().TotalEntries)

	_, err = svc.GetIncidents(ctx, testBox())
	require.NoError(t, err)
	assert.Equal(t, int32(2), provider.fetchCount.Load())
}
